// Package files mediates between untrusted HTTP requests and the local filesystem.
//
// Every operation runs as a small pipeline of fallible steps:
//
//	raw URL tail → Sanitize → guard (MustBeExistingDirectory, MustNotExist, ...) → operation
//
// Each guard returns a distinct checked type (Dir, File, Existing, Absent), and
// operations only accept the type proven by the matching guard. The guards are an
// early-reject layer; the OS call that follows stays the final authority.
//
// Failures of every kind collapse into ErrNotFound at the boundary so that callers
// cannot tell a traversal attempt from a missing path.
//
// Known limitation: Sanitize never resolves symlinks. A symlink below the base
// directory can point outside of it. Service.ConfineSymlinks enables a containment
// check in the guards that resolves the path and rejects escapes.
//
// Example Usage:
//
//	svc := files.NewService(cfg.Storage, logger)
//	p, err := svc.Sanitize(tail)
//	dir, err := svc.MustBeExistingDirectory(ctx, p)
//	entries, err := svc.List(ctx, dir)
package files
