package files

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Mkdir creates a single directory; parents must already exist.
func (s *Service) Mkdir(ctx context.Context, p Absent) error {
	if err := ctx.Err(); err != nil {
		return reject("mkdir", err)
	}
	if err := os.Mkdir(p.abs, 0o755); err != nil {
		return reject("mkdir", err)
	}
	s.logger.Debug("created directory", zap.String("path", p.abs))
	return nil
}

// RemoveDir removes a directory and everything below it. The base directory
// itself cannot be removed.
func (s *Service) RemoveDir(ctx context.Context, d Dir) error {
	if err := ctx.Err(); err != nil {
		return reject("rmdir", err)
	}
	if d.abs == s.base {
		return reject("rmdir", ErrBaseDirectory)
	}
	if err := os.RemoveAll(d.abs); err != nil {
		return reject("rmdir", err)
	}
	s.logger.Debug("removed directory", zap.String("path", d.abs))
	return nil
}

// RemoveFile removes a single file.
func (s *Service) RemoveFile(ctx context.Context, f File) error {
	if err := ctx.Err(); err != nil {
		return reject("rm", err)
	}
	if err := os.Remove(f.abs); err != nil {
		return reject("rm", err)
	}
	s.logger.Debug("removed file", zap.String("path", f.abs))
	return nil
}

// Move renames src to the destination named by rawTo, a raw URL tail
// sanitized against the same base directory. The destination must not exist.
// Moves across filesystems fail like any other rename error.
func (s *Service) Move(ctx context.Context, src Existing, rawTo string) error {
	to, err := s.Sanitize(rawTo)
	if err != nil {
		return err
	}
	dst, err := s.MustNotExist(ctx, to)
	if err != nil {
		return err
	}
	if src.abs == s.base {
		return reject("mv", ErrBaseDirectory)
	}
	s.logger.Debug("rename", zap.String("from", src.abs), zap.String("to", dst.abs))
	if err := os.Rename(src.abs, dst.abs); err != nil {
		return reject("mv", err)
	}
	return nil
}

// Open opens a checked file for reading. The caller closes it.
func (s *Service) Open(ctx context.Context, f File) (*os.File, os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, reject("open", err)
	}
	fh, err := os.Open(f.abs)
	if err != nil {
		return nil, nil, reject("open", err)
	}
	info, err := fh.Stat()
	if err != nil {
		fh.Close()
		return nil, nil, reject("stat", err)
	}
	if !info.Mode().IsRegular() {
		fh.Close()
		return nil, nil, fmt.Errorf("%s is no longer a regular file: %w", f.abs, ErrNotFound)
	}
	return fh, info, nil
}
