package files

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Dir is a path that was an existing directory when checked.
type Dir struct{ Path }

// File is a path that was an existing regular file when checked.
type File struct{ Path }

// Existing is a path that existed, of any type, when checked.
type Existing struct{ Path }

// Absent is a path at which nothing existed when checked.
type Absent struct{ Path }

// MustBeExistingDirectory rejects unless p is a directory.
func (s *Service) MustBeExistingDirectory(ctx context.Context, p Path) (Dir, error) {
	info, err := s.stat(ctx, p)
	if err != nil {
		return Dir{}, err
	}
	if !info.IsDir() {
		s.logger.Debug("no such dir", zap.String("path", p.abs))
		return Dir{}, fmt.Errorf("%s is not a directory: %w", p.abs, ErrNotFound)
	}
	return Dir{p}, nil
}

// MustBeExistingFile rejects unless p is a regular file.
func (s *Service) MustBeExistingFile(ctx context.Context, p Path) (File, error) {
	info, err := s.stat(ctx, p)
	if err != nil {
		return File{}, err
	}
	if !info.Mode().IsRegular() {
		s.logger.Debug("no such file", zap.String("path", p.abs))
		return File{}, fmt.Errorf("%s is not a regular file: %w", p.abs, ErrNotFound)
	}
	return File{p}, nil
}

// MustExist rejects unless something exists at p.
func (s *Service) MustExist(ctx context.Context, p Path) (Existing, error) {
	if _, err := s.stat(ctx, p); err != nil {
		return Existing{}, err
	}
	return Existing{p}, nil
}

// MustNotExist rejects if anything exists at p. A dangling symlink counts as
// present.
func (s *Service) MustNotExist(ctx context.Context, p Path) (Absent, error) {
	if err := ctx.Err(); err != nil {
		return Absent{}, reject("lstat", err)
	}
	if p.IsZero() {
		return Absent{}, fmt.Errorf("unsanitized path: %w", ErrNotFound)
	}
	_, err := os.Lstat(p.abs)
	switch {
	case err == nil:
		s.logger.Debug("already exists", zap.String("path", p.abs))
		return Absent{}, fmt.Errorf("%s already exists: %w", p.abs, ErrNotFound)
	case !errors.Is(err, fs.ErrNotExist):
		return Absent{}, reject("lstat", err)
	}
	if err := s.confine(p.abs); err != nil {
		return Absent{}, err
	}
	return Absent{p}, nil
}

// stat follows symlinks, like the metadata lookup the guards are specified on.
func (s *Service) stat(ctx context.Context, p Path) (os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, reject("stat", err)
	}
	if p.IsZero() {
		return nil, fmt.Errorf("unsanitized path: %w", ErrNotFound)
	}
	info, err := os.Stat(p.abs)
	if err != nil {
		s.logger.Debug("stat failed", zap.String("path", p.abs), zap.Error(err))
		return nil, reject("stat", err)
	}
	if err := s.confine(p.abs); err != nil {
		return nil, err
	}
	return info, nil
}

// confine resolves the deepest existing ancestor of abs and rejects when it
// lands outside the resolved base directory. It is a no-op unless symlink
// confinement is enabled.
func (s *Service) confine(abs string) error {
	if !s.confineSymlinks {
		return nil
	}
	root, err := filepath.EvalSymlinks(s.base)
	if err != nil {
		return reject("resolve base", err)
	}

	probe, rest := abs, ""
	for {
		resolved, err := filepath.EvalSymlinks(probe)
		if err == nil {
			if rest != "" {
				resolved = filepath.Join(resolved, rest)
			}
			if !within(root, resolved) {
				s.logger.Warn("path escapes base directory via symlink",
					zap.String("path", abs), zap.String("resolved", resolved))
				return fmt.Errorf("%s resolves outside base directory: %w", abs, ErrNotFound)
			}
			return nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return reject("resolve", err)
		}
		parent := filepath.Dir(probe)
		if parent == probe {
			return reject("resolve", err)
		}
		rest = filepath.Join(filepath.Base(probe), rest)
		probe = parent
	}
}

func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
