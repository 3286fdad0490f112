package files

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// List enumerates the immediate children of dir in filesystem order.
//
// Children are classified without following symlinks. A child whose metadata
// cannot be read is reported as KindUnknown instead of failing the listing.
func (s *Service) List(ctx context.Context, dir Dir) ([]Entry, error) {
	f, err := os.Open(dir.abs)
	if err != nil {
		return nil, reject("open dir", err)
	}
	defer f.Close()

	children, err := f.ReadDir(-1)
	if err != nil {
		return nil, reject("read dir", err)
	}

	entries := make([]Entry, 0, len(children))
	for _, child := range children {
		if err := ctx.Err(); err != nil {
			return nil, reject("list", err)
		}
		entries = append(entries, s.entryFor(filepath.Join(dir.abs, child.Name()), child))
	}
	s.logger.Debug("listed directory", zap.String("path", dir.abs), zap.Int("entries", len(entries)))
	return entries, nil
}

// entryFor classifies one child. info may come from a DirEntry or from Lstat.
func (s *Service) entryFor(abs string, d fs.DirEntry) Entry {
	rel, err := Rel(s.base, abs)
	if err != nil {
		rel = filepath.ToSlash(filepath.Base(abs))
	}

	info, err := d.Info()
	if err != nil {
		s.logger.Debug("metadata read failed", zap.String("path", abs), zap.Error(err))
		return NewUnknown(rel)
	}
	return classify(abs, rel, info)
}

func classify(abs, rel string, info fs.FileInfo) Entry {
	mode := info.Mode()
	switch {
	case mode.IsDir():
		return NewDirectory(rel)
	case mode.IsRegular():
		return NewFile(rel, info.Size())
	case mode&fs.ModeSymlink != 0:
		var target *string
		if t, err := os.Readlink(abs); err == nil {
			t = filepath.ToSlash(t)
			target = &t
		}
		return NewSymlink(rel, target)
	default:
		return NewUnknown(rel)
	}
}
