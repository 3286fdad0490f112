package files

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"
)

// Find walks dir recursively and returns entries whose path relative to dir
// matches pattern ("**" spans directories). Symlinks are reported, not followed.
// Results are sorted by path.
func (s *Service) Find(ctx context.Context, dir Dir, pattern string) ([]Entry, error) {
	if pattern == "" || !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, ErrNotFound)
	}

	var (
		mu      sync.Mutex
		entries []Entry
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, dir.abs, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil || p == dir.abs {
			return nil
		}

		rel, err := filepath.Rel(dir.abs, p)
		if err != nil {
			return nil
		}
		if ok, _ := doublestar.Match(pattern, filepath.ToSlash(rel)); !ok {
			return nil
		}

		entry := s.entryFor(p, d)
		mu.Lock()
		entries = append(entries, entry)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, reject("find", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	s.logger.Debug("find",
		zap.String("path", dir.abs),
		zap.String("pattern", pattern),
		zap.Int("matches", len(entries)))
	return entries, nil
}
