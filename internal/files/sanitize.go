package files

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Path is an absolute path built from a base directory and validated segments.
// The zero value is not a valid path.
type Path struct {
	abs string
}

// String returns the absolute path.
func (p Path) String() string {
	return p.abs
}

// IsZero reports whether p was never produced by Sanitize.
func (p Path) IsZero() bool {
	return p.abs == ""
}

// Sanitize percent-decodes rawTail and joins its '/'-separated segments onto base.
//
// A segment starting with ".." (covering both ".." and names like "..foo") or
// containing a backslash rejects the whole tail. Empty segments are skipped.
// No other characters are inspected and symlinks are not resolved; the OS call
// that consumes the path decides the rest.
//
// Every rejection wraps ErrNotFound.
func Sanitize(base, rawTail string) (Path, error) {
	decoded, err := url.PathUnescape(rawTail)
	if err != nil {
		return Path{}, fmt.Errorf("decode %q: %w", rawTail, ErrNotFound)
	}
	if !utf8.ValidString(decoded) {
		return Path{}, fmt.Errorf("decode %q: invalid utf-8: %w", rawTail, ErrNotFound)
	}

	buf := filepath.Clean(base)
	for _, seg := range strings.Split(decoded, "/") {
		switch {
		case seg == "":
			continue
		case strings.HasPrefix(seg, ".."):
			return Path{}, fmt.Errorf("segment starting with '..': %w", ErrNotFound)
		case strings.Contains(seg, `\`):
			return Path{}, fmt.Errorf("segment containing backslash: %w", ErrNotFound)
		}
		buf = filepath.Join(buf, seg)
	}
	return Path{abs: buf}, nil
}

// Rel returns p relative to base using forward slashes.
func Rel(base, abs string) (string, error) {
	rel, err := filepath.Rel(base, abs)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}
