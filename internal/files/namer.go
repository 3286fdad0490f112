package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// AvailableName returns a name under dir at which nothing currently exists.
//
// desired is returned unchanged when free. Otherwise "stem_N.ext" is tried for
// N = 1, 2, ... up to maxAttempts. The result is only a snapshot: a concurrent
// creator can still take the name before the caller uses it.
func AvailableName(dir, desired string, maxAttempts int) (string, error) {
	free, err := isFree(filepath.Join(dir, desired))
	if err != nil || free {
		return desired, err
	}

	stem, ext := splitName(desired)
	for n := 1; n <= maxAttempts; n++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, n, ext)
		free, err := isFree(filepath.Join(dir, candidate))
		if err != nil {
			return "", err
		}
		if free {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%q after %d attempts: %w", desired, maxAttempts, ErrNameExhausted)
}

// AvailableName resolves desired inside dir using the service's attempt bound.
func (s *Service) AvailableName(dir Dir, desired string) (string, error) {
	name, err := AvailableName(dir.abs, desired, s.maxAttempts)
	if err != nil {
		return "", reject("available name", err)
	}
	return name, nil
}

// splitName splits a base name into stem and extension (including the dot).
// Dotfiles such as ".profile" have no extension.
func splitName(name string) (stem, ext string) {
	ext = filepath.Ext(name)
	if ext == name {
		return name, ""
	}
	return strings.TrimSuffix(name, ext), ext
}

func isFree(p string) (bool, error) {
	_, err := os.Lstat(p)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, fs.ErrNotExist):
		return true, nil
	default:
		return false, err
	}
}

// CleanFilename reduces a client-supplied filename to its final element.
// Both '/' and '\' count as separators. Names that reduce to nothing, ".", or
// "..", or that still start with "..", are rejected.
func CleanFilename(name string) (string, error) {
	name = strings.ReplaceAll(name, `\`, "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || name == "." || strings.HasPrefix(name, "..") {
		return "", fmt.Errorf("unusable filename: %w", ErrNotFound)
	}
	return name, nil
}
