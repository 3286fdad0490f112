package files

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	base := filepath.FromSlash("/srv/files")

	tests := []struct {
		name    string
		tail    string
		want    string
		wantErr bool
	}{
		{name: "empty is base", tail: "", want: base},
		{name: "plain", tail: "a/b.txt", want: filepath.Join(base, "a", "b.txt")},
		{name: "leading and doubled slashes", tail: "/a//b/", want: filepath.Join(base, "a", "b")},
		{name: "percent decoded once", tail: "my%20file.txt", want: filepath.Join(base, "my file.txt")},
		{name: "double encoding stays literal", tail: "%252e%252e", want: filepath.Join(base, "%2e%2e")},
		{name: "single dot segment", tail: "./a", want: filepath.Join(base, "a")},
		{name: "dotted name", tail: "a..b", want: filepath.Join(base, "a..b")},
		{name: "parent", tail: "..", wantErr: true},
		{name: "nested parent", tail: "a/../../etc", wantErr: true},
		{name: "encoded parent", tail: "%2e%2e/etc/passwd", wantErr: true},
		{name: "encoded slash", tail: "a%2F..%2F..", wantErr: true},
		{name: "dotdot prefix name", tail: "..hidden", wantErr: true},
		{name: "backslash", tail: `a\b`, wantErr: true},
		{name: "encoded backslash", tail: "..%5Cwin", wantErr: true},
		{name: "bad escape", tail: "%zz", wantErr: true},
		{name: "invalid utf-8", tail: "%ff%fe", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sanitize(base, tt.tail)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrNotFound))
				assert.True(t, got.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

// Every accepted tail stays at or below the base directory.
func TestSanitizeStaysBelowBase(t *testing.T) {
	base := filepath.FromSlash("/srv/files")
	segments := []string{"a", "..", ".", "", "%2e%2e", "b%2F..", "%2F", "c.d", "...", `\`, "x%5C"}

	var walk func(prefix []string, depth int)
	walk = func(prefix []string, depth int) {
		tail := strings.Join(prefix, "/")
		if p, err := Sanitize(base, tail); err == nil {
			assert.True(t, within(base, p.String()), "%q escaped to %q", tail, p.String())
		}
		if depth == 0 {
			return
		}
		for _, seg := range segments {
			walk(append(prefix, seg), depth-1)
		}
	}
	walk(nil, 3)
}

func TestRel(t *testing.T) {
	base := filepath.FromSlash("/srv/files")

	rel, err := Rel(base, filepath.Join(base, "a", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "a/b.txt", rel)
}
