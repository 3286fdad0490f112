package files

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type part struct {
	field    string
	filename string
	content  string
}

func encodeParts(t *testing.T, parts ...part) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		var (
			w   io.Writer
			err error
		)
		if p.filename == "" {
			w, err = mw.CreateFormField(p.field)
		} else {
			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", `form-data; name="`+p.field+`"; filename="`+p.filename+`"`)
			h.Set("Content-Type", "application/octet-stream")
			w, err = mw.CreatePart(h)
		}
		require.NoError(t, err)
		_, err = io.WriteString(w, p.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func readBase(t *testing.T, s *Service, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(s.Base(), name))
	require.NoError(t, err)
	return string(data)
}

func TestStreamUpload(t *testing.T) {
	s := newTestService(t)
	big := strings.Repeat("0123456789abcdef", 10*uploadChunkSize/16+3)
	body, contentType := encodeParts(t,
		part{"file", "photo.jpg", "same"},
		part{"file", "photo.jpg", "same"},
		part{"other", "big.bin", big},
	)

	result, err := s.StreamUpload(context.Background(), mustDir(t, s, ""), contentType, body)
	require.NoError(t, err)
	assert.Equal(t, []StoredFile{
		{Field: "file", Name: "photo.jpg", Bytes: 4},
		{Field: "file", Name: "photo_1.jpg", Bytes: 4},
		{Field: "other", Name: "big.bin", Bytes: int64(len(big))},
	}, result.Files)
	assert.Equal(t, int64(8+len(big)), result.Bytes())

	assert.Equal(t, "same", readBase(t, s, "photo.jpg"))
	assert.Equal(t, "same", readBase(t, s, "photo_1.jpg"))
	assert.Equal(t, big, readBase(t, s, "big.bin"))
}

func TestStreamUploadIntoSubdirectory(t *testing.T) {
	s := newTestService(t)
	require.NoError(t, os.Mkdir(filepath.Join(s.Base(), "in"), 0o755))
	body, contentType := encodeParts(t, part{"file", "../../evil.txt", "x"})

	result, err := s.StreamUpload(context.Background(), mustDir(t, s, "in"), contentType, body)
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "evil.txt", result.Files[0].Name)
	assert.Equal(t, "x", readBase(t, s, "in/evil.txt"))
}

func TestStreamUploadPartialFailure(t *testing.T) {
	s := newTestService(t)
	body, contentType := encodeParts(t,
		part{"file", "kept.txt", "kept"},
		part{"comment", "", "no filename"},
		part{"file", "never.txt", "never"},
	)

	result, err := s.StreamUpload(context.Background(), mustDir(t, s, ""), contentType, body)
	assert.ErrorIs(t, err, ErrNotFound)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "kept", readBase(t, s, "kept.txt"))
	_, statErr := os.Stat(filepath.Join(s.Base(), "never.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestStreamUploadBadContentType(t *testing.T) {
	s := newTestService(t)
	dir := mustDir(t, s, "")

	for _, ct := range []string{"", "text/plain", "multipart/form-data", "multipart/form-data; boundary="} {
		t.Run(ct, func(t *testing.T) {
			_, err := s.StreamUpload(context.Background(), dir, ct, strings.NewReader("x"))
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStreamUploadCancelled(t *testing.T) {
	s := newTestService(t)
	body, contentType := encodeParts(t, part{"file", "a.txt", "a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := s.StreamUpload(ctx, mustDir(t, s, ""), contentType, body)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, result.Files)
}

func TestStreamUploadBodyLimit(t *testing.T) {
	s := newTestService(t)
	body, contentType := encodeParts(t, part{"file", "big.bin", strings.Repeat("x", 4096)})

	limited := http.MaxBytesReader(httptest.NewRecorder(), io.NopCloser(body), 1024)
	_, err := s.StreamUpload(context.Background(), mustDir(t, s, ""), contentType, limited)
	require.Error(t, err)

	var tooLarge *http.MaxBytesError
	assert.True(t, errors.As(err, &tooLarge))
	assert.ErrorIs(t, err, ErrNotFound)
}

type cancelAfter struct {
	r      io.Reader
	reads  int
	cancel context.CancelFunc
}

func (c *cancelAfter) Read(p []byte) (int, error) {
	c.reads++
	if c.reads == 2 {
		c.cancel()
	}
	return c.r.Read(p)
}

func TestCopyChunksStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &cancelAfter{r: strings.NewReader(strings.Repeat("x", 100)), cancel: cancel}

	var dst bytes.Buffer
	n, err := copyChunks(ctx, &dst, newChunkReader(src, 10))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(20), n)
	assert.Equal(t, 20, dst.Len())
}
