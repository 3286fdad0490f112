package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/remotefs/internal/files"
	"github.com/GriffinCanCode/remotefs/internal/infrastructure/config"
	"github.com/GriffinCanCode/remotefs/internal/infrastructure/monitoring"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	base    string
	router  *gin.Engine
	metrics *monitoring.Metrics
}

func newTestServer(t *testing.T, uploadLimit int64) *testServer {
	t.Helper()
	base := t.TempDir()
	svc := files.NewService(config.StorageConfig{
		BaseDir:         base,
		MaxNameAttempts: 100,
		ConfineSymlinks: true,
	}, nil)
	metrics := monitoring.NewMetrics()

	router := gin.New()
	NewHandlers(svc, NewHandlerMetrics(metrics), nil).
		Register(router, RouteOptions{UploadLimit: uploadLimit})

	return &testServer{base: base, router: router, metrics: metrics}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) write(t *testing.T, rel, content string) {
	t.Helper()
	p := filepath.Join(s.base, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func (s *testServer) exists(rel string) bool {
	_, err := os.Lstat(filepath.Join(s.base, filepath.FromSlash(rel)))
	return err == nil
}

func decodeEntries(t *testing.T, body []byte) []files.Entry {
	t.Helper()
	var entries []files.Entry
	require.NoError(t, json.Unmarshal(body, &entries))
	return entries
}

func multipartBody(t *testing.T, parts map[string][]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for filename, contents := range parts {
		for _, content := range contents {
			w, err := mw.CreateFormFile("file", filename)
			require.NoError(t, err)
			_, err = w.Write([]byte(content))
			require.NoError(t, err)
		}
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, 1024)

	w := s.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestList(t *testing.T) {
	s := newTestServer(t, 1024)
	s.write(t, "a.txt", "0123456789")
	require.NoError(t, os.Mkdir(filepath.Join(s.base, "b"), 0o755))

	w := s.do(httptest.NewRequest(http.MethodGet, "/files/ls/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.ElementsMatch(t,
		[]files.Entry{files.NewFile("a.txt", 10), files.NewDirectory("b")},
		decodeEntries(t, w.Body.Bytes()))

	w = s.do(httptest.NewRequest(http.MethodGet, "/files/ls/b", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())

	assert.Equal(t, 2.0, testutil.ToFloat64(s.metrics.FileOps.WithLabelValues("ls", "ok")))
}

func TestListNested(t *testing.T) {
	s := newTestServer(t, 1024)
	s.write(t, "dir with space/inner.txt", "x")

	w := s.do(httptest.NewRequest(http.MethodGet, "/files/ls/dir%20with%20space", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t,
		[]files.Entry{files.NewFile("dir with space/inner.txt", 1)},
		decodeEntries(t, w.Body.Bytes()))
}

func TestRejections(t *testing.T) {
	s := newTestServer(t, 1024)
	s.write(t, "a.txt", "hello")

	tests := []struct {
		name   string
		method string
		target string
	}{
		{"encoded traversal", http.MethodGet, "/files/ls/..%2F.."},
		{"encoded dot segment", http.MethodGet, "/files/dl/%2e%2e/etc/passwd"},
		{"backslash", http.MethodGet, "/files/dl/..%5Ca.txt"},
		{"list a file", http.MethodGet, "/files/ls/a.txt"},
		{"download a directory", http.MethodGet, "/files/dl/"},
		{"download missing", http.MethodGet, "/files/dl/missing.txt"},
		{"mkdir existing", http.MethodPut, "/files/mkdir/a.txt"},
		{"rm directory", http.MethodDelete, "/files/rm/"},
		{"rmdir file", http.MethodDelete, "/files/rmdir/a.txt"},
		{"rmdir base", http.MethodDelete, "/files/rmdir/"},
		{"mv without destination", http.MethodPost, "/files/mv/a.txt"},
		{"mv outside base", http.MethodPost, "/files/mv/a.txt?to=../escaped.txt"},
		{"find without pattern", http.MethodGet, "/files/find/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(httptest.NewRequest(tt.method, tt.target, nil))
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Empty(t, w.Body.String())
		})
	}

	assert.True(t, s.exists("a.txt"))
	_, err := os.Stat(s.base)
	assert.NoError(t, err)
}

func TestDownload(t *testing.T) {
	s := newTestServer(t, 1024)
	s.write(t, "notes/readme.txt", "hello world")

	t.Run("get", func(t *testing.T) {
		w := s.do(httptest.NewRequest(http.MethodGet, "/files/dl/notes/readme.txt", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "hello world", w.Body.String())
		assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
	})

	t.Run("range", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/files/dl/notes/readme.txt", nil)
		req.Header.Set("Range", "bytes=0-4")
		w := s.do(req)
		require.Equal(t, http.StatusPartialContent, w.Code)
		assert.Equal(t, "hello", w.Body.String())
	})

	t.Run("head", func(t *testing.T) {
		w := s.do(httptest.NewRequest(http.MethodHead, "/files/dl/notes/readme.txt", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "11", w.Header().Get("Content-Length"))
		assert.Empty(t, w.Body.String())
	})
}

func TestMkdir(t *testing.T) {
	s := newTestServer(t, 1024)

	w := s.do(httptest.NewRequest(http.MethodPut, "/files/mkdir/new", nil))
	require.Equal(t, http.StatusOK, w.Code)
	info, err := os.Stat(filepath.Join(s.base, "new"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	w = s.do(httptest.NewRequest(http.MethodPut, "/files/mkdir/new", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(httptest.NewRequest(http.MethodPut, "/files/mkdir/missing/child", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.FileOps.WithLabelValues("mkdir", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(s.metrics.FileOps.WithLabelValues("mkdir", "rejected")))
}

func TestRemove(t *testing.T) {
	s := newTestServer(t, 1024)
	s.write(t, "tree/a/b.txt", "b")
	s.write(t, "single.txt", "s")

	w := s.do(httptest.NewRequest(http.MethodDelete, "/files/rm/single.txt", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, s.exists("single.txt"))

	w = s.do(httptest.NewRequest(http.MethodDelete, "/files/rmdir/tree", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, s.exists("tree"))
}

func TestMove(t *testing.T) {
	s := newTestServer(t, 1024)
	s.write(t, "x.txt", "x")
	s.write(t, "y.txt", "y")

	w := s.do(httptest.NewRequest(http.MethodPost, "/files/mv/x.txt?to=y.txt", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.True(t, s.exists("x.txt"))
	content, err := os.ReadFile(filepath.Join(s.base, "y.txt"))
	require.NoError(t, err)
	assert.Equal(t, "y", string(content))

	w = s.do(httptest.NewRequest(http.MethodPost, "/files/mv/x.txt?to=renamed%20file.txt", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, s.exists("x.txt"))
	assert.True(t, s.exists("renamed file.txt"))

	w = s.do(httptest.NewRequest(http.MethodGet, "/files/dl/x.txt", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFind(t *testing.T) {
	s := newTestServer(t, 1024)
	s.write(t, "a.txt", "a")
	s.write(t, "docs/b.txt", "bb")
	s.write(t, "docs/c.md", "c")

	w := s.do(httptest.NewRequest(http.MethodGet, "/files/find/?pattern=**/*.txt", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t,
		[]files.Entry{files.NewFile("a.txt", 1), files.NewFile("docs/b.txt", 2)},
		decodeEntries(t, w.Body.Bytes()))

	w = s.do(httptest.NewRequest(http.MethodGet, "/files/find/docs?pattern=*.md", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t,
		[]files.Entry{files.NewFile("docs/c.md", 1)},
		decodeEntries(t, w.Body.Bytes()))
}

func TestUpload(t *testing.T) {
	t.Run("same name twice", func(t *testing.T) {
		s := newTestServer(t, 1<<20)
		body, contentType := multipartBody(t, map[string][]string{"photo.jpg": {"same bytes", "same bytes"}})

		req := httptest.NewRequest(http.MethodPost, "/files/up/", body)
		req.Header.Set("Content-Type", contentType)
		w := s.do(req)
		require.Equal(t, http.StatusOK, w.Code)

		first, err := os.ReadFile(filepath.Join(s.base, "photo.jpg"))
		require.NoError(t, err)
		second, err := os.ReadFile(filepath.Join(s.base, "photo_1.jpg"))
		require.NoError(t, err)
		assert.Equal(t, "same bytes", string(first))
		assert.Equal(t, first, second)

		assert.Equal(t, 2.0, testutil.ToFloat64(s.metrics.UploadedFiles))
		assert.Equal(t, 20.0, testutil.ToFloat64(s.metrics.UploadedBytes))
	})

	t.Run("into missing directory", func(t *testing.T) {
		s := newTestServer(t, 1<<20)
		body, contentType := multipartBody(t, map[string][]string{"a.txt": {"a"}})

		req := httptest.NewRequest(http.MethodPost, "/files/up/missing", body)
		req.Header.Set("Content-Type", contentType)
		assert.Equal(t, http.StatusNotFound, s.do(req).Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		s := newTestServer(t, 1<<20)
		req := httptest.NewRequest(http.MethodPost, "/files/up/", strings.NewReader("plain"))
		req.Header.Set("Content-Type", "text/plain")
		assert.Equal(t, http.StatusNotFound, s.do(req).Code)
	})

	t.Run("oversized body", func(t *testing.T) {
		s := newTestServer(t, 16)
		body, contentType := multipartBody(t, map[string][]string{"big.bin": {strings.Repeat("x", 64)}})

		req := httptest.NewRequest(http.MethodPost, "/files/up/", body)
		req.Header.Set("Content-Type", contentType)
		w := s.do(req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

		entries, err := os.ReadDir(s.base)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("undeclared length", func(t *testing.T) {
		s := newTestServer(t, 1<<20)
		body, contentType := multipartBody(t, map[string][]string{"a.txt": {"a"}})

		req := httptest.NewRequest(http.MethodPost, "/files/up/", body)
		req.Header.Set("Content-Type", contentType)
		req.ContentLength = -1
		assert.Equal(t, http.StatusLengthRequired, s.do(req).Code)
	})
}

func TestRawTail(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{"/files/ls/", ""},
		{"/files/ls/a/b", "a/b"},
		{"/files/ls/a%20b", "a%20b"},
		{"/files/ls/%252e%252e", "%252e%252e"},
		{"/files/l%73/a%20b", "a%20b"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			var got string
			router := gin.New()
			router.GET("/files/ls/*"+tailParam, func(c *gin.Context) { got = rawTail(c) })

			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.target, nil))
			assert.Equal(t, tt.want, got)
		})
	}
}
