package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	uploadChunkSize = 32 * 1024
	createRetries   = 3
)

// StoredFile describes one part written to disk.
type StoredFile struct {
	Field string `json:"field"`
	Name  string `json:"name"`
	Bytes int64  `json:"bytes"`
}

// UploadResult lists the parts stored so far, in arrival order. It is returned
// alongside an error too, since parts stored before a failure stay on disk.
type UploadResult struct {
	Files []StoredFile `json:"files"`
}

// Bytes returns the total number of bytes written.
func (r UploadResult) Bytes() int64 {
	var n int64
	for _, f := range r.Files {
		n += f.Bytes
	}
	return n
}

// StreamUpload decodes body as a multipart stream and writes every part to its
// own collision-free file in dir.
//
// Parts are handled sequentially and copied chunk by chunk, so a part is never
// held in memory as a whole. A part without a filename aborts the request.
// Nothing is rolled back: files completed (or partially written) before a
// failure remain.
func (s *Service) StreamUpload(ctx context.Context, dir Dir, contentType string, body io.Reader) (UploadResult, error) {
	var result UploadResult

	boundary, err := multipartBoundary(contentType)
	if err != nil {
		return result, err
	}

	mr := multipart.NewReader(body, boundary)
	for {
		if err := ctx.Err(); err != nil {
			return result, reject("upload", err)
		}
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return result, nil
		}
		if err != nil {
			return result, reject("next part", err)
		}

		stored, err := s.storePart(ctx, dir, part)
		part.Close()
		if stored != nil {
			result.Files = append(result.Files, *stored)
		}
		if err != nil {
			return result, err
		}
	}
}

func (s *Service) storePart(ctx context.Context, dir Dir, part *multipart.Part) (*StoredFile, error) {
	if part.FileName() == "" {
		s.logger.Debug("part without filename", zap.String("field", part.FormName()))
		return nil, fmt.Errorf("part %q has no filename: %w", part.FormName(), ErrNotFound)
	}
	desired, err := CleanFilename(part.FileName())
	if err != nil {
		return nil, err
	}

	f, name, err := s.createUnique(dir, desired)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("upload name",
		zap.String("field", part.FormName()),
		zap.String("requested", desired),
		zap.String("name", name))

	stored := &StoredFile{Field: part.FormName(), Name: name}
	n, copyErr := copyChunks(ctx, f, newChunkReader(part, uploadChunkSize))
	stored.Bytes = n
	if copyErr == nil {
		copyErr = f.Sync()
	}
	if closeErr := f.Close(); copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		return stored, reject("write "+name, copyErr)
	}
	return stored, nil
}

// createUnique opens a fresh file for appending. Creation is exclusive, so a
// name taken between the namer's check and the open is re-resolved.
func (s *Service) createUnique(dir Dir, desired string) (*os.File, string, error) {
	var lastErr error
	for i := 0; i < createRetries; i++ {
		name, err := s.AvailableName(dir, desired)
		if err != nil {
			return nil, "", err
		}
		f, err := os.OpenFile(filepath.Join(dir.abs, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL|os.O_APPEND, 0o644)
		if err == nil {
			return f, name, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", reject("create", err)
		}
		lastErr = err
	}
	return nil, "", reject("create", lastErr)
}

func multipartBoundary(contentType string) (string, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("content-type %q: %v: %w", contentType, err, ErrNotFound)
	}
	if !strings.HasPrefix(mediaType, "multipart/") {
		return "", fmt.Errorf("content-type %q is not multipart: %w", mediaType, ErrNotFound)
	}
	boundary := params["boundary"]
	if boundary == "" {
		return "", fmt.Errorf("content-type %q has no boundary: %w", contentType, ErrNotFound)
	}
	return boundary, nil
}

// chunkReader pulls a byte stream in bounded chunks. The returned slice is only
// valid until the next call.
type chunkReader struct {
	r   io.Reader
	buf []byte
}

func newChunkReader(r io.Reader, size int) *chunkReader {
	return &chunkReader{r: r, buf: make([]byte, size)}
}

// Next returns the next non-empty chunk, or io.EOF once the stream is drained.
func (c *chunkReader) Next(ctx context.Context) ([]byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := c.r.Read(c.buf)
		if n > 0 {
			// Deliver data first; a trailing error resurfaces on the next call.
			return c.buf[:n], nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// copyChunks writes chunks to w in order until the source is drained, the
// context is cancelled, or a write fails.
func copyChunks(ctx context.Context, w io.Writer, src *chunkReader) (int64, error) {
	var written int64
	for {
		chunk, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return written, nil
		}
		if err != nil {
			return written, err
		}
		n, err := w.Write(chunk)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
}
