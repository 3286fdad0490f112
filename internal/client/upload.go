package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/GriffinCanCode/remotefs/internal/infrastructure/resilience"
)

// UploadFile is one part of an upload. Size must be exact; the server requires
// a declared Content-Length.
type UploadFile struct {
	Name   string
	Size   int64
	Reader io.Reader
}

// OpenUploadFile prepares a local file for upload. The caller closes the
// returned file once the upload is done.
func OpenUploadFile(path string) (UploadFile, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return UploadFile{}, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return UploadFile{}, nil, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return UploadFile{}, nil, fmt.Errorf("%s is not a regular file", path)
	}
	return UploadFile{Name: filepath.Base(path), Size: info.Size(), Reader: f}, f, nil
}

// Upload streams the files as one multipart request into dir. The server
// renames a part whose name is taken rather than overwriting.
func (c *Client) Upload(ctx context.Context, dir string, uploads ...UploadFile) error {
	body, length, contentType, err := multipartStream(uploads)
	if err != nil {
		return err
	}

	if _, err := c.request(ctx); err != nil {
		return err
	}
	// resty would buffer a reader body to compute its length, so the
	// request goes straight to the underlying http.Client.
	raw, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+route("up", dir), body)
	if err != nil {
		return err
	}
	raw.ContentLength = length
	raw.Header = c.resty.Header.Clone()
	raw.Header.Set("Content-Type", contentType)

	_, err = resilience.Execute(c.breaker, func() (struct{}, error) {
		resp, err := c.resty.GetClient().Do(raw)
		if err != nil {
			return struct{}{}, err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		return struct{}{}, statusError(resp.StatusCode)
	})
	return err
}

// multipartStream lays out the multipart envelope around the file readers
// without buffering their content, so the total length is known up front.
func multipartStream(uploads []UploadFile) (io.Reader, int64, string, error) {
	var (
		envelope bytes.Buffer
		readers  []io.Reader
		length   int64
	)
	mw := multipart.NewWriter(&envelope)

	flush := func() {
		chunk := bytes.Clone(envelope.Bytes())
		envelope.Reset()
		length += int64(len(chunk))
		readers = append(readers, bytes.NewReader(chunk))
	}

	for _, u := range uploads {
		if u.Reader == nil || u.Size < 0 {
			return nil, 0, "", fmt.Errorf("upload %q: missing reader or size", u.Name)
		}
		if _, err := mw.CreateFormFile("file", u.Name); err != nil {
			return nil, 0, "", err
		}
		flush()
		readers = append(readers, io.LimitReader(u.Reader, u.Size))
		length += u.Size
	}
	if err := mw.Close(); err != nil {
		return nil, 0, "", err
	}
	flush()

	return io.MultiReader(readers...), length, mw.FormDataContentType(), nil
}
