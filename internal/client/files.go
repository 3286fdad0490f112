package client

import (
	"context"
	"fmt"
	"io"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"

	"github.com/GriffinCanCode/remotefs/internal/files"
)

// FileInfo is what a HEAD on a download reports.
type FileInfo struct {
	Size        int64
	ContentType string
	ModTime     string
}

// Health checks the server's liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.execute(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.Get("/health")
	})
	return err
}

// List returns the entries directly inside dir.
func (c *Client) List(ctx context.Context, dir string) ([]files.Entry, error) {
	return c.entries(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.Get(route("ls", dir))
	})
}

// Find returns the entries below dir whose relative path matches pattern.
func (c *Client) Find(ctx context.Context, dir, pattern string) ([]files.Entry, error) {
	return c.entries(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetQueryParam("pattern", pattern).Get(route("find", dir))
	})
}

func (c *Client) entries(ctx context.Context, send func(*resty.Request) (*resty.Response, error)) ([]files.Entry, error) {
	resp, err := c.execute(ctx, send)
	if err != nil {
		return nil, err
	}
	var entries []files.Entry
	if err := sonic.Unmarshal(resp.Body(), &entries); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	return entries, nil
}

// Stat issues a HEAD for a file.
func (c *Client) Stat(ctx context.Context, path string) (FileInfo, error) {
	resp, err := c.execute(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.Head(route("dl", path))
	})
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfo{
		Size:        resp.RawResponse.ContentLength,
		ContentType: resp.Header().Get("Content-Type"),
		ModTime:     resp.Header().Get("Last-Modified"),
	}, nil
}

// Download streams a file into w and returns the number of bytes copied.
func (c *Client) Download(ctx context.Context, path string, w io.Writer) (int64, error) {
	resp, err := c.execute(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetDoNotParseResponse(true).Get(route("dl", path))
	})
	if resp != nil && resp.RawBody() != nil {
		defer resp.RawBody().Close()
	}
	if err != nil {
		return 0, err
	}
	return io.Copy(w, resp.RawBody())
}

// Mkdir creates one directory. Parents must exist.
func (c *Client) Mkdir(ctx context.Context, path string) error {
	_, err := c.execute(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.Put(route("mkdir", path))
	})
	return err
}

// RemoveDir removes a directory and everything below it.
func (c *Client) RemoveDir(ctx context.Context, path string) error {
	_, err := c.execute(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.Delete(route("rmdir", path))
	})
	return err
}

// Remove removes a file.
func (c *Client) Remove(ctx context.Context, path string) error {
	_, err := c.execute(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.Delete(route("rm", path))
	})
	return err
}

// Move renames from to to. The destination must not exist.
func (c *Client) Move(ctx context.Context, from, to string) error {
	_, err := c.execute(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetQueryParam("to", to).Post(route("mv", from))
	})
	return err
}
