// Package client is a Go client for the file server API.
//
// Paths are plain slash-separated paths relative to the served directory; the
// client escapes them. Every server rejection maps to ErrNotFound, mirroring
// the server's single failure class; oversized uploads map to ErrTooLarge.
//
// Requests pass through an optional rate limiter and a circuit breaker that
// opens after repeated transport failures or 5xx replies.
//
// Example Usage:
//
//	c := client.New("http://127.0.0.1:3030")
//	entries, err := c.List(ctx, "photos")
//	err = c.Move(ctx, "photos/a.jpg", "archive/a.jpg")
package client
