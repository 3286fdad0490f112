// Package server assembles the file server: configuration, logging, metrics,
// tracing, middleware and routes, behind one *http.Server.
//
// Middleware order: recovery, tracing, metrics, request logging, CORS and the
// optional per-IP rate limiter. Responses other than downloads are gzipped
// when compression is enabled.
//
// Example Usage:
//
//	srv, err := server.NewServer(cfg, logger)
//	go srv.Run()
//	...
//	srv.Shutdown(ctx)
package server
