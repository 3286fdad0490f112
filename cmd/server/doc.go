// Package main is the entry point for the remote filesystem server.
//
// The server exposes one directory over HTTP: download, list, search, create,
// remove, rename and multipart upload, all confined to that directory.
//
// Configuration:
//   - Environment variables (12-factor)
//   - A config file given with -config (overrides env vars)
//   - CLI flags (override both)
//
// Usage:
//
//	# Serve ./data on 127.0.0.1:3030
//	./server -dir ./data
//
//	# Use a config file
//	./server -config restore.toml
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
