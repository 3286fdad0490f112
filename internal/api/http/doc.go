// Package http provides the HTTP handlers and routing for the file API.
//
// Every file route is a verb plus a path below the base directory:
//
//	GET|HEAD /files/dl/<path>                download a file
//	GET      /files/ls/<path>                list a directory
//	GET      /files/find/<path>?pattern=...  recursive glob search
//	PUT      /files/mkdir/<path>             create a directory
//	DELETE   /files/rmdir/<path>             remove a directory tree
//	DELETE   /files/rm/<path>                remove a file
//	POST     /files/mv/<path>?to=<path>      rename
//	POST     /files/up/<path>                multipart upload into a directory
//
// Failures carry no body. Every rejection is 404 except oversized (413) and
// undeclared-length (411) uploads.
//
// Example Usage:
//
//	handlers := http.NewHandlers(svc, http.NewHandlerMetrics(metrics), logger)
//	handlers.Register(router, http.RouteOptions{UploadLimit: cfg.Storage.UploadLimit})
package http
