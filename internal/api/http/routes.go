package http

import (
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/remotefs/internal/api/middleware"
)

// RouteOptions tunes route registration.
type RouteOptions struct {
	// UploadLimit is the request body ceiling for uploads in bytes.
	UploadLimit int64
}

// Register mounts the file routes under /files and the health check.
func (h *Handlers) Register(router gin.IRouter, opts RouteOptions) {
	router.GET("/health", h.Health)

	fs := router.Group("/files")
	fs.GET("/dl/*"+tailParam, h.Download)
	fs.HEAD("/dl/*"+tailParam, h.Download)
	fs.GET("/ls/*"+tailParam, h.List)
	fs.GET("/find/*"+tailParam, h.Find)
	fs.PUT("/mkdir/*"+tailParam, h.Mkdir)
	fs.DELETE("/rmdir/*"+tailParam, h.RemoveDir)
	fs.DELETE("/rm/*"+tailParam, h.RemoveFile)
	fs.POST("/mv/*"+tailParam, h.Move)
	fs.POST("/up/*"+tailParam, middleware.BodyLimit(opts.UploadLimit, true), h.Upload)
}
