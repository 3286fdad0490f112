package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/remotefs/internal/files"
	"github.com/GriffinCanCode/remotefs/internal/infrastructure/tracing"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	files   *files.Service
	metrics *HandlerMetrics
	logger  *zap.Logger
	started time.Time
}

// NewHandlers creates a new handler set
func NewHandlers(svc *files.Service, metrics *HandlerMetrics, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		files:   svc,
		metrics: metrics,
		logger:  logger.Named("api"),
		started: time.Now(),
	}
}

// Health handles liveness checks
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}

// fail ends the request with an empty body. Body-size violations keep their
// 413; everything else is the single not-found rejection.
func (h *Handlers) fail(c *gin.Context, op string, err error) {
	status := http.StatusNotFound
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
	}

	h.logger.Debug("rejected",
		zap.String("op", op),
		zap.String("path", c.Request.URL.EscapedPath()),
		zap.Int("status", status),
		zap.Error(err))
	if span := tracing.SpanFromContext(c.Request.Context()); span != nil {
		span.SetError(err)
	}
	_ = c.Error(err)
	c.AbortWithStatus(status)
}

// writeEntries renders a listing as a JSON array, never null.
func (h *Handlers) writeEntries(c *gin.Context, entries []files.Entry) {
	if entries == nil {
		entries = []files.Entry{}
	}
	body, err := sonic.Marshal(entries)
	if err != nil {
		h.logger.Error("encode entries", zap.Error(err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}
