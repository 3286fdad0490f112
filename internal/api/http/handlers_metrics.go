package http

import (
	"errors"
	"net/http"

	"github.com/GriffinCanCode/remotefs/internal/infrastructure/monitoring"
)

// HandlerMetrics wraps handlers with metrics tracking. A nil metrics collector
// turns every call into a no-op.
type HandlerMetrics struct {
	metrics *monitoring.Metrics
}

// NewHandlerMetrics creates a metrics wrapper
func NewHandlerMetrics(metrics *monitoring.Metrics) *HandlerMetrics {
	return &HandlerMetrics{metrics: metrics}
}

// Track starts timing a filesystem operation; the returned func records its
// outcome.
func (hm *HandlerMetrics) Track(op string) func(error) {
	if hm == nil || hm.metrics == nil {
		return func(error) {}
	}
	timer := monitoring.NewTimer(hm.metrics, op)
	return func(err error) {
		timer.Stop(outcome(err))
	}
}

// Upload records the files and bytes an upload stored.
func (hm *HandlerMetrics) Upload(files int, bytes int64) {
	if hm == nil || hm.metrics == nil {
		return
	}
	hm.metrics.RecordUpload(files, bytes)
}

// Listing records the size of a directory listing.
func (hm *HandlerMetrics) Listing(entries int) {
	if hm == nil || hm.metrics == nil {
		return
	}
	hm.metrics.RecordListing(entries)
}

func outcome(err error) string {
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &tooLarge):
		return "too_large"
	default:
		return "rejected"
	}
}
