// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Middleware adds a per-request access log line to a gin router.
//
// Example Usage:
//
//	logger := logging.NewFor(cfg.Logging.Level, cfg.Logging.Development)
//	logger.Info("Server starting", zap.String("addr", cfg.Addr()))
//	router.Use(logging.Middleware(logger))
package logging
