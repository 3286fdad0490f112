/*
Package monitoring provides Prometheus metrics for the file server.

# Metrics

  - HTTP requests by method, route pattern and status (count, latency, sizes)
  - Filesystem operations by op and outcome (ls, mkdir, rmdir, rm, mv, up, dl, find)
  - Uploaded files and bytes
  - Entries per listing
  - Uptime, Go runtime and process collectors

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "mkdir")
	// ... perform operation ...
	timer.Stop("ok")
*/
package monitoring
