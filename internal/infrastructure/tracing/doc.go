/*
Package tracing provides lightweight request tracing.

Each request gets a span. An incoming X-Trace-ID header continues an existing
trace; otherwise a new req_* ULID starts one. The trace and span IDs are echoed
back in response headers and attached to the request context so handlers can
tag the active span.

# Usage

	tracer := tracing.New("remotefs", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	if span := tracing.SpanFromContext(ctx); span != nil {
		span.SetTag("fs.op", "mkdir")
	}

Finished spans are logged by a background collector with a 1000 span buffer.
Spans are dropped, with a warning, when the buffer is full.
*/
package tracing
