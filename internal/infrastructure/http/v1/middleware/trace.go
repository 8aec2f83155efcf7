package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	appctx "supplyfin/internal/core/context"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
)

var propagator = propagation.TraceContext{}

// Trace middleware adds request tracing context. A W3C traceparent header
// wins over X-Trace-ID; missing ids are generated.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := propagator.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		var tc *appctx.TraceContext
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			tc = appctx.NewTrace(sc.TraceID().String(), sc.SpanID().String(), c.GetHeader(HeaderRequestID))
		} else {
			tc = appctx.NewTrace(c.GetHeader(HeaderTraceID), "", c.GetHeader(HeaderRequestID))
		}

		c.Request = c.Request.WithContext(appctx.WithTrace(ctx, tc))
		c.Set("trace_id", tc.TraceID)
		c.Set("request_id", tc.RequestID)

		c.Header(HeaderRequestID, tc.RequestID)
		c.Header(HeaderTraceID, tc.TraceID)

		c.Next()
	}
}
