package ctxmanage

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TraceIDKey is the gin context key under which the request trace id is stored.
const TraceIDKey = "trace-id"

// GetTraceIdOfRequest returns the trace id set by the logging middleware,
// generating a fresh one if the middleware did not run for this request.
func GetTraceIdOfRequest(c *gin.Context) string {
	traceId, ok := c.Value(TraceIDKey).(string)
	if !ok || traceId == "" {
		traceId = uuid.NewString()
		c.Set(TraceIDKey, traceId)
	}
	return traceId
}
