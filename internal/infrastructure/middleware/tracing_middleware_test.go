package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTracingMiddleware(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(TracingMiddleware())
	router.GET("/api/v1/stats", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.POST("/api/v1/stats/poll", func(c *gin.Context) {
		c.Status(http.StatusServiceUnavailable)
	})

	serve(router, http.MethodGet, "/api/v1/stats")
	serve(router, http.MethodPost, "/api/v1/stats/poll")

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "http.GET /api/v1/stats", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}
