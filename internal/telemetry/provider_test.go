package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

func TestInitTracerProvider_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := InitTracerProvider(context.Background(), "", "shop", "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestWithHTTPRoute(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	mux := http.NewServeMux()
	mux.Handle("GET /lc", WithHTTPRoute(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	ctx, span := tp.Tracer("test").Start(context.Background(), "request")
	req := httptest.NewRequest(http.MethodGet, "/lc", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	span.End()

	assert.Equal(t, http.StatusNoContent, rec.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Attributes(), semconv.HTTPRoute("GET /lc"))
	assert.True(t, oteltrace.SpanContextFromContext(ctx).IsValid())
}
