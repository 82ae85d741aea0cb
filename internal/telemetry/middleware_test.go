package telemetry

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupRecorder(t *testing.T) *tracetest.SpanRecorder {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
	return recorder
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestFiberMiddleware(t *testing.T) {
	recorder := setupRecorder(t)

	app := fiber.New()
	app.Use(FiberMiddleware())
	app.Get("/v1/me/profile", func(c *fiber.Ctx) error {
		c.Locals("userID", "user-42")
		AddSpanEvent(c, "profile.loaded")
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/v1/me/profile", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", resp.Header.Get("X-Trace-ID"))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "GET /v1/me/profile", span.Name())
	assert.Equal(t, "00f067aa0ba902b7", span.Parent().SpanID().String())
	assert.Equal(t, codes.Ok, span.Status().Code)

	user, ok := attrValue(span.Attributes(), "enduser.id")
	require.True(t, ok)
	assert.Equal(t, "user-42", user.AsString())

	status, ok := attrValue(span.Attributes(), "http.status_code")
	require.True(t, ok)
	assert.Equal(t, int64(200), status.AsInt64())

	require.Len(t, span.Events(), 1)
	assert.Equal(t, "profile.loaded", span.Events()[0].Name)
}

func TestFiberMiddleware_ErrorStatus(t *testing.T) {
	recorder := setupRecorder(t)

	app := fiber.New()
	app.Use(FiberMiddleware())
	app.Get("/boom", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusBadRequest).SendString("bad")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "HTTP 400", spans[0].Status().Description)

	_, ok := attrValue(spans[0].Attributes(), "enduser.id")
	assert.False(t, ok)
}
