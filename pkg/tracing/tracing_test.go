package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupRecorder 使用内存Recorder替代OTLP exporter，测试不依赖Jaeger
func setupRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func TestStartSpan(t *testing.T) {
	recorder := setupRecorder(t)

	t.Run("父子Span共享TraceID", func(t *testing.T) {
		ctx, parent := StartSpan(context.Background(), "catalog", "ListBooks")
		childCtx, child := StartSpan(ctx, "catalog", "QueryDataset")

		assert.Equal(t, ExtractTraceID(ctx), ExtractTraceID(childCtx))
		assert.Equal(t, parent.SpanContext().TraceID(), child.SpanContext().TraceID())

		child.End()
		parent.End()
	})

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "QueryDataset", ended[0].Name())
	assert.Equal(t, "ListBooks", ended[1].Name())
}

func TestEndSpan(t *testing.T) {
	recorder := setupRecorder(t)

	_, span := StartSpan(context.Background(), "catalog", "GetBookDetail")
	EndSpan(span, errors.New("图书不存在"))

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Len(t, ended[0].Events(), 1, "RecordError会写入一个exception事件")
}

func TestExtractTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, ExtractTraceID(context.Background()))
}
