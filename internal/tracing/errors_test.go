package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func attrMap(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestRecordHTTPError(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	tracer := tp.Tracer("test")

	tests := []struct {
		status   int
		category string
	}{
		{400, "client_error"},
		{404, "client_error"},
		{500, "server_error"},
		{302, "unknown"},
	}
	for _, tt := range tests {
		_, span := tracer.Start(context.Background(), "req")
		RecordHTTPError(span, errors.New("boom"), tt.status)
		span.End()
	}

	ended := sr.Ended()
	require.Len(t, ended, len(tests))
	for i, tt := range tests {
		attrs := attrMap(ended[i])
		assert.Equal(t, int64(tt.status), attrs["http.status_code"].AsInt64())
		assert.Equal(t, tt.category, attrs["error.category"].AsString(), "状态码 %d 的分类", tt.status)
		assert.Equal(t, string(ErrorTypeHTTP), attrs["error.type"].AsString())
		assert.Equal(t, codes.Error, ended[i].Status().Code)
	}
}

func TestRecordErrorIgnoresNil(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	_, span := tp.Tracer("test").Start(context.Background(), "req")

	RecordHTTPError(span, nil, 500)
	RecordError(nil, errors.New("x"), ErrorTypeInternal)
	span.End()

	require.Len(t, sr.Ended(), 1)
	assert.Empty(t, sr.Ended()[0].Attributes(), "nil 错误不应写入属性")
	assert.Equal(t, codes.Unset, sr.Ended()[0].Status().Code)
}
