package tracing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/yeisme/filecdn/pkg/configs"
	"github.com/yeisme/filecdn/pkg/tracing"
)

func TestDisabledTracerIsNoop(t *testing.T) {
	ctx := context.Background()

	if err := tracing.InitTracer(ctx, configs.TracingConfig{Enabled: false}); err != nil {
		t.Fatal(err)
	}

	_, span := tracing.StartSpan(ctx, "files.get")
	tracing.RecordError(span, errors.New("boom"))
	tracing.RecordError(span, nil)
	span.End()

	if err := tracing.ShutdownTracer(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestUnsupportedExporter(t *testing.T) {
	cfg := configs.TracingConfig{Enabled: true, ServiceName: "filecdn", ExporterType: "jaeger", SampleRate: 1}

	if err := tracing.InitTracer(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unsupported exporter")
	}
}
