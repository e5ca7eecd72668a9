package otel

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestNewProvidersEmptyEndpointIsNoop(t *testing.T) {
	ctx := context.Background()
	for _, endpoint := range []string{"", "   "} {
		providers, err := NewProviders(ctx, endpoint, "snapfeed-backend", false)
		if err != nil {
			t.Fatalf("NewProviders(%q): %v", endpoint, err)
		}
		if providers.TracerProvider == nil || providers.MeterProvider == nil || providers.LoggerProvider == nil {
			t.Fatalf("NewProviders(%q): all providers should be non-nil", endpoint)
		}
		// No-op shutdown is repeatable.
		if err := providers.Shutdown(ctx); err != nil {
			t.Errorf("first shutdown: %v", err)
		}
		if err := providers.Shutdown(ctx); err != nil {
			t.Errorf("second shutdown: %v", err)
		}
	}
}

func TestNewProvidersRejectsBadEndpoints(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name     string
		endpoint string
	}{
		{"invalid characters", "://invalid"},
		{"malformed url", "http://[invalid"},
		{"missing host", "http://"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewProviders(ctx, tc.endpoint, "snapfeed-backend", false); err == nil {
				t.Errorf("NewProviders(%q): expected error", tc.endpoint)
			}
		})
	}
}

func TestSetGlobalInstallsProviders(t *testing.T) {
	providers, err := NewProviders(context.Background(), "", "snapfeed-backend", false)
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}

	prevTracer := otel.GetTracerProvider()
	prevMeter := otel.GetMeterProvider()
	defer func() {
		otel.SetTracerProvider(prevTracer)
		otel.SetMeterProvider(prevMeter)
	}()

	providers.SetGlobal()

	if otel.GetTracerProvider() == prevTracer {
		t.Error("global TracerProvider not replaced")
	}
	if otel.GetMeterProvider() == prevMeter {
		t.Error("global MeterProvider not replaced")
	}
}

func TestSetGlobalSkipsNilProviders(t *testing.T) {
	ctx := context.Background()
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(ctx) }()

	prevTracer := otel.GetTracerProvider()
	prevMeter := otel.GetMeterProvider()
	defer func() {
		otel.SetTracerProvider(prevTracer)
		otel.SetMeterProvider(prevMeter)
	}()

	providers := &Providers{
		TracerProvider: tp,
		Shutdown:       func(context.Context) error { return nil },
	}
	providers.SetGlobal()

	if otel.GetTracerProvider() == prevTracer {
		t.Error("global TracerProvider not replaced")
	}
	if otel.GetMeterProvider() != prevMeter {
		t.Error("nil MeterProvider should leave the global untouched")
	}

	// An entirely empty Providers must not panic or clobber anything.
	(&Providers{Shutdown: func(context.Context) error { return nil }}).SetGlobal()
}
