package logging

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   DEBUG,
		" WARN ":  WARN,
		"error":   ERROR,
		"":        INFO,
		"verbose": INFO,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestGetLoggerTagsRequestID(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	base := FromZap(zap.New(core))

	ctx := WithRequestID(context.Background(), "req-1")
	logger, ctx := GetLogger(ctx, base)
	logger.Info(ctx, "hello")

	// second lookup reuses the stored logger
	again, _ := GetLogger(ctx, base)
	if again != logger {
		t.Error("expected logger cached in context")
	}

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["request_id"]; got != "req-1" {
		t.Errorf("expected request_id req-1, got %v", got)
	}
}

func TestRequestIDDefault(t *testing.T) {
	if got := RequestID(context.Background()); got != "no-request-id" {
		t.Errorf("unexpected default %q", got)
	}
	if NewRequestID() == NewRequestID() {
		t.Error("request ids must differ")
	}
}
