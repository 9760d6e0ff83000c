package loyalty

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/polkiloo/stampcard/internal/config"
)

func TestNewGatewayUsesConfig(t *testing.T) {
	cfg := &config.Config{APIBaseURL: "http://example.com/api/v1", AuthType: "U", RequestTimeout: time.Second}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	gateway, err := newGateway(gatewayParams{Config: cfg, Logger: logger})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	client, ok := gateway.(*HTTPClient)
	if !ok {
		t.Fatalf("expected *HTTPClient, got %T", gateway)
	}
	if client.authType != "U" || client.httpClient.Timeout != time.Second {
		t.Fatalf("config not applied: auth=%q timeout=%v", client.authType, client.httpClient.Timeout)
	}
}

func TestNewGatewayRejectsRelativeURL(t *testing.T) {
	cfg := &config.Config{APIBaseURL: "/relative"}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	if _, err := newGateway(gatewayParams{Config: cfg, Logger: logger}); err == nil {
		t.Fatal("expected error for relative url")
	}
}
