package ctxutil

import (
	"context"
	"testing"
	"time"
)

func TestWithRequestInfo(t *testing.T) {
	ctx := WithRequestInfo(context.Background(), "req-1", "10.0.0.1", "curl/8.0")

	if got := GetRequestID(ctx); got != "req-1" {
		t.Errorf("Expected request id req-1, got %q", got)
	}
	if got := GetClientIP(ctx); got != "10.0.0.1" {
		t.Errorf("Expected client ip 10.0.0.1, got %q", got)
	}
	if got := GetUserAgent(ctx); got != "curl/8.0" {
		t.Errorf("Expected user agent curl/8.0, got %q", got)
	}
	if GetStartTime(ctx).IsZero() {
		t.Error("Expected start time to be set")
	}
}

func TestWithRequestInfo_KeepsStartTime(t *testing.T) {
	start := time.Now().Add(-time.Minute)
	ctx := context.WithValue(context.Background(), StartTimeKey, start)
	ctx = WithRequestInfo(ctx, "req-2", "", "")

	if !GetStartTime(ctx).Equal(start) {
		t.Error("Expected existing start time to be preserved")
	}
	if GetDuration(ctx) < time.Minute {
		t.Error("Expected duration measured from the original start time")
	}
}

func TestGetters_EmptyContext(t *testing.T) {
	ctx := context.Background()

	if GetRequestID(ctx) != "" || GetDataset(ctx) != "" || GetModule(ctx) != "" {
		t.Error("Expected empty values from a bare context")
	}
	if GetDuration(ctx) != 0 {
		t.Error("Expected zero duration without a start time")
	}
}

func TestNewContextWithRequest(t *testing.T) {
	ctx := NewContextWithRequest(WithDataset(context.Background(), "ownership"), "handler", "List")

	if GetModule(ctx) != "handler" || GetFunction(ctx) != "List" {
		t.Errorf("Unexpected module/function: %s/%s", GetModule(ctx), GetFunction(ctx))
	}
	if GetDataset(ctx) != "ownership" {
		t.Errorf("Expected dataset ownership, got %q", GetDataset(ctx))
	}
}
