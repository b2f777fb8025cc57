package services_test

import (
	"context"
	"testing"

	"goodwatch/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRequestID(ctx, "req-123")
	ctx = services.WithSessionID(ctx, "session_1_abc")
	ctx = services.WithViewID(ctx, "view-9")

	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
	if sid, ok := services.SessionIDFromContext(ctx); !ok || sid != "session_1_abc" {
		t.Fatalf("unexpected session id: %v %v", sid, ok)
	}
	if vid, ok := services.ViewIDFromContext(ctx); !ok || vid != "view-9" {
		t.Fatalf("unexpected view id: %v %v", vid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := services.WithSessionID(context.Background(), "")
	if _, ok := services.SessionIDFromContext(ctx); ok {
		t.Fatal("expected no session value")
	}
}
