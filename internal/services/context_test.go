package services_test

import (
	"context"
	"testing"

	"conveyor/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithItemID(ctx, "6b9f8a6e")
	ctx = services.WithItemKind(ctx, "ingest")
	ctx = services.WithWorker(ctx, "worker-1")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.ItemIDFromContext(ctx); !ok || id != "6b9f8a6e" {
		t.Fatalf("unexpected item id: %v %v", id, ok)
	}
	if kind, ok := services.ItemKindFromContext(ctx); !ok || kind != "ingest" {
		t.Fatalf("unexpected item kind: %v %v", kind, ok)
	}
	if worker, ok := services.WorkerFromContext(ctx); !ok || worker != "worker-1" {
		t.Fatalf("unexpected worker: %v %v", worker, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithItemID(ctx, "")
	ctx = services.WithWorker(ctx, "")
	if _, ok := services.ItemIDFromContext(ctx); ok {
		t.Fatal("expected no item id value")
	}
	if _, ok := services.WorkerFromContext(ctx); ok {
		t.Fatal("expected no worker value")
	}
}
