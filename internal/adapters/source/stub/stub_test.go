package stub

import (
	"context"
	"testing"

	"micdrop/internal/adapters/source"
)

func TestStub_DisabledByDefault(t *testing.T) {
	a := New(false)
	if a.Enabled() {
		t.Fatal("stub must be opt-in")
	}
}

func TestStub_EmptyBatch(t *testing.T) {
	a := New(true)
	b, err := a.Fetch(context.Background(), source.FetchArgs{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(b.Candidates) != 0 || len(b.Leads) != 0 {
		t.Fatalf("expected empty batch, got %+v", b)
	}
}
