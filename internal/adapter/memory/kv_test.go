package memory

import (
	"context"
	"testing"
)

func TestGetSetDelete(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "reservations"); ok || err != nil {
		t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
	}

	if err := s.Set(ctx, "reservations", "[]"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	v, ok, err := s.Get(ctx, "reservations")
	if err != nil || !ok || v != "[]" {
		t.Fatalf("expected [], got %q ok=%v err=%v", v, ok, err)
	}

	if err := s.Set(ctx, "reservations", `[{"id":"1"}]`); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	if v, _, _ := s.Get(ctx, "reservations"); v != `[{"id":"1"}]` {
		t.Errorf("overwrite not applied: %q", v)
	}

	if err := s.Delete(ctx, "reservations"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "reservations"); ok {
		t.Error("key still present after delete")
	}
}
