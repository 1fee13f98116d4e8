package redis

import (
	"context"
	"errors"
	"testing"

	"arquiz-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestSaveStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSaveStore(newClient(mr))
	ctx := context.Background()

	if _, err := store.Load(ctx, "p1"); !errors.Is(err, domain.ErrSaveNotFound) {
		t.Fatalf("expected ErrSaveNotFound, got %v", err)
	}

	want := domain.SaveData{Score: 70, ElapsedTotal: 214.5}
	if err := store.Save(ctx, "p1", want); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := mr.HGet("save:p1", "score"); got != "70" {
		t.Fatalf("expected score field 70, got %q", got)
	}
	got, err := store.Load(ctx, "p1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}
