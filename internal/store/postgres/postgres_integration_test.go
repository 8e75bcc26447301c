package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"bukustok/backend/internal/domain"
	"bukustok/backend/internal/store"
)

func TestDocumentRoundTrip(t *testing.T) {
	databaseURL := os.Getenv("BUKUSTOK_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set BUKUSTOK_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	shopID := fmt.Sprintf("shop-it-%d", time.Now().UnixNano())
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM shop_documents WHERE shop_id = $1`, shopID)
	})

	if _, err := s.Get(ctx, shopID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing document, got %v", err)
	}

	doc := domain.NewDocument()
	doc.Pages = []domain.Page{{ID: "p1", PageNo: 1, ItemName: "Engine Oil"}}
	doc.Entries = []domain.Entry{{ID: "e1", PageID: "p1", Car: "Swift", Qty: 5}}
	if err := s.Set(ctx, shopID, doc); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := s.Get(ctx, shopID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Pages) != 1 || got.Pages[0].ItemName != "Engine Oil" {
		t.Fatalf("unexpected pages after round trip: %+v", got.Pages)
	}
	if got.Settings.Limit != 5 {
		t.Fatalf("expected default limit 5, got %d", got.Settings.Limit)
	}

	doc.Entries[0].Qty = 3
	if err := s.Set(ctx, shopID, doc); err != nil {
		t.Fatalf("second set: %v", err)
	}
	got, err = s.Get(ctx, shopID)
	if err != nil {
		t.Fatalf("get after replace: %v", err)
	}
	if got.Entries[0].Qty != 3 {
		t.Fatalf("expected replaced qty 3, got %d", got.Entries[0].Qty)
	}
}
