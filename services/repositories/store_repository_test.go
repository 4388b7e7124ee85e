package repositories

import (
	"context"
	"testing"

	"github.com/afinmh/TajweeDo/model"
)

func TestGrantItemOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewStoreRepository(db)
	ctx := context.Background()

	if err := db.Create(&model.StoreItem{ID: 1, Name: "Avatar", PricePoints: 100, Active: true}).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}

	granted, err := repo.GrantItem(ctx, "u1", 1, model.PurchaseSourceStore)
	if err != nil || !granted {
		t.Fatalf("expected first grant, got %v %v", granted, err)
	}
	granted, err = repo.GrantItem(ctx, "u1", 1, model.PurchaseSourceDailyLogin)
	if err != nil || granted {
		t.Fatalf("expected repeat grant to be a no-op, got %v %v", granted, err)
	}

	owned, err := repo.OwnedItemIDs(ctx, "u1")
	if err != nil || !owned[1] || len(owned) != 1 {
		t.Fatalf("expected item 1 owned, got %v %v", owned, err)
	}
}

func TestListActiveItems(t *testing.T) {
	db := newTestDB(t)
	repo := NewStoreRepository(db)

	items := []model.StoreItem{
		{ID: 1, Name: "B", PricePoints: 300, Active: true},
		{ID: 2, Name: "A", PricePoints: 100, Active: true},
		{ID: 3, Name: "Hidden", PricePoints: 50, Active: false},
	}
	for i := range items {
		if err := db.Create(&items[i]).Error; err != nil {
			t.Fatalf("seed item: %v", err)
		}
	}

	got, err := repo.ListActiveItems(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 1 {
		t.Fatalf("unexpected items %+v", got)
	}
}
