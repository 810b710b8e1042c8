package report

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/DaniloHMoura/EPIApp/internal/db"
	"github.com/DaniloHMoura/EPIApp/internal/model"
	"github.com/DaniloHMoura/EPIApp/internal/ppe"
	"github.com/DaniloHMoura/EPIApp/internal/store"
)

func seedItem(t *testing.T, database *sql.DB, name string, quantity, minStock int, price string, categoryID *int64) *model.Item {
	t.Helper()
	item, err := store.CreateItem(context.Background(), database, &model.Item{
		Name:       name,
		Quantity:   quantity,
		MinStock:   minStock,
		Price:      decimal.RequireFromString(price),
		CategoryID: categoryID,
	})
	if err != nil {
		t.Fatalf("CreateItem(%s): %v", name, err)
	}
	return item
}

func seedHolder(t *testing.T, database *sql.DB, username string) *model.Person {
	t.Helper()
	p, err := store.CreatePerson(context.Background(), database, &model.Person{
		Username:     username,
		PasswordHash: "x",
		Level:        model.LevelHolder,
		FullName:     "Person " + username,
		Badge:        "B-" + username,
	})
	if err != nil {
		t.Fatalf("CreatePerson(%s): %v", username, err)
	}
	return p
}

func issue(t *testing.T, database *sql.DB, itemID, personID int64, quantity int, at time.Time) {
	t.Helper()
	expires := at.AddDate(0, 0, 30)
	_, err := ppe.ApplyMovement(context.Background(), database, itemID, personID,
		-quantity, model.ReasonIssued, &expires, at)
	if err != nil {
		t.Fatalf("ApplyMovement: %v", err)
	}
}

func TestLowStockItems(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	seedItem(t, database, "Glove-A", 10, 5, "2.50", nil)
	seedItem(t, database, "Helmet", 3, 5, "30", nil)
	seedItem(t, database, "Boots", 5, 5, "80", nil)

	low, err := LowStockItems(ctx, database)
	if err != nil {
		t.Fatalf("LowStockItems: %v", err)
	}
	if len(low) != 2 {
		t.Fatalf("expected 2 low-stock items, got %d", len(low))
	}
	names := map[string]bool{}
	for _, item := range low {
		names[item.Name] = true
	}
	if !names["Helmet"] || !names["Boots"] {
		t.Errorf("unexpected low-stock set: %v", names)
	}
}

func TestInventory(t *testing.T) {
	database := db.NewTestDB(t)

	seedItem(t, database, "Glove-A", 10, 0, "2.50", nil)
	seedItem(t, database, "Helmet", 3, 0, "30", nil)

	r, err := Inventory(context.Background(), database)
	if err != nil {
		t.Fatalf("Inventory: %v", err)
	}
	if len(r.Items) != 2 || r.TotalUnits != 13 {
		t.Errorf("unexpected totals: %d items, %d units", len(r.Items), r.TotalUnits)
	}
	// 10 * 2.50 + 3 * 30 = 115
	if want := decimal.RequireFromString("115"); !r.TotalValue.Equal(want) {
		t.Errorf("expected total value %s, got %s", want, r.TotalValue)
	}
}

func TestByCategory(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	gloves, err := store.CreateCategory(ctx, database, "Gloves", "")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	empty, err := store.CreateCategory(ctx, database, "Helmets", "")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	seedItem(t, database, "Glove-A", 10, 5, "2.50", &gloves.ID)
	seedItem(t, database, "Glove-B", 2, 5, "3", &gloves.ID)

	summaries, err := ByCategory(ctx, database)
	if err != nil {
		t.Fatalf("ByCategory: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(summaries))
	}

	byName := map[string]CategorySummary{}
	for _, s := range summaries {
		byName[s.Name] = s
	}
	g := byName["Gloves"]
	if g.Items != 2 || g.Units != 12 || g.LowStock != 1 {
		t.Errorf("unexpected gloves summary: %+v", g)
	}
	h := byName["Helmets"]
	if h.CategoryID != empty.ID || h.Items != 0 || h.Units != 0 {
		t.Errorf("expected empty helmets summary, got %+v", h)
	}
}

func TestMostIssued(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	gloves := seedItem(t, database, "Glove-A", 100, 0, "2.50", nil)
	boots := seedItem(t, database, "Boots", 100, 0, "80", nil)
	seedItem(t, database, "Helmet", 100, 0, "30", nil)
	dave := seedHolder(t, database, "dave")

	now := time.Now()
	issue(t, database, gloves.ID, dave.ID, 5, now)
	issue(t, database, gloves.ID, dave.ID, 3, now)
	issue(t, database, boots.ID, dave.ID, 4, now)
	// Returns don't count as issues.
	if _, err := ppe.ApplyMovement(ctx, database, gloves.ID, dave.ID, 2, model.ReasonReturned, nil, now); err != nil {
		t.Fatalf("ApplyMovement return: %v", err)
	}

	counts, err := MostIssued(ctx, database, 0)
	if err != nil {
		t.Fatalf("MostIssued: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("expected 2 ranked items, got %d", len(counts))
	}
	if counts[0].ItemID != gloves.ID || counts[0].Issued != 8 {
		t.Errorf("unexpected top item: %+v", counts[0])
	}
	if counts[1].ItemID != boots.ID || counts[1].Issued != 4 {
		t.Errorf("unexpected second item: %+v", counts[1])
	}

	limited, _ := MostIssued(ctx, database, 1)
	if len(limited) != 1 {
		t.Errorf("expected 1 item with limit, got %d", len(limited))
	}
}

func TestDelivered(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	gloves := seedItem(t, database, "Glove-A", 100, 0, "2.50", nil)
	dave := seedHolder(t, database, "dave")
	erin := seedHolder(t, database, "erin")

	jan := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	jun := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	issue(t, database, gloves.ID, dave.ID, 5, jan)
	issue(t, database, gloves.ID, erin.ID, 3, jun)

	all, err := Delivered(ctx, database, DeliveredFilter{})
	if err != nil {
		t.Fatalf("Delivered: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(all))
	}
	// Newest first.
	if all[0].PersonID != erin.ID || all[0].ItemName != "Glove-A" {
		t.Errorf("unexpected first delivery: %+v", all[0])
	}

	forDave, _ := Delivered(ctx, database, DeliveredFilter{PersonID: dave.ID})
	if len(forDave) != 1 || forDave[0].Delta != -5 {
		t.Errorf("unexpected per-person deliveries: %+v", forDave)
	}

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	recent, _ := Delivered(ctx, database, DeliveredFilter{IssuedFrom: &from})
	if len(recent) != 1 || !recent[0].MovedAt.Equal(jun) {
		t.Errorf("unexpected filtered deliveries: %+v", recent)
	}
}
