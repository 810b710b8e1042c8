package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestMovementIssued(t *testing.T) {
	issue := Movement{Delta: -5}
	if !issue.Issued() {
		t.Error("expected negative delta to be an issue")
	}

	ret := Movement{Delta: 5}
	if ret.Issued() {
		t.Error("expected positive delta not to be an issue")
	}
}

func TestMovementExpiredAt(t *testing.T) {
	now := time.Now()

	past := now.Add(-24 * time.Hour)
	expired := Movement{Delta: -1, ExpiresAt: &past}
	if !expired.ExpiredAt(now) {
		t.Error("expected movement with past expiration to be expired")
	}

	future := now.Add(24 * time.Hour)
	valid := Movement{Delta: -1, ExpiresAt: &future}
	if valid.ExpiredAt(now) {
		t.Error("expected movement with future expiration not to be expired")
	}

	ret := Movement{Delta: 1}
	if ret.ExpiredAt(now) {
		t.Error("expected return without expiration not to be expired")
	}
}

func TestItemLowStock(t *testing.T) {
	tests := []struct {
		quantity int
		minStock int
		expected bool
	}{
		{0, 0, true},
		{5, 10, true},
		{10, 10, true},
		{11, 10, false},
	}

	for _, tt := range tests {
		item := Item{Quantity: tt.quantity, MinStock: tt.minStock}
		if got := item.LowStock(); got != tt.expected {
			t.Errorf("LowStock() with quantity=%d min=%d = %v, want %v",
				tt.quantity, tt.minStock, got, tt.expected)
		}
	}
}

func TestItemStockValue(t *testing.T) {
	item := Item{Quantity: 3, Price: decimal.RequireFromString("12.50")}
	want := decimal.RequireFromString("37.50")
	if got := item.StockValue(); !got.Equal(want) {
		t.Errorf("StockValue() = %s, want %s", got, want)
	}
}
