// Package report provides the read-only reporting queries layered on top
// of the catalog and the movement ledger. It returns plain data; rendering
// and export belong to callers.
package report

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/DaniloHMoura/EPIApp/internal/model"
	"github.com/DaniloHMoura/EPIApp/internal/store"
)

// LowStockItems returns active items whose on-hand quantity has reached
// the minimum-stock threshold.
func LowStockItems(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	items, err := store.ListItems(ctx, db, "", 0)
	if err != nil {
		return nil, err
	}

	var low []model.Item
	for _, item := range items {
		if item.LowStock() {
			low = append(low, item)
		}
	}
	return low, nil
}

// InventoryReport is the full catalog with stock valuation totals.
type InventoryReport struct {
	Items      []model.Item
	TotalUnits int
	TotalValue decimal.Decimal
}

// Inventory returns the full inventory report.
func Inventory(ctx context.Context, db *sql.DB) (*InventoryReport, error) {
	items, err := store.ListItems(ctx, db, "", 0)
	if err != nil {
		return nil, err
	}

	r := &InventoryReport{Items: items, TotalValue: decimal.Zero}
	for _, item := range items {
		r.TotalUnits += item.Quantity
		r.TotalValue = r.TotalValue.Add(item.StockValue())
	}
	return r, nil
}

// CategorySummary aggregates stock per category.
type CategorySummary struct {
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
	Items      int    `json:"items"`
	Units      int    `json:"units"`
	LowStock   int    `json:"low_stock"`
}

// ByCategory returns per-category stock summaries, including empty
// categories.
func ByCategory(ctx context.Context, db *sql.DB) ([]CategorySummary, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT c.id, c.name, COUNT(i.id), COALESCE(SUM(i.quantity), 0),
		        COALESCE(SUM(CASE WHEN i.quantity <= i.min_stock THEN 1 ELSE 0 END), 0)
		 FROM categories c
		 LEFT JOIN items i ON i.category_id = c.id AND i.deleted_at IS NULL
		 GROUP BY c.id
		 ORDER BY c.name`,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregating categories: %w", err)
	}
	defer rows.Close()

	var summaries []CategorySummary
	for rows.Next() {
		var s CategorySummary
		if err := rows.Scan(&s.CategoryID, &s.Name, &s.Items, &s.Units, &s.LowStock); err != nil {
			return nil, fmt.Errorf("scanning category summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// IssueCount ranks an item by total units issued.
type IssueCount struct {
	ItemID int64  `json:"item_id"`
	Name   string `json:"name"`
	Issued int    `json:"issued"`
}

// MostIssued returns the most-issued items, highest first. limit of 0
// means no cap.
func MostIssued(ctx context.Context, db *sql.DB, limit int) ([]IssueCount, error) {
	query := `SELECT i.id, i.name, SUM(-m.delta)
	          FROM movements m
	          JOIN items i ON i.id = m.item_id
	          WHERE m.delta < 0
	          GROUP BY i.id
	          ORDER BY SUM(-m.delta) DESC, i.id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ranking issued items: %w", err)
	}
	defer rows.Close()

	var counts []IssueCount
	for rows.Next() {
		var c IssueCount
		if err := rows.Scan(&c.ItemID, &c.Name, &c.Issued); err != nil {
			return nil, fmt.Errorf("scanning issue count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// DeliveredFilter narrows the delivered-equipment listing.
type DeliveredFilter struct {
	PersonID    int64
	IssuedFrom  *time.Time
	IssuedTo    *time.Time
	ExpiresFrom *time.Time
	ExpiresTo   *time.Time
}

// Delivered lists issued movements (equipment handed out), newest first,
// with item and person details joined in.
func Delivered(ctx context.Context, db *sql.DB, f DeliveredFilter) ([]model.Movement, error) {
	query := `SELECT m.id, m.item_id, m.person_id, m.delta, m.reason, m.moved_at, m.expires_at,
	                 i.name, COALESCE(i.code, ''), COALESCE(i.size, ''), p.full_name
	          FROM movements m
	          JOIN items i ON i.id = m.item_id
	          JOIN people p ON p.id = m.person_id
	          WHERE m.delta < 0`
	var args []any

	if f.PersonID > 0 {
		query += ` AND m.person_id = ?`
		args = append(args, f.PersonID)
	}
	if f.IssuedFrom != nil {
		query += ` AND m.moved_at >= ?`
		args = append(args, f.IssuedFrom.UTC())
	}
	if f.IssuedTo != nil {
		query += ` AND m.moved_at <= ?`
		args = append(args, f.IssuedTo.UTC())
	}
	if f.ExpiresFrom != nil {
		query += ` AND m.expires_at >= ?`
		args = append(args, f.ExpiresFrom.UTC())
	}
	if f.ExpiresTo != nil {
		query += ` AND m.expires_at <= ?`
		args = append(args, f.ExpiresTo.UTC())
	}

	query += ` ORDER BY m.moved_at DESC, m.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing delivered equipment: %w", err)
	}
	defer rows.Close()

	var movements []model.Movement
	for rows.Next() {
		var m model.Movement
		var reason sql.NullString
		if err := rows.Scan(&m.ID, &m.ItemID, &m.PersonID, &m.Delta, &reason, &m.MovedAt,
			&m.ExpiresAt, &m.ItemName, &m.ItemCode, &m.ItemSize, &m.PersonName); err != nil {
			return nil, fmt.Errorf("scanning delivered movement: %w", err)
		}
		m.Reason = reason.String
		movements = append(movements, m)
	}
	return movements, rows.Err()
}
