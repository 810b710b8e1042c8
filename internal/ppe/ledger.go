package ppe

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/DaniloHMoura/EPIApp/internal/model"
)

// AdjustQuantity is the only mutating operation the catalog exposes to
// this engine: it applies a signed delta to an item's on-hand quantity
// and returns the new quantity. Fails with ErrNegativeStock if the
// result would go below zero.
func AdjustQuantity(ctx context.Context, db *sql.DB, itemID int64, delta int) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	newQty, err := adjustQuantityTx(ctx, tx, itemID, delta)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing adjustment: %w", err)
	}
	return newQty, nil
}

// adjustQuantityTx applies a delta inside an existing transaction.
func adjustQuantityTx(ctx context.Context, tx *sql.Tx, itemID int64, delta int) (int, error) {
	var current int
	err := tx.QueryRowContext(ctx,
		`SELECT quantity FROM items WHERE id = ? AND deleted_at IS NULL`, itemID,
	).Scan(&current)
	if err == sql.ErrNoRows {
		return 0, ErrItemNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("checking current quantity: %w", err)
	}

	newQty := current + delta
	if newQty < 0 {
		return 0, &NegativeStockError{ItemID: itemID, Current: current, Delta: delta}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE items SET quantity = ? WHERE id = ?`, newQty, itemID,
	)
	if err != nil {
		return 0, fmt.Errorf("adjusting quantity: %w", err)
	}
	return newQty, nil
}

// ApplyMovement applies one confirmed line: the stock adjustment and the
// ledger append happen in a single transaction, so readers never see a
// torn line. Negative delta issues stock to the person, positive delta
// returns it.
func ApplyMovement(ctx context.Context, db *sql.DB, itemID, personID int64, delta int, reason string, expiresAt *time.Time, at time.Time) (*model.Movement, error) {
	if delta == 0 {
		return nil, fmt.Errorf("%w: delta must be non-zero", ErrValidation)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := adjustQuantityTx(ctx, tx, itemID, delta); err != nil {
		return nil, err
	}

	var expires any
	if expiresAt != nil {
		expires = expiresAt.UTC()
	}
	result, err := tx.ExecContext(ctx,
		`INSERT INTO movements (item_id, person_id, delta, reason, moved_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		itemID, personID, delta, reason, at.UTC(), expires,
	)
	if err != nil {
		return nil, fmt.Errorf("appending movement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing movement: %w", err)
	}

	movementID, _ := result.LastInsertId()
	return GetMovement(ctx, db, movementID)
}

// GetMovement returns a ledger entry by ID.
func GetMovement(ctx context.Context, db *sql.DB, id int64) (*model.Movement, error) {
	m := &model.Movement{}
	var reason, code, size sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT m.id, m.item_id, m.person_id, m.delta, m.reason, m.moved_at, m.expires_at,
		        i.name, i.code, i.size, p.full_name
		 FROM movements m
		 JOIN items i ON i.id = m.item_id
		 JOIN people p ON p.id = m.person_id
		 WHERE m.id = ?`, id,
	).Scan(&m.ID, &m.ItemID, &m.PersonID, &m.Delta, &reason, &m.MovedAt, &m.ExpiresAt,
		&m.ItemName, &code, &size, &m.PersonName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting movement: %w", err)
	}
	m.Reason = reason.String
	m.ItemCode = code.String
	m.ItemSize = size.String
	return m, nil
}

// OutstandingByPerson aggregates the ledger for one person: confirmed
// entries grouped by item, deltas summed, returning only items still
// owed. Ordered by item id for stable display. A pure read path; staged
// lines never show up here.
func OutstandingByPerson(ctx context.Context, db *sql.DB, personID int64) ([]model.OutstandingItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT i.id, i.name, COALESCE(i.code, ''), COALESCE(i.size, ''), -SUM(m.delta)
		 FROM movements m
		 JOIN items i ON i.id = m.item_id
		 WHERE m.person_id = ?
		 GROUP BY i.id
		 HAVING SUM(m.delta) < 0
		 ORDER BY i.id`, personID,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregating outstanding balance: %w", err)
	}
	defer rows.Close()

	var items []model.OutstandingItem
	for rows.Next() {
		var it model.OutstandingItem
		if err := rows.Scan(&it.ItemID, &it.Name, &it.Code, &it.Size, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scanning outstanding item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// OutstandingForPair returns how many units of one item a person still
// holds. Zero (not an error) if no entries exist for the pair.
func OutstandingForPair(ctx context.Context, db *sql.DB, personID, itemID int64) (int, error) {
	var outstanding int
	err := db.QueryRowContext(ctx,
		`SELECT COALESCE(-SUM(delta), 0) FROM movements
		 WHERE person_id = ? AND item_id = ?`, personID, itemID,
	).Scan(&outstanding)
	if err != nil {
		return 0, fmt.Errorf("aggregating outstanding pair: %w", err)
	}
	return outstanding, nil
}
