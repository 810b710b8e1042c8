package ppe

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/DaniloHMoura/EPIApp/internal/model"
	"github.com/DaniloHMoura/EPIApp/internal/store"
)

// Actor identifies the operator performing an operation (not the subject
// person a batch is issued to or from).
type Actor struct {
	ID    int64
	Level int
}

// Engine is the inventory movement and reconciliation engine. All
// mutations to the ledger and the catalog's on-hand quantities go through
// it; the apply step of a confirmation is serialized by a global lock so
// two concurrent batches can never both pass availability checks against
// a stale quantity.
type Engine struct {
	db    *sql.DB
	audit Recorder
	now   func() time.Time

	applyMu sync.Mutex
}

// New creates an engine over an open database. audit may be nil.
func New(db *sql.DB, audit Recorder) *Engine {
	return &Engine{db: db, audit: audit, now: time.Now}
}

// ReturnSelection is one (item, quantity-to-return) pair picked from a
// person's outstanding balance.
type ReturnSelection struct {
	ItemID   int64
	Quantity int
}

// StageWithdrawal resolves an item by name or approval code (optionally
// narrowed by size) and stages a withdrawal line. Requires operator
// level. No persistent state changes.
func (e *Engine) StageWithdrawal(ctx context.Context, actor Actor, st *Stage, nameOrCode, size string, quantity, validityDays int) error {
	if !model.LevelAtLeast(actor.Level, model.LevelOperator) {
		return fmt.Errorf("%w: staging withdrawals requires operator level", ErrNotAuthorized)
	}
	if st.Kind() != KindWithdrawal {
		return fmt.Errorf("%w: stage is not a withdrawal stage", ErrValidation)
	}
	if st.PersonID() == 0 {
		return fmt.Errorf("%w: no person selected", ErrValidation)
	}
	if nameOrCode == "" {
		return fmt.Errorf("%w: item name or code required", ErrValidation)
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidQuantity)
	}
	if validityDays <= 0 {
		return fmt.Errorf("%w: validity days must be positive", ErrValidation)
	}

	item, err := store.FindItem(ctx, e.db, nameOrCode, size)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrItemNotFound
	}
	if quantity > item.Quantity {
		return &InsufficientStockError{
			ItemID:    item.ID,
			Name:      item.Name,
			Available: item.Quantity,
			Requested: quantity,
		}
	}

	st.add(PendingLine{
		ItemID:       item.ID,
		Name:         item.Name,
		Code:         item.Code,
		Size:         item.Size,
		Quantity:     quantity,
		ValidityDays: validityDays,
	})
	e.record(ctx, actor.ID, "stage_withdrawal",
		fmt.Sprintf("staged withdrawal of %d x %q (size %q) for person %d",
			quantity, item.Name, item.Size, st.PersonID()))
	return nil
}

// StageReturns stages return lines for selected outstanding items. Each
// selection must not exceed the person's current outstanding balance for
// that item; a zero quantity is skipped. The authoritative check happens
// again at confirmation time.
func (e *Engine) StageReturns(ctx context.Context, actor Actor, st *Stage, selections []ReturnSelection) error {
	if !model.LevelAtLeast(actor.Level, model.LevelOperator) {
		return fmt.Errorf("%w: staging returns requires operator level", ErrNotAuthorized)
	}
	if st.Kind() != KindReturn {
		return fmt.Errorf("%w: stage is not a return stage", ErrValidation)
	}
	if st.PersonID() == 0 {
		return fmt.Errorf("%w: no person selected", ErrValidation)
	}

	for _, sel := range selections {
		if sel.Quantity == 0 {
			continue
		}
		if sel.Quantity < 0 {
			return fmt.Errorf("%w: quantity must not be negative", ErrInvalidQuantity)
		}

		outstanding, err := OutstandingForPair(ctx, e.db, st.PersonID(), sel.ItemID)
		if err != nil {
			return err
		}
		if sel.Quantity > outstanding {
			return &InvalidQuantityError{
				ItemID:      sel.ItemID,
				Outstanding: outstanding,
				Requested:   sel.Quantity,
			}
		}

		item, err := store.GetItem(ctx, e.db, sel.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrItemNotFound
		}

		st.add(PendingLine{
			ItemID:   item.ID,
			Name:     item.Name,
			Code:     item.Code,
			Size:     item.Size,
			Quantity: sel.Quantity,
		})
		e.record(ctx, actor.ID, "stage_return",
			fmt.Sprintf("staged return of %d x %q from person %d",
				sel.Quantity, item.Name, st.PersonID()))
	}
	return nil
}

// RemoveLine removes a staged line by position.
func (e *Engine) RemoveLine(ctx context.Context, actor Actor, st *Stage, index int) error {
	lines := st.Lines()
	if err := st.RemoveLine(index); err != nil {
		return err
	}
	e.record(ctx, actor.ID, "remove_pending_line",
		fmt.Sprintf("removed staged %s line %d (%q)", st.Kind(), index, lines[index].Name))
	return nil
}

// OutstandingByPerson answers what the person currently holds.
func (e *Engine) OutstandingByPerson(ctx context.Context, personID int64) ([]model.OutstandingItem, error) {
	return OutstandingByPerson(ctx, e.db, personID)
}

// OutstandingForPair answers how much of one item the person holds.
func (e *Engine) OutstandingForPair(ctx context.Context, personID, itemID int64) (int, error) {
	return OutstandingForPair(ctx, e.db, personID, itemID)
}

// AdjustQuantity exposes the catalog's single mutating stock operation,
// audited, for manual corrections outside the staged workflows.
func (e *Engine) AdjustQuantity(ctx context.Context, actor Actor, itemID int64, delta int) (int, error) {
	if !model.LevelAtLeast(actor.Level, model.LevelAdmin) {
		return 0, fmt.Errorf("%w: manual stock adjustment requires admin level", ErrNotAuthorized)
	}

	e.applyMu.Lock()
	defer e.applyMu.Unlock()

	newQty, err := AdjustQuantity(ctx, e.db, itemID, delta)
	if err != nil {
		return 0, err
	}
	e.record(ctx, actor.ID, "adjust_quantity",
		fmt.Sprintf("adjusted item %d by %+d to %d", itemID, delta, newQty))
	return newQty, nil
}
