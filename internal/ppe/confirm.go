package ppe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/DaniloHMoura/EPIApp/internal/model"
	"github.com/DaniloHMoura/EPIApp/internal/store"
)

// AppliedSummary describes a confirmed batch.
type AppliedSummary struct {
	Kind        Kind
	PersonID    int64
	Applied     int
	Movements   []model.Movement
	ConfirmedAt time.Time
}

// Confirm applies a full staged batch as one logical transaction, gated
// by re-authentication of the subject person: the person the batch is
// issued to or from, not the operator driving it.
//
// On a credential mismatch the staged lines and all persistent state are
// left untouched so the operator can retry. After authentication the
// lines are applied sequentially under the engine's apply lock; each line
// is atomic (stock adjustment + ledger append in one transaction) but the
// batch is not all-or-nothing: if a line's precondition no longer holds,
// the batch stops with a BatchError wrapping ErrConcurrentModification
// and prior lines stay applied. The stage is cleared on any outcome other
// than an authentication failure.
func (e *Engine) Confirm(ctx context.Context, actor Actor, st *Stage, credential string) (*AppliedSummary, error) {
	lines := st.Lines()
	if len(lines) == 0 {
		return nil, ErrNothingToConfirm
	}

	person, err := store.GetPerson(ctx, e.db, st.PersonID())
	if err != nil {
		return nil, err
	}
	if person == nil || person.DeletedAt != nil {
		return nil, ErrPersonNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(person.PasswordHash), []byte(credential)); err != nil {
		e.record(ctx, actor.ID, "confirm_denied",
			fmt.Sprintf("credential check failed for person %d (%s batch, %d lines)",
				person.ID, st.Kind(), len(lines)))
		return nil, ErrAuthenticationFailed
	}

	e.applyMu.Lock()
	defer e.applyMu.Unlock()

	confirmedAt := e.now()
	summary := &AppliedSummary{
		Kind:        st.Kind(),
		PersonID:    person.ID,
		ConfirmedAt: confirmedAt,
	}

	for i, line := range lines {
		movement, err := e.applyLine(ctx, person.ID, line, st.Kind(), confirmedAt)
		if err != nil {
			st.Clear()
			batchErr := err
			if errors.Is(err, ErrNegativeStock) || errors.Is(err, ErrInvalidQuantity) {
				batchErr = fmt.Errorf("%w: %v", ErrConcurrentModification, err)
			}
			return summary, &BatchError{Line: i, Applied: summary.Applied, Err: batchErr}
		}

		summary.Applied++
		summary.Movements = append(summary.Movements, *movement)

		action := "confirm_withdrawal"
		if st.Kind() == KindReturn {
			action = "confirm_return"
		}
		e.record(ctx, actor.ID, action,
			fmt.Sprintf("confirmed %s of %d x %q (size %q) for person %d",
				st.Kind(), line.Quantity, line.Name, line.Size, person.ID))
	}

	st.Clear()
	e.record(ctx, actor.ID, "confirm_batch",
		fmt.Sprintf("confirmed %s batch of %d lines for person %d",
			st.Kind(), summary.Applied, person.ID))
	return summary, nil
}

// applyLine applies one staged line. Preconditions are re-checked here
// against the then-current state: the withdrawal check rides on the
// stock adjustment itself, the return check re-reads the outstanding
// balance under the apply lock before writing.
func (e *Engine) applyLine(ctx context.Context, personID int64, line PendingLine, kind Kind, confirmedAt time.Time) (*model.Movement, error) {
	switch kind {
	case KindWithdrawal:
		expires := confirmedAt.AddDate(0, 0, line.ValidityDays)
		return ApplyMovement(ctx, e.db, line.ItemID, personID,
			-line.Quantity, model.ReasonIssued, &expires, confirmedAt)

	case KindReturn:
		outstanding, err := OutstandingForPair(ctx, e.db, personID, line.ItemID)
		if err != nil {
			return nil, err
		}
		if line.Quantity > outstanding {
			return nil, &InvalidQuantityError{
				ItemID:      line.ItemID,
				Outstanding: outstanding,
				Requested:   line.Quantity,
			}
		}
		return ApplyMovement(ctx, e.db, line.ItemID, personID,
			line.Quantity, model.ReasonReturned, nil, confirmedAt)

	default:
		return nil, fmt.Errorf("%w: unknown batch kind %q", ErrValidation, kind)
	}
}
