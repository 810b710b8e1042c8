package ppe

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DaniloHMoura/EPIApp/internal/db"
	"github.com/DaniloHMoura/EPIApp/internal/model"
	"github.com/DaniloHMoura/EPIApp/internal/store"
)

// testEngine returns an engine with a frozen clock and a DB-backed audit
// sink, plus an operator actor to drive it.
func testEngine(t *testing.T, database *sql.DB) (*Engine, Actor, time.Time) {
	t.Helper()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	e := New(database, NewDBRecorder(database))
	e.now = func() time.Time { return now }

	operator := seedPerson(t, database, "operator", "op-secret", model.LevelOperator)
	return e, Actor{ID: operator.ID, Level: operator.Level}, now
}

func TestIssueAndReturnCycle(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	engine, operator, now := testEngine(t, database)

	gloves := seedItem(t, database, "Glove-A", "CA-100", "M", 100)
	subject := seedPerson(t, database, "dave", "secret123", model.LevelHolder)

	st := NewStage(KindWithdrawal, subject.ID)
	if err := engine.StageWithdrawal(ctx, operator, st, "Glove-A", "M", 5, 30); err != nil {
		t.Fatalf("StageWithdrawal: %v", err)
	}
	if st.Len() != 1 {
		t.Fatalf("expected 1 staged line, got %d", st.Len())
	}

	// Staging touches nothing persistent.
	item, _ := store.GetItem(ctx, database, gloves.ID)
	if item.Quantity != 100 {
		t.Fatalf("staging changed quantity: %d", item.Quantity)
	}

	summary, err := engine.Confirm(ctx, operator, st, "secret123")
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if summary.Applied != 1 || len(summary.Movements) != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if st.Len() != 0 {
		t.Error("stage not cleared after confirmation")
	}

	m := summary.Movements[0]
	if m.Delta != -5 || m.Reason != model.ReasonIssued {
		t.Errorf("unexpected movement: %+v", m)
	}
	wantExpires := now.AddDate(0, 0, 30)
	if m.ExpiresAt == nil || !m.ExpiresAt.Equal(wantExpires) {
		t.Errorf("expected expiration %v, got %v", wantExpires, m.ExpiresAt)
	}

	item, _ = store.GetItem(ctx, database, gloves.ID)
	if item.Quantity != 95 {
		t.Errorf("expected quantity 95 after issue, got %d", item.Quantity)
	}
	outstanding, _ := engine.OutstandingForPair(ctx, subject.ID, gloves.ID)
	if outstanding != 5 {
		t.Errorf("expected 5 outstanding, got %d", outstanding)
	}

	// Return two of the five.
	ret := NewStage(KindReturn, subject.ID)
	err = engine.StageReturns(ctx, operator, ret, []ReturnSelection{{ItemID: gloves.ID, Quantity: 2}})
	if err != nil {
		t.Fatalf("StageReturns: %v", err)
	}
	summary, err = engine.Confirm(ctx, operator, ret, "secret123")
	if err != nil {
		t.Fatalf("Confirm return: %v", err)
	}
	if summary.Movements[0].Delta != 2 || summary.Movements[0].Reason != model.ReasonReturned {
		t.Errorf("unexpected return movement: %+v", summary.Movements[0])
	}
	if summary.Movements[0].ExpiresAt != nil {
		t.Error("return movement should carry no expiration")
	}

	item, _ = store.GetItem(ctx, database, gloves.ID)
	if item.Quantity != 97 {
		t.Errorf("expected quantity 97 after return, got %d", item.Quantity)
	}
	outstanding, _ = engine.OutstandingForPair(ctx, subject.ID, gloves.ID)
	if outstanding != 3 {
		t.Errorf("expected 3 outstanding, got %d", outstanding)
	}
}

func TestStageWithdrawalInsufficientStock(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	engine, operator, _ := testEngine(t, database)

	seedItem(t, database, "Helmet", "", "", 3)
	subject := seedPerson(t, database, "dave", "secret123", model.LevelHolder)

	st := NewStage(KindWithdrawal, subject.ID)
	err := engine.StageWithdrawal(ctx, operator, st, "Helmet", "", 4, 30)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	var ise *InsufficientStockError
	if !errors.As(err, &ise) {
		t.Fatalf("expected *InsufficientStockError, got %T", err)
	}
	if ise.Available != 3 || ise.Requested != 4 {
		t.Errorf("unexpected error fields: %+v", ise)
	}
	if st.Len() != 0 {
		t.Error("failed staging left a line behind")
	}
}

func TestStageWithdrawalValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	engine, operator, _ := testEngine(t, database)

	seedItem(t, database, "Helmet", "", "", 10)
	subject := seedPerson(t, database, "dave", "secret123", model.LevelHolder)

	tests := []struct {
		name       string
		stage      *Stage
		nameOrCode string
		quantity   int
		validity   int
		wantErr    error
	}{
		{"no person", NewStage(KindWithdrawal, 0), "Helmet", 1, 30, ErrValidation},
		{"empty item", NewStage(KindWithdrawal, subject.ID), "", 1, 30, ErrValidation},
		{"zero quantity", NewStage(KindWithdrawal, subject.ID), "Helmet", 0, 30, ErrInvalidQuantity},
		{"negative quantity", NewStage(KindWithdrawal, subject.ID), "Helmet", -1, 30, ErrInvalidQuantity},
		{"zero validity", NewStage(KindWithdrawal, subject.ID), "Helmet", 1, 0, ErrValidation},
		{"wrong kind", NewStage(KindReturn, subject.ID), "Helmet", 1, 30, ErrValidation},
		{"unknown item", NewStage(KindWithdrawal, subject.ID), "Poncho", 1, 30, ErrItemNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := engine.StageWithdrawal(ctx, operator, tt.stage, tt.nameOrCode, "", tt.quantity, tt.validity)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestStageReturnsOverOutstanding(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	engine, operator, now := testEngine(t, database)

	gloves := seedItem(t, database, "Glove-A", "", "", 100)
	subject := seedPerson(t, database, "dave", "secret123", model.LevelHolder)
	mustApply(t, database, gloves.ID, subject.ID, -3, now)

	st := NewStage(KindReturn, subject.ID)
	err := engine.StageReturns(ctx, operator, st, []ReturnSelection{{ItemID: gloves.ID, Quantity: 5}})
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}

	var iqe *InvalidQuantityError
	if !errors.As(err, &iqe) {
		t.Fatalf("expected *InvalidQuantityError, got %T", err)
	}
	if iqe.Outstanding != 3 || iqe.Requested != 5 {
		t.Errorf("unexpected error fields: %+v", iqe)
	}
	if st.Len() != 0 {
		t.Errorf("failed staging left %d lines behind", st.Len())
	}
}

func TestStageReturnsSkipsZeroQuantities(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	engine, operator, now := testEngine(t, database)

	gloves := seedItem(t, database, "Glove-A", "", "", 100)
	boots := seedItem(t, database, "Boots", "", "", 50)
	subject := seedPerson(t, database, "dave", "secret123", model.LevelHolder)
	mustApply(t, database, gloves.ID, subject.ID, -3, now)
	mustApply(t, database, boots.ID, subject.ID, -2, now)

	st := NewStage(KindReturn, subject.ID)
	err := engine.StageReturns(ctx, operator, st, []ReturnSelection{
		{ItemID: gloves.ID, Quantity: 0},
		{ItemID: boots.ID, Quantity: 2},
	})
	if err != nil {
		t.Fatalf("StageReturns: %v", err)
	}
	lines := st.Lines()
	if len(lines) != 1 || lines[0].ItemID != boots.ID {
		t.Errorf("expected only the boots line staged, got %+v", lines)
	}
}

func TestConfirmEmptyStage(t *testing.T) {
	database := db.NewTestDB(t)
	engine, operator, _ := testEngine(t, database)
	subject := seedPerson(t, database, "dave", "secret123", model.LevelHolder)

	st := NewStage(KindWithdrawal, subject.ID)
	_, err := engine.Confirm(context.Background(), operator, st, "secret123")
	if !errors.Is(err, ErrNothingToConfirm) {
		t.Errorf("expected ErrNothingToConfirm, got %v", err)
	}
}

func TestConfirmWrongCredentialPreservesStage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	engine, operator, _ := testEngine(t, database)

	gloves := seedItem(t, database, "Glove-A", "", "", 100)
	subject := seedPerson(t, database, "dave", "secret123", model.LevelHolder)

	st := NewStage(KindWithdrawal, subject.ID)
	if err := engine.StageWithdrawal(ctx, operator, st, "Glove-A", "", 5, 30); err != nil {
		t.Fatalf("StageWithdrawal: %v", err)
	}

	_, err := engine.Confirm(ctx, operator, st, "wrong-password")
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}

	// Stage and persistent state untouched; the operator can retry.
	if st.Len() != 1 {
		t.Errorf("stage lost after failed authentication: %d lines", st.Len())
	}
	item, _ := store.GetItem(ctx, database, gloves.ID)
	if item.Quantity != 100 {
		t.Errorf("quantity changed after failed authentication: %d", item.Quantity)
	}

	// The denial itself lands in the audit log.
	entries, _ := store.ListAudit(ctx, database, operator.ID, 0)
	if len(entries) == 0 || entries[0].Action != "confirm_denied" {
		t.Errorf("expected confirm_denied audit entry, got %+v", entries)
	}

	// Retrying with the right credential succeeds.
	if _, err := engine.Confirm(ctx, operator, st, "secret123"); err != nil {
		t.Fatalf("Confirm retry: %v", err)
	}
	item, _ = store.GetItem(ctx, database, gloves.ID)
	if item.Quantity != 95 {
		t.Errorf("expected quantity 95 after retry, got %d", item.Quantity)
	}
}

func TestConfirmDeletedPerson(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	engine, operator, _ := testEngine(t, database)

	seedItem(t, database, "Glove-A", "", "", 100)
	subject := seedPerson(t, database, "dave", "secret123", model.LevelHolder)

	st := NewStage(KindWithdrawal, subject.ID)
	if err := engine.StageWithdrawal(ctx, operator, st, "Glove-A", "", 1, 30); err != nil {
		t.Fatalf("StageWithdrawal: %v", err)
	}
	if err := store.DeletePerson(ctx, database, subject.ID); err != nil {
		t.Fatalf("DeletePerson: %v", err)
	}

	_, err := engine.Confirm(ctx, operator, st, "secret123")
	if !errors.Is(err, ErrPersonNotFound) {
		t.Errorf("expected ErrPersonNotFound, got %v", err)
	}
}

func TestConfirmStopsOnConcurrentModification(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	engine, operator, _ := testEngine(t, database)

	gloves := seedItem(t, database, "Glove-A", "", "", 10)
	boots := seedItem(t, database, "Boots", "", "", 10)
	subject := seedPerson(t, database, "dave", "secret123", model.LevelHolder)

	st := NewStage(KindWithdrawal, subject.ID)
	if err := engine.StageWithdrawal(ctx, operator, st, "Glove-A", "", 5, 30); err != nil {
		t.Fatalf("StageWithdrawal gloves: %v", err)
	}
	if err := engine.StageWithdrawal(ctx, operator, st, "Boots", "", 5, 30); err != nil {
		t.Fatalf("StageWithdrawal boots: %v", err)
	}

	// Stock shifts between staging and confirmation.
	if _, err := AdjustQuantity(ctx, database, boots.ID, -8); err != nil {
		t.Fatalf("AdjustQuantity: %v", err)
	}

	summary, err := engine.Confirm(ctx, operator, st, "secret123")
	if !errors.Is(err, ErrConcurrentModification) {
		t.Fatalf("expected ErrConcurrentModification, got %v", err)
	}

	var be *BatchError
	if !errors.As(err, &be) {
		t.Fatalf("expected *BatchError, got %T", err)
	}
	if be.Line != 1 || be.Applied != 1 {
		t.Errorf("unexpected batch error: line %d, applied %d", be.Line, be.Applied)
	}
	if summary == nil || summary.Applied != 1 {
		t.Errorf("expected partial summary with 1 applied line, got %+v", summary)
	}

	// The first line stays applied; the failing line does not.
	item, _ := store.GetItem(ctx, database, gloves.ID)
	if item.Quantity != 5 {
		t.Errorf("expected gloves quantity 5, got %d", item.Quantity)
	}
	item, _ = store.GetItem(ctx, database, boots.ID)
	if item.Quantity != 2 {
		t.Errorf("expected boots quantity 2, got %d", item.Quantity)
	}
	if st.Len() != 0 {
		t.Error("stage not cleared after failed apply")
	}
}

func TestAuthorizationLevels(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	engine, operator, _ := testEngine(t, database)

	item := seedItem(t, database, "Glove-A", "", "", 10)
	subject := seedPerson(t, database, "dave", "secret123", model.LevelHolder)
	holder := Actor{ID: subject.ID, Level: subject.Level}

	st := NewStage(KindWithdrawal, subject.ID)
	if err := engine.StageWithdrawal(ctx, holder, st, "Glove-A", "", 1, 30); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("holder staging withdrawal: got %v, want ErrNotAuthorized", err)
	}

	ret := NewStage(KindReturn, subject.ID)
	if err := engine.StageReturns(ctx, holder, ret, nil); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("holder staging returns: got %v, want ErrNotAuthorized", err)
	}

	// Manual corrections need admin, operator is not enough.
	if _, err := engine.AdjustQuantity(ctx, operator, item.ID, 1); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("operator manual adjustment: got %v, want ErrNotAuthorized", err)
	}

	admin := seedPerson(t, database, "root", "admin-secret", model.LevelAdmin)
	newQty, err := engine.AdjustQuantity(ctx, Actor{ID: admin.ID, Level: admin.Level}, item.ID, 5)
	if err != nil {
		t.Fatalf("admin manual adjustment: %v", err)
	}
	if newQty != 15 {
		t.Errorf("expected 15, got %d", newQty)
	}
}

func TestConfirmRecordsAuditTrail(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	engine, operator, _ := testEngine(t, database)

	seedItem(t, database, "Glove-A", "", "", 10)
	subject := seedPerson(t, database, "dave", "secret123", model.LevelHolder)

	st := NewStage(KindWithdrawal, subject.ID)
	if err := engine.StageWithdrawal(ctx, operator, st, "Glove-A", "", 2, 30); err != nil {
		t.Fatalf("StageWithdrawal: %v", err)
	}
	if _, err := engine.Confirm(ctx, operator, st, "secret123"); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	entries, err := store.ListAudit(ctx, database, operator.ID, 0)
	if err != nil {
		t.Fatalf("ListAudit: %v", err)
	}
	actions := make(map[string]int)
	for _, e := range entries {
		actions[e.Action]++
	}
	for _, want := range []string{"stage_withdrawal", "confirm_withdrawal", "confirm_batch"} {
		if actions[want] == 0 {
			t.Errorf("missing %q audit entry; recorded: %v", want, actions)
		}
	}
}
