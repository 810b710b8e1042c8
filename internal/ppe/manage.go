package ppe

import (
	"context"
	"fmt"

	"github.com/DaniloHMoura/EPIApp/internal/model"
	"github.com/DaniloHMoura/EPIApp/internal/store"
)

// Deletions go through the engine rather than the store directly so that
// every removal lands in the audit log with the actor who ordered it.
// All of them require admin level.

// DeletePerson soft-deletes a person. Fails while the person still holds
// outstanding equipment.
func (e *Engine) DeletePerson(ctx context.Context, actor Actor, personID int64) error {
	if !model.LevelAtLeast(actor.Level, model.LevelAdmin) {
		return fmt.Errorf("%w: deleting people requires admin level", ErrNotAuthorized)
	}

	person, err := store.GetPerson(ctx, e.db, personID)
	if err != nil {
		return err
	}
	if person == nil || person.DeletedAt != nil {
		return ErrPersonNotFound
	}

	if err := store.DeletePerson(ctx, e.db, personID); err != nil {
		return err
	}
	e.record(ctx, actor.ID, "delete_person",
		fmt.Sprintf("deleted person %d (%s)", person.ID, person.FullName))
	return nil
}

// DeleteItem soft-deletes a catalog item.
func (e *Engine) DeleteItem(ctx context.Context, actor Actor, itemID int64) error {
	if !model.LevelAtLeast(actor.Level, model.LevelAdmin) {
		return fmt.Errorf("%w: deleting items requires admin level", ErrNotAuthorized)
	}

	item, err := store.GetItem(ctx, e.db, itemID)
	if err != nil {
		return err
	}
	if item == nil || item.DeletedAt != nil {
		return ErrItemNotFound
	}

	if err := store.DeleteItem(ctx, e.db, itemID); err != nil {
		return err
	}
	e.record(ctx, actor.ID, "delete_item",
		fmt.Sprintf("deleted item %d (%q)", item.ID, item.Name))
	return nil
}

// DeleteCategory deletes a category. Fails while items still reference it.
func (e *Engine) DeleteCategory(ctx context.Context, actor Actor, categoryID int64) error {
	if !model.LevelAtLeast(actor.Level, model.LevelAdmin) {
		return fmt.Errorf("%w: deleting categories requires admin level", ErrNotAuthorized)
	}

	if err := store.DeleteCategory(ctx, e.db, categoryID); err != nil {
		return err
	}
	e.record(ctx, actor.ID, "delete_category",
		fmt.Sprintf("deleted category %d", categoryID))
	return nil
}

// DeleteCompany soft-deletes a company. Fails while active people belong
// to it.
func (e *Engine) DeleteCompany(ctx context.Context, actor Actor, companyID int64) error {
	if !model.LevelAtLeast(actor.Level, model.LevelAdmin) {
		return fmt.Errorf("%w: deleting companies requires admin level", ErrNotAuthorized)
	}

	if err := store.DeleteCompany(ctx, e.db, companyID); err != nil {
		return err
	}
	e.record(ctx, actor.ID, "delete_company",
		fmt.Sprintf("deleted company %d", companyID))
	return nil
}
