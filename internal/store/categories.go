package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/DaniloHMoura/EPIApp/internal/model"
)

// DefaultCategories are seeded on first run.
var DefaultCategories = []string{
	"Gloves", "Goggles", "Helmets", "Boots", "Ear Protection",
	"Masks and Respirators", "Safety Harnesses",
}

// CreateCategory creates a new category.
func CreateCategory(ctx context.Context, db *sql.DB, name, description string) (*model.Category, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO categories (name, description) VALUES (?, ?)`,
		name, nullString(description),
	)
	if err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting category id: %w", err)
	}

	return GetCategory(ctx, db, id)
}

// GetCategory returns a category by ID.
func GetCategory(ctx context.Context, db *sql.DB, id int64) (*model.Category, error) {
	c := &model.Category{}
	var description sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, name, description FROM categories WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &description)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting category: %w", err)
	}
	c.Description = description.String
	return c, nil
}

// ListCategories returns all categories ordered by name.
func ListCategories(ctx context.Context, db *sql.DB) ([]model.Category, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, description FROM categories ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		var description sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &description); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		c.Description = description.String
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// UpdateCategory updates a category's name and description.
func UpdateCategory(ctx context.Context, db *sql.DB, id int64, name, description string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE categories SET name = ?, description = ? WHERE id = ?`,
		name, nullString(description), id,
	)
	if err != nil {
		return fmt.Errorf("updating category: %w", err)
	}
	return nil
}

// DeleteCategory deletes a category. Fails if any active item references it.
func DeleteCategory(ctx context.Context, db *sql.DB, id int64) error {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE category_id = ? AND deleted_at IS NULL`, id,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking category items: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("cannot delete category: %d items still reference it", count)
	}

	_, err = db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	return nil
}

// SeedCategories inserts the default categories, skipping existing ones.
func SeedCategories(ctx context.Context, db *sql.DB) error {
	for _, name := range DefaultCategories {
		_, err := db.ExecContext(ctx,
			`INSERT OR IGNORE INTO categories (name) VALUES (?)`, name,
		)
		if err != nil {
			return fmt.Errorf("seeding category %q: %w", name, err)
		}
	}
	return nil
}
