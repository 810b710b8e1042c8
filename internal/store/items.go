package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/DaniloHMoura/EPIApp/internal/model"
)

const itemColumns = `id, name, code, size, brand, category_id, quantity, price,
	min_stock, supplier, photo_mime, created_at, deleted_at`

// CreateItem creates a new item with its initial on-hand quantity.
func CreateItem(ctx context.Context, db *sql.DB, item *model.Item) (*model.Item, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO items (name, code, size, brand, category_id, quantity, price, min_stock, supplier)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Name, nullString(item.Code), item.Size, nullString(item.Brand),
		item.CategoryID, item.Quantity, item.Price.String(), item.MinStock,
		nullString(item.Supplier),
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// FindItem resolves an item by display name or approval code, optionally
// narrowed by size. Returns nil if no active item matches.
func FindItem(ctx context.Context, db *sql.DB, nameOrCode, size string) (*model.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items
	          WHERE (name = ? OR code = ?) AND deleted_at IS NULL`
	args := []any{nameOrCode, nameOrCode}
	if size != "" {
		query += ` AND size = ?`
		args = append(args, size)
	}

	row := db.QueryRowContext(ctx, query, args...)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding item: %w", err)
	}
	return item, nil
}

// ListItems returns all non-deleted items, optionally filtered by a
// name/code search string and a category.
func ListItems(ctx context.Context, db *sql.DB, search string, categoryID int64) ([]model.Item, error) {
	query := `SELECT i.id, i.name, i.code, i.size, i.brand, i.category_id, i.quantity,
	                 i.price, i.min_stock, i.supplier, i.photo_mime, i.created_at, i.deleted_at,
	                 COALESCE(c.name, '') AS category_name
	          FROM items i
	          LEFT JOIN categories c ON c.id = i.category_id
	          WHERE i.deleted_at IS NULL`
	var args []any

	if search != "" {
		query += ` AND (i.name LIKE ? OR i.code LIKE ?)`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}
	if categoryID > 0 {
		query += ` AND i.category_id = ?`
		args = append(args, categoryID)
	}

	query += ` ORDER BY i.name, i.size`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		var code, size, brand, supplier, photoMime, categoryName sql.NullString
		var price string
		if err := rows.Scan(&item.ID, &item.Name, &code, &size, &brand, &item.CategoryID,
			&item.Quantity, &price, &item.MinStock, &supplier, &photoMime,
			&item.CreatedAt, &item.DeletedAt, &categoryName); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		item.Code = code.String
		item.Size = size.String
		item.Brand = brand.String
		item.Supplier = supplier.String
		item.PhotoMime = photoMime.String
		item.CategoryName = categoryName.String
		if item.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parsing item price: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateItem updates an item's catalog metadata. The on-hand quantity is
// deliberately not touched here; it only changes through movements.
func UpdateItem(ctx context.Context, db *sql.DB, item *model.Item) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET name = ?, code = ?, size = ?, brand = ?, category_id = ?,
		        price = ?, min_stock = ?, supplier = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		item.Name, nullString(item.Code), item.Size, nullString(item.Brand),
		item.CategoryID, item.Price.String(), item.MinStock, nullString(item.Supplier),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

// DeleteItem soft-deletes an item.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// SetItemPhoto sets an item's photo data.
func SetItemPhoto(ctx context.Context, db *sql.DB, id int64, photo []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET photo = ?, photo_mime = ? WHERE id = ? AND deleted_at IS NULL`,
		photo, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting item photo: %w", err)
	}
	return nil
}

// GetItemPhoto returns an item's photo data and MIME type.
func GetItemPhoto(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var photo []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT photo, photo_mime FROM items WHERE id = ?`, id,
	).Scan(&photo, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item photo: %w", err)
	}
	return photo, mime.String, nil
}

// scanItem scans an item row selected with itemColumns.
func scanItem(row *sql.Row) (*model.Item, error) {
	item := &model.Item{}
	var code, size, brand, supplier, photoMime sql.NullString
	var price string
	err := row.Scan(&item.ID, &item.Name, &code, &size, &brand, &item.CategoryID,
		&item.Quantity, &price, &item.MinStock, &supplier, &photoMime,
		&item.CreatedAt, &item.DeletedAt)
	if err != nil {
		return nil, err
	}
	item.Code = code.String
	item.Size = size.String
	item.Brand = brand.String
	item.Supplier = supplier.String
	item.PhotoMime = photoMime.String
	if item.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parsing item price: %w", err)
	}
	return item, nil
}

// nullString maps empty strings to NULL so that partial unique indexes
// and omitempty behave.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
