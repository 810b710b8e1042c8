package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/DaniloHMoura/EPIApp/internal/model"
)

// CreateCompany creates a new company.
func CreateCompany(ctx context.Context, db *sql.DB, name, taxID, address string) (*model.Company, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO companies (name, tax_id, address) VALUES (?, ?, ?)`,
		name, nullString(taxID), nullString(address),
	)
	if err != nil {
		return nil, fmt.Errorf("creating company: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting company id: %w", err)
	}

	return GetCompany(ctx, db, id)
}

// GetCompany returns a company by ID.
func GetCompany(ctx context.Context, db *sql.DB, id int64) (*model.Company, error) {
	c := &model.Company{}
	var taxID, address sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, name, tax_id, address, created_at, deleted_at
		 FROM companies WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &taxID, &address, &c.CreatedAt, &c.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting company: %w", err)
	}
	c.TaxID = taxID.String
	c.Address = address.String
	return c, nil
}

// ListCompanies returns all non-deleted companies.
func ListCompanies(ctx context.Context, db *sql.DB) ([]model.Company, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, tax_id, address, created_at, deleted_at
		 FROM companies WHERE deleted_at IS NULL ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing companies: %w", err)
	}
	defer rows.Close()

	var companies []model.Company
	for rows.Next() {
		var c model.Company
		var taxID, address sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &taxID, &address, &c.CreatedAt, &c.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning company: %w", err)
		}
		c.TaxID = taxID.String
		c.Address = address.String
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// UpdateCompany updates a company's details.
func UpdateCompany(ctx context.Context, db *sql.DB, id int64, name, taxID, address string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE companies SET name = ?, tax_id = ?, address = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		name, nullString(taxID), nullString(address), id,
	)
	if err != nil {
		return fmt.Errorf("updating company: %w", err)
	}
	return nil
}

// DeleteCompany soft-deletes a company. Fails if active people still
// belong to it.
func DeleteCompany(ctx context.Context, db *sql.DB, id int64) error {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM people WHERE company_id = ? AND deleted_at IS NULL`, id,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking company people: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("cannot delete company: %d people still belong to it", count)
	}

	_, err = db.ExecContext(ctx,
		`UPDATE companies SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting company: %w", err)
	}
	return nil
}
