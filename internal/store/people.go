package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/DaniloHMoura/EPIApp/internal/model"
)

// CreatePerson creates a new person.
func CreatePerson(ctx context.Context, db *sql.DB, p *model.Person) (*model.Person, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO people (username, password_hash, level, full_name, badge, national_id, company_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Username, p.PasswordHash, p.Level, p.FullName, p.Badge,
		nullString(p.NationalID), p.CompanyID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating person: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting person id: %w", err)
	}

	return GetPerson(ctx, db, id)
}

// GetPerson returns a person by ID.
func GetPerson(ctx context.Context, db *sql.DB, id int64) (*model.Person, error) {
	p := &model.Person{}
	var nationalID sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, level, full_name, badge, national_id,
		        company_id, created_at, deleted_at
		 FROM people WHERE id = ?`, id,
	).Scan(&p.ID, &p.Username, &p.PasswordHash, &p.Level, &p.FullName, &p.Badge,
		&nationalID, &p.CompanyID, &p.CreatedAt, &p.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting person: %w", err)
	}
	p.NationalID = nationalID.String
	return p, nil
}

// GetPersonByUsername returns a person by username (including soft-deleted
// for auth checks).
func GetPersonByUsername(ctx context.Context, db *sql.DB, username string) (*model.Person, error) {
	p := &model.Person{}
	var nationalID sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, level, full_name, badge, national_id,
		        company_id, created_at, deleted_at
		 FROM people WHERE username = ?`, username,
	).Scan(&p.ID, &p.Username, &p.PasswordHash, &p.Level, &p.FullName, &p.Badge,
		&nationalID, &p.CompanyID, &p.CreatedAt, &p.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting person by username: %w", err)
	}
	p.NationalID = nationalID.String
	return p, nil
}

// ListPeople returns all non-deleted people, optionally filtered by level.
func ListPeople(ctx context.Context, db *sql.DB, level int) ([]model.Person, error) {
	query := `SELECT p.id, p.username, p.password_hash, p.level, p.full_name, p.badge,
	                 p.national_id, p.company_id, p.created_at, p.deleted_at,
	                 COALESCE(c.name, '') AS company_name
	          FROM people p
	          LEFT JOIN companies c ON c.id = p.company_id
	          WHERE p.deleted_at IS NULL`
	var args []any

	if level > 0 {
		query += ` AND p.level = ?`
		args = append(args, level)
	}

	query += ` ORDER BY p.full_name`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing people: %w", err)
	}
	defer rows.Close()

	var people []model.Person
	for rows.Next() {
		var p model.Person
		var nationalID sql.NullString
		if err := rows.Scan(&p.ID, &p.Username, &p.PasswordHash, &p.Level, &p.FullName,
			&p.Badge, &nationalID, &p.CompanyID, &p.CreatedAt, &p.DeletedAt,
			&p.CompanyName); err != nil {
			return nil, fmt.Errorf("scanning person: %w", err)
		}
		p.NationalID = nationalID.String
		people = append(people, p)
	}
	return people, rows.Err()
}

// UpdatePersonLevel updates a person's level.
func UpdatePersonLevel(ctx context.Context, db *sql.DB, id int64, level int) error {
	_, err := db.ExecContext(ctx,
		`UPDATE people SET level = ? WHERE id = ? AND deleted_at IS NULL`,
		level, id,
	)
	if err != nil {
		return fmt.Errorf("updating person level: %w", err)
	}
	return nil
}

// UpdatePersonPassword updates a person's credential hash.
func UpdatePersonPassword(ctx context.Context, db *sql.DB, id int64, passwordHash string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE people SET password_hash = ? WHERE id = ? AND deleted_at IS NULL`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating person password: %w", err)
	}
	return nil
}

// DeletePerson soft-deletes a person. Fails if the person still holds
// outstanding equipment, so issued gear cannot silently disappear with
// its holder.
func DeletePerson(ctx context.Context, db *sql.DB, id int64) error {
	var outstanding int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM (
		     SELECT item_id FROM movements WHERE person_id = ?
		     GROUP BY item_id HAVING SUM(delta) < 0
		 )`, id,
	).Scan(&outstanding)
	if err != nil {
		return fmt.Errorf("checking outstanding equipment: %w", err)
	}
	if outstanding > 0 {
		return fmt.Errorf("cannot delete person: still holds %d outstanding items", outstanding)
	}

	_, err = db.ExecContext(ctx,
		`UPDATE people SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting person: %w", err)
	}
	return nil
}
