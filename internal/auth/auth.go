package auth

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/DaniloHMoura/EPIApp/internal/model"
	"github.com/DaniloHMoura/EPIApp/internal/store"
)

// HashPassword hashes a credential for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// VerifyCredential checks a person's credential by id. Returns false for
// unknown or soft-deleted people; the mismatch itself is not an error.
func VerifyCredential(ctx context.Context, db *sql.DB, personID int64, secret string) (bool, error) {
	person, err := store.GetPerson(ctx, db, personID)
	if err != nil {
		return false, err
	}
	if person == nil || person.DeletedAt != nil {
		return false, nil
	}
	return bcrypt.CompareHashAndPassword([]byte(person.PasswordHash), []byte(secret)) == nil, nil
}

// Login verifies a username/password pair and issues a session token.
// Returns nil without a token if the credentials don't match.
func Login(ctx context.Context, db *sql.DB, signingSecret, username, password string) (*model.Person, string, error) {
	person, err := store.GetPersonByUsername(ctx, db, username)
	if err != nil {
		return nil, "", err
	}
	if person == nil || person.DeletedAt != nil {
		return nil, "", nil
	}
	if bcrypt.CompareHashAndPassword([]byte(person.PasswordHash), []byte(password)) != nil {
		return nil, "", nil
	}

	token, err := GenerateToken(signingSecret, person.ID, person.FullName, person.Level)
	if err != nil {
		return nil, "", err
	}
	return person, token, nil
}

// Logout revokes a session token by its JTI. Invalid tokens are ignored;
// there is nothing to revoke.
func Logout(ctx context.Context, db *sql.DB, signingSecret, token string) error {
	claims, err := ValidateToken(signingSecret, token)
	if err != nil {
		return nil
	}
	return store.RevokeToken(ctx, db, claims.ID, claims.ExpiresAt.Time)
}

// ValidateSession validates a session token's signature and expiry and
// checks the revocation list.
func ValidateSession(ctx context.Context, db *sql.DB, signingSecret, token string) (*Claims, error) {
	claims, err := ValidateToken(signingSecret, token)
	if err != nil {
		return nil, err
	}

	revoked, err := store.IsTokenRevoked(ctx, db, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("token has been revoked")
	}

	return claims, nil
}
