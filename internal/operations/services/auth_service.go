package services

import (
	"context"
	"database/sql"

	"golang.org/x/crypto/bcrypt"

	"github.com/carebridge/hms-backend/internal/common/apperr"
	"github.com/carebridge/hms-backend/internal/operations/models"
)

// AuthService authenticates staff members. It is the identity boundary: the
// core operations trust the organization and role carried by the token this
// service's callers issue.
type AuthService struct {
	DB *sql.DB
}

func NewAuthService(db *sql.DB) *AuthService {
	return &AuthService{DB: db}
}

// Authenticate verifies the username/password pair and returns the staff
// record. The error is deliberately uniform so callers cannot distinguish an
// unknown user from a wrong password.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.Staff, error) {
	var staff models.Staff
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, organization_id, username, password_hash, full_name, role
		FROM staff WHERE username = ?`,
		username,
	).Scan(&staff.ID, &staff.OrganizationID, &staff.Username,
		&staff.PasswordHash, &staff.FullName, &staff.Role)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrUnauthenticated
	} else if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.ErrUnauthenticated
	}
	return &staff, nil
}
