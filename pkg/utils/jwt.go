package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/carebridge/hms-backend/config"
)

// Claims carries the authenticated principal: who they are, which organization
// they act for, and their role. Core services receive the organization id as an
// explicit parameter; they never read it from ambient state.
type Claims struct {
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
	Role           string `json:"role"`
	Username       string `json:"username"`
	jwt.RegisteredClaims
}

// OrgID parses the organization id claim.
func (c *Claims) OrgID() (uuid.UUID, error) {
	return uuid.Parse(c.OrganizationID)
}

// PrincipalID parses the user id claim.
func (c *Claims) PrincipalID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// GenerateJWTToken signs an HS256 token for the given staff member.
func GenerateJWTToken(userID, organizationID uuid.UUID, role, username string, exp time.Time) (string, error) {
	secret := config.LoadConfig().JWTSecret
	if secret == "" {
		return "", fmt.Errorf("JWT secret key is missing")
	}

	claims := Claims{
		UserID:         userID.String(),
		OrganizationID: organizationID.String(),
		Role:           role,
		Username:       username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateJWTToken parses and validates a token string.
func ValidateJWTToken(tokenString string) (*Claims, error) {
	secret := config.LoadConfig().JWTSecret
	if secret == "" {
		return nil, fmt.Errorf("JWT secret key is missing")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
