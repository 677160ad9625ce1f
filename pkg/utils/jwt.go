package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TerminalClaims represents the claims in a terminal session token. Tokens are
// issued by the account collaborator; the engine only validates them and
// extracts the terminal context.
type TerminalClaims struct {
	TenantID   uuid.UUID `json:"tenant_id"`
	StoreCode  string    `json:"store_code"`
	TerminalID uuid.UUID `json:"terminal_id"`
	StaffID    string    `json:"staff_id"`
	jwt.RegisteredClaims
}

// JWTManager handles terminal token validation (and generation, for tests and
// local tooling)
type JWTManager struct {
	secretKey   []byte
	tokenExpiry time.Duration
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secret string, tokenExpiry time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:   []byte(secret),
		tokenExpiry: tokenExpiry,
	}
}

// GenerateTerminalToken generates a terminal session token
func (m *JWTManager) GenerateTerminalToken(tenantID uuid.UUID, storeCode string, terminalID uuid.UUID, staffID string) (string, error) {
	claims := &TerminalClaims{
		TenantID:   tenantID,
		StoreCode:  storeCode,
		TerminalID: terminalID,
		StaffID:    staffID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "pos-transaction-api",
			Subject:   terminalID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// ValidateTerminalToken validates a terminal token and returns the claims
func (m *JWTManager) ValidateTerminalToken(tokenString string) (*TerminalClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TerminalClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secretKey, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*TerminalClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
