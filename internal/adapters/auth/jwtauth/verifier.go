package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"cic-consultas/internal/ports/auth"
)

var (
	ErrTokenEmpty     = errors.New("token is empty")
	ErrNotConfigured  = errors.New("jwt verifier not configured")
	ErrInvalidToken   = errors.New("invalid token")
	ErrMissingSubject = errors.New("token missing subject")
)

// tokenClaims son los claims propios que emite el IAM del centro.
type tokenClaims struct {
	jwt.RegisteredClaims
	Role          string `json:"role,omitempty"`
	ProfesionalID string `json:"profesional_id,omitempty"`
	Email         string `json:"email,omitempty"`
	Nombre        string `json:"nombre,omitempty"`
}

// Verifier implementa auth.AuthVerifier con JWT HS256.
type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: strings.TrimSpace(issuer)}
}

var _ auth.AuthVerifier = (*Verifier)(nil)

func (v *Verifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	if v == nil || len(v.secret) == 0 {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	tc, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return auth.Claims{}, ErrInvalidToken
	}

	sub := strings.TrimSpace(tc.Subject)
	if sub == "" {
		return auth.Claims{}, ErrMissingSubject
	}

	return auth.Claims{
		UserID:        sub,
		Email:         strings.TrimSpace(tc.Email),
		Nombre:        strings.TrimSpace(tc.Nombre),
		Role:          strings.ToLower(strings.TrimSpace(tc.Role)),
		ProfesionalID: strings.TrimSpace(tc.ProfesionalID),
	}, nil
}
