package jwtauth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"cic-consultas/internal/ports/auth"
)

// Issue firma un token para c. Lo usan los tests y el comando `cic token` en dev.
func (v *Verifier) Issue(c auth.Claims, ttl time.Duration, now time.Time) (string, error) {
	if v == nil || len(v.secret) == 0 {
		return "", ErrNotConfigured
	}
	tc := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.UserID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role:          c.Role,
		ProfesionalID: c.ProfesionalID,
		Email:         c.Email,
		Nombre:        c.Nombre,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
