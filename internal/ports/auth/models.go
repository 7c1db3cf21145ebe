package auth

import "context"

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Email  string
	Nombre string

	// Rol: admin | operador | profesional | lectura.
	Role string

	// ProfesionalID sólo viene para rol profesional.
	ProfesionalID string
}

// AuthVerifier valida el bearer token de la request. Implementación: jwtauth.
// Sin verifier el middleware acepta los headers X-Debug-* (sólo dev).
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
