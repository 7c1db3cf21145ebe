package middleware

import (
	"context"
	"net/http"
	"strings"

	"cic-consultas/internal/ports/auth"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// Headers del modo dev (sin verifier).
const (
	hdrDebugUser        = "X-Debug-User-ID"
	hdrDebugRole        = "X-Debug-Role"
	hdrDebugEmail       = "X-Debug-Email"
	hdrDebugName        = "X-Debug-Name"
	hdrDebugProfesional = "X-Debug-Profesional-ID"
)

// AuthContext deja en el contexto los claims del llamante, si los hay.
// Con verifier se lee el Bearer token; sin verifier se aceptan los headers X-Debug-*.
// Nunca corta el request: cada handler decide si responde 401/403.
func AuthContext(verifier auth.AuthVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, ok := resolveClaims(r, verifier); ok {
				r = r.WithContext(WithClaims(r.Context(), claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithClaims adjunta claims al contexto (tests y jobs internos).
func WithClaims(ctx context.Context, c auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(auth.Claims)
	return c, ok
}

func resolveClaims(r *http.Request, verifier auth.AuthVerifier) (auth.Claims, bool) {
	if verifier == nil {
		return debugClaims(r)
	}

	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return auth.Claims{}, false
	}
	claims, err := verifier.Verify(r.Context(), token)
	if err != nil {
		return auth.Claims{}, false
	}
	return claims, true
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func debugClaims(r *http.Request) (auth.Claims, bool) {
	h := func(k string) string { return strings.TrimSpace(r.Header.Get(k)) }

	uid := h(hdrDebugUser)
	if uid == "" {
		return auth.Claims{}, false
	}
	c := auth.Claims{
		UserID:        uid,
		Role:          strings.ToLower(h(hdrDebugRole)),
		Email:         strings.ToLower(h(hdrDebugEmail)),
		Nombre:        h(hdrDebugName),
		ProfesionalID: h(hdrDebugProfesional),
	}
	// En dev el id de profesional por defecto es el propio user id.
	if c.Role == "profesional" && c.ProfesionalID == "" {
		c.ProfesionalID = uid
	}
	return c, true
}
