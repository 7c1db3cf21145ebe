package acceso

import (
	"encoding/json"
	"net/http"
	"strings"

	"cic-consultas/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router) {
	r.Get("/me/permisos", misPermisosHandler())
}

// permisosResponse describe el rol del usuario y lo que puede hacer.
type permisosResponse struct {
	UserID        string    `json:"user_id"`
	Rol           Rol       `json:"rol"`
	ProfesionalID string    `json:"profesional_id,omitempty"`
	Permisos      []Permiso `json:"permisos"`
}

// misPermisosHandler godoc
// @Summary Permisos del usuario actual
// @Description Devuelve el rol efectivo y la lista de permisos. Autenticación: `X-Debug-User-ID` + `X-Debug-Role` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags acceso
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, rol (admin, operador, profesional, lectura)"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {object} permisosResponse
// @Failure 401 {string} string "unauthorized"
// @Router /me/permisos [get]
func misPermisosHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		a := DesdeClaims(claims)
		writeJSON(w, http.StatusOK, permisosResponse{
			UserID:        a.UserID,
			Rol:           a.Rol,
			ProfesionalID: a.ProfesionalID,
			Permisos:      PermisosDe(a.Rol),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
