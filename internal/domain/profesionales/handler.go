package profesionales

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"cic-consultas/internal/domain/acceso"
	"cic-consultas/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/profesionales", func(pr chi.Router) {
		pr.Post("/", createProfesionalHandler(svc))
		pr.Get("/", listProfesionalesHandler(svc))
		pr.Get("/{profesionalID}", getProfesionalHandler(svc))

		// Edición de datos administrativos (admin, operador, profesional)
		pr.Patch("/{profesionalID}", updateProfesionalHandler(svc))
	})
}

type createProfesionalRequest struct {
	UserID       string `json:"user_id"`
	Nombre       string `json:"nombre"`
	Apellido     string `json:"apellido"`
	DNI          string `json:"dni"`
	Especialidad string `json:"especialidad"`
	Matricula    string `json:"matricula"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Telefono     string `json:"telefono"`
	Horarios     string `json:"horarios"`
	RolSistema   string `json:"rol_sistema" enums:"admin,operador,profesional,lectura"`
}

type updateProfesionalRequest struct {
	Especialidad *string `json:"especialidad"`
	Matricula    *string `json:"matricula"`
	Telefono     *string `json:"telefono"`
	Horarios     *string `json:"horarios"`
	Activo       *bool   `json:"activo"`
	Password     *string `json:"password"`
}

// profesionalResponse nunca incluye la credencial.
type profesionalResponse struct {
	ID             string       `json:"id"`
	UserID         string       `json:"user_id,omitempty"`
	Nombre         string       `json:"nombre"`
	Apellido       string       `json:"apellido"`
	NombreCompleto string       `json:"nombre_completo"`
	DNI            string       `json:"dni"`
	Especialidad   Especialidad `json:"especialidad"`
	Matricula      string       `json:"matricula"`
	Email          string       `json:"email"`
	Telefono       string       `json:"telefono"`
	Horarios       string       `json:"horarios"`
	RolSistema     acceso.Rol   `json:"rol_sistema"`
	Hash           string       `json:"hash"`
	Activo         bool         `json:"activo"`
	CasosActivos   int          `json:"casos_activos"`
	CasosResueltos int          `json:"casos_resueltos"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// createProfesionalHandler godoc
// @Summary Alta de profesional
// @Description Crea un profesional con credencial para firmar. El id se arma con las iniciales y el DNI. Requiere permiso `usuarios:crear` (admin).
// @Tags profesionales
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, rol"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body createProfesionalRequest true "Datos del profesional"
// @Success 201 {object} profesionalResponse
// @Failure 400 {string} string "invalid input"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 409 {string} string "profesional already exists"
// @Router /profesionales [post]
func createProfesionalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createProfesionalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Create(r.Context(), acceso.DesdeClaims(claims), CreateInput{
			UserID:       req.UserID,
			Nombre:       req.Nombre,
			Apellido:     req.Apellido,
			DNI:          req.DNI,
			Especialidad: req.Especialidad,
			Matricula:    req.Matricula,
			Email:        req.Email,
			Password:     req.Password,
			Telefono:     req.Telefono,
			Horarios:     req.Horarios,
			RolSistema:   req.RolSistema,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toProfesionalResponse(p))
	}
}

// listProfesionalesHandler godoc
// @Summary Listar profesionales
// @Description Devuelve todos los profesionales ordenados por apellido, con sus contadores de casos.
// @Tags profesionales
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {array} profesionalResponse
// @Failure 401 {string} string "unauthorized"
// @Router /profesionales [get]
func listProfesionalesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]profesionalResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toProfesionalResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getProfesionalHandler godoc
// @Summary Obtener profesional
// @Tags profesionales
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param profesionalID path string true "ID del profesional"
// @Success 200 {object} profesionalResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "profesional not found"
// @Router /profesionales/{profesionalID} [get]
func getProfesionalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "profesionalID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toProfesionalResponse(p))
	}
}

// updateProfesionalHandler godoc
// @Summary Actualizar profesional
// @Description PATCH real: los campos ausentes no se tocan. `password` reemplaza la credencial de firma.
// @Tags profesionales
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, rol"
// @Param Authorization header string false "Bearer token en producción"
// @Param profesionalID path string true "ID del profesional"
// @Param payload body updateProfesionalRequest true "Campos a modificar"
// @Success 200 {object} profesionalResponse
// @Failure 400 {string} string "invalid input"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "profesional not found"
// @Router /profesionales/{profesionalID} [patch]
func updateProfesionalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		var req updateProfesionalRequest
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Update(r.Context(), acceso.DesdeClaims(claims), chi.URLParam(r, "profesionalID"), UpdateInput{
			Especialidad: req.Especialidad,
			Matricula:    req.Matricula,
			Telefono:     req.Telefono,
			Horarios:     req.Horarios,
			Activo:       req.Activo,
			Password:     req.Password,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toProfesionalResponse(p))
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "profesional not found", http.StatusNotFound)
	case errors.Is(err, ErrAlreadyExists):
		http.Error(w, "profesional already exists", http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toProfesionalResponse(p Profesional) profesionalResponse {
	return profesionalResponse{
		ID:             p.ID,
		UserID:         p.UserID,
		Nombre:         p.Nombre,
		Apellido:       p.Apellido,
		NombreCompleto: p.NombreCompleto(),
		DNI:            p.DNI,
		Especialidad:   p.Especialidad,
		Matricula:      p.Matricula,
		Email:          p.Email,
		Telefono:       p.Telefono,
		Horarios:       p.Horarios,
		RolSistema:     p.RolSistema,
		Hash:           p.Hash,
		Activo:         p.Activo,
		CasosActivos:   p.CasosActivos,
		CasosResueltos: p.CasosResueltos,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
