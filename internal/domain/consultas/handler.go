package consultas

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cic-consultas/internal/domain/acceso"
	"cic-consultas/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/consultas", func(cr chi.Router) {
		cr.Get("/", listConsultasHandler(svc))
		cr.Post("/", createConsultaHandler(svc))
		cr.Get("/{consultaID}", getConsultaHandler(svc))

		cr.Post("/{consultaID}/estado", transitionHandler(svc))
		cr.Post("/{consultaID}/firma", signHandler(svc))
	})
}

// createConsultaRequest es el cuerpo para registrar una consulta nueva.
type createConsultaRequest struct {
	PersonaNombre       string    `json:"persona_nombre"`
	PersonaDni          string    `json:"persona_dni"`
	PersonaTelefono     string    `json:"persona_telefono"`
	PersonaEdad         string    `json:"persona_edad"`
	PersonaID           string    `json:"persona_id"`
	HogarID             string    `json:"hogar_id"`
	Motivo              string    `json:"motivo"`
	Descripcion         string    `json:"descripcion"`
	Tipo                Tipo      `json:"tipo" enums:"espontanea,derivacion"`
	Prioridad           Prioridad `json:"prioridad" enums:"baja,media,alta,urgente"`
	ProfesionalAsignado string    `json:"profesional_asignado"`
	ProfesionalNombre   string    `json:"profesional_nombre"`
	ProfesionalEmail    string    `json:"profesional_email"`
}

// transitionRequest pide un cambio de estado.
type transitionRequest struct {
	Estado Estado `json:"estado" enums:"pendiente,en_proceso,notificado,resuelto,cerrado,archivado"`
	Nota   string `json:"nota"`
	// ConfirmarAnulacion habilita sacar de resuelto un caso firmado (anula la firma).
	ConfirmarAnulacion bool `json:"confirmar_anulacion"`
}

// signRequest trae la contraseña del profesional.
type signRequest struct {
	Password string `json:"password"`
}

type historialResponse struct {
	Estado        Estado    `json:"estado"`
	Fecha         time.Time `json:"fecha"`
	Usuario       string    `json:"usuario"`
	ProfesionalID string    `json:"profesional_id,omitempty"`
	Nota          string    `json:"nota,omitempty"`
}

type observacionResponse struct {
	Fecha         time.Time `json:"fecha"`
	Usuario       string    `json:"usuario"`
	Nota          string    `json:"nota"`
	ProfesionalID string    `json:"profesional_id,omitempty"`
}

type firmaResponse struct {
	Profesional      string    `json:"profesional"`
	ProfesionalID    string    `json:"profesional_id"`
	ProfesionalEmail string    `json:"profesional_email"`
	Timestamp        time.Time `json:"timestamp"`
	Hash             string    `json:"hash"`
	IPAddress        string    `json:"ip_address"`
	UserAgent        string    `json:"user_agent"`
	Verificado       bool      `json:"verificado"`
}

// consultaResponse representa una consulta normalizada devuelta por la API.
type consultaResponse struct {
	ID                  string                `json:"id"`
	NumeroConsulta      *int64                `json:"numero_consulta"`
	PersonaNombre       string                `json:"persona_nombre"`
	PersonaDni          string                `json:"persona_dni"`
	PersonaTelefono     string                `json:"persona_telefono"`
	PersonaEdad         string                `json:"persona_edad"`
	Motivo              string                `json:"motivo"`
	Descripcion         string                `json:"descripcion"`
	Tipo                Tipo                  `json:"tipo"`
	TipoLabel           string                `json:"tipo_label"`
	Prioridad           Prioridad             `json:"prioridad"`
	PrioridadLabel      string                `json:"prioridad_label"`
	Estado              Estado                `json:"estado"`
	EstadoLabel         string                `json:"estado_label"`
	ProfesionalAsignado string                `json:"profesional_asignado"`
	ProfesionalNombre   string                `json:"profesional_nombre"`
	ProfesionalEmail    string                `json:"profesional_email"`
	HistoricoEstados    []historialResponse   `json:"historico_estados"`
	Observaciones       []observacionResponse `json:"observaciones"`
	FirmaDigital        *firmaResponse        `json:"firma_digital"`
	PuedeFirmar         bool                  `json:"puede_firmar"`
	FechaLabel          string                `json:"fecha_label"`
	CreatedAt           *time.Time            `json:"created_at"`
	CreatedAtLabel      string                `json:"created_at_label"`
	UpdatedAt           *time.Time            `json:"updated_at"`
	UpdatedAtLabel      string                `json:"updated_at_label"`
}

// paginaResponse es una página filtrada de consultas.
type paginaResponse struct {
	// Pagina es 0 cuando se navegó por cursor (número desconocido).
	Pagina        int                 `json:"pagina"`
	Orden         Orden               `json:"orden"`
	Items         []consultaResponse  `json:"items"`
	Siguiente     string              `json:"siguiente,omitempty"`
	Resumen       Resumen             `json:"resumen"`
	Profesionales []OpcionProfesional `json:"profesionales"`
}

// errorResponse es el cuerpo de error de las operaciones de consultas.
type errorResponse struct {
	Error   string `json:"error"`
	Mensaje string `json:"mensaje"`
}

// listConsultasHandler godoc
// @Summary Listar consultas (paginado)
// @Description Devuelve una página de consultas ordenada por numeroConsulta desc (o createdAt desc si el store no lo soporta), filtrada en memoria. Navegación hacia adelante con `cursor`; para volver atrás se pide `pagina=N` y el servidor rehace la cadena desde la primera página. Un profesional sólo ve sus casos asignados.
// @Tags consultas
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, rol (admin, operador, profesional, lectura)"
// @Param Authorization header string false "Bearer token en producción"
// @Param cursor query string false "Cursor opaco devuelto en `siguiente`"
// @Param pagina query int false "Número de página a reconstruir (1..N)"
// @Param q query string false "Búsqueda libre (nombre, DNI, motivo, profesional)"
// @Param dni query string false "Filtro exacto por DNI (además precarga la búsqueda)"
// @Param estado query string false "Estado"
// @Param tipo query string false "Tipo (espontanea, derivacion)"
// @Param prioridad query string false "Prioridad"
// @Param profesional query string false "ID o nombre del profesional asignado"
// @Param archivados query bool false "Incluir archivadas"
// @Success 200 {object} paginaResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 503 {object} errorResponse
// @Router /consultas [get]
func listConsultasHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		q := r.URL.Query()
		var (
			p   Pagina
			err error
		)
		switch {
		case strings.TrimSpace(q.Get("pagina")) != "":
			n, convErr := strconv.Atoi(q.Get("pagina"))
			if convErr != nil || n < 1 {
				writeError(w, ErrInvalidInput)
				return
			}
			p, _, err = svc.FetchPageN(r.Context(), n)
		default:
			cur, decErr := DecodeCursor(q.Get("cursor"))
			if decErr != nil {
				writeError(w, decErr)
				return
			}
			p, err = svc.FetchPage(r.Context(), cur)
			if cur == nil {
				p.Numero = 1
			}
		}
		if err != nil {
			writeError(w, err)
			return
		}

		crit := Criterios{
			Texto:             q.Get("q"),
			Estado:            Estado(strings.TrimSpace(q.Get("estado"))),
			Tipo:              Tipo(strings.TrimSpace(q.Get("tipo"))),
			Prioridad:         Prioridad(strings.TrimSpace(q.Get("prioridad"))),
			Profesional:       q.Get("profesional"),
			MostrarArchivados: q.Get("archivados") == "true" || q.Get("archivados") == "1",
		}.ConIdentidad(q.Get("dni"))

		items := Aplicar(p.Items, crit, actor)

		out := paginaResponse{
			Pagina:        p.Numero,
			Orden:         p.Orden,
			Items:         make([]consultaResponse, 0, len(items)),
			Siguiente:     EncodeCursor(p.Siguiente),
			Resumen:       Resumir(items),
			Profesionales: OpcionesProfesional(items),
		}
		for _, c := range items {
			out.Items = append(out.Items, toConsultaResponse(c, actor))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getConsultaHandler godoc
// @Summary Obtener consulta
// @Description Devuelve una consulta normalizada. Un profesional sólo puede ver las asignadas a él.
// @Tags consultas
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param consultaID path string true "ID de la consulta"
// @Success 200 {object} consultaResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {object} errorResponse
// @Router /consultas/{consultaID} [get]
func getConsultaHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		c, err := svc.GetByID(r.Context(), chi.URLParam(r, "consultaID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if !EnAlcance(c, actor) {
			writeError(w, ErrNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toConsultaResponse(c, actor))
	}
}

// createConsultaHandler godoc
// @Summary Registrar consulta
// @Description Registra una consulta en estado pendiente. Requiere permiso `consultas:crear` (admin, operador, profesional).
// @Tags consultas
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, rol"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body createConsultaRequest true "Datos de la consulta"
// @Success 201 {object} consultaResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {object} errorResponse
// @Router /consultas [post]
func createConsultaHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createConsultaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, err := svc.Registrar(r.Context(), actor, NuevaConsulta{
			PersonaNombre:       req.PersonaNombre,
			PersonaDni:          req.PersonaDni,
			PersonaTelefono:     req.PersonaTelefono,
			PersonaEdad:         req.PersonaEdad,
			PersonaID:           req.PersonaID,
			HogarID:             req.HogarID,
			Motivo:              req.Motivo,
			Descripcion:         req.Descripcion,
			Tipo:                req.Tipo,
			Prioridad:           req.Prioridad,
			ProfesionalAsignado: req.ProfesionalAsignado,
			ProfesionalNombre:   req.ProfesionalNombre,
			ProfesionalEmail:    req.ProfesionalEmail,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toConsultaResponse(c, actor))
	}
}

// transitionHandler godoc
// @Summary Cambiar estado de una consulta
// @Description Aplica una transición de estado. Un caso firmado y resuelto no puede salir de resuelto salvo con `confirmar_anulacion=true`, que anula la firma y lo deja registrado. Sólo el profesional asignado puede pasar un caso a resuelto.
// @Tags consultas
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, rol"
// @Param Authorization header string false "Bearer token en producción"
// @Param consultaID path string true "ID de la consulta"
// @Param payload body transitionRequest true "Estado destino y nota opcional"
// @Success 200 {object} consultaResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {object} errorResponse "no_autorizado / no_propietario"
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse "firma_inmutable / transicion_invalida / operacion_en_curso / conflicto"
// @Failure 503 {object} errorResponse
// @Router /consultas/{consultaID}/estado [post]
func transitionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req transitionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, err := svc.Transition(r.Context(), chi.URLParam(r, "consultaID"), req.Estado, actor, req.Nota, TransitionOptions{
			ConfirmarAnulacion: req.ConfirmarAnulacion,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toConsultaResponse(c, actor))
	}
}

// signHandler godoc
// @Summary Firmar digitalmente una consulta
// @Description Firma una consulta resuelta y sin firma. Sólo el profesional asignado, previa verificación de su contraseña. El user agent se toma del header `User-Agent`.
// @Tags consultas
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, rol"
// @Param X-Debug-Email header string false "Solo en modo dev, email del profesional"
// @Param Authorization header string false "Bearer token en producción"
// @Param consultaID path string true "ID de la consulta"
// @Param payload body signRequest true "Contraseña del profesional"
// @Success 200 {object} consultaResponse
// @Failure 401 {object} errorResponse "credencial_invalida"
// @Failure 403 {object} errorResponse "no_autorizado"
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse "no_resuelta / ya_firmada / operacion_en_curso"
// @Failure 503 {object} errorResponse
// @Router /consultas/{consultaID}/firma [post]
func signHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req signRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, err := svc.Sign(r.Context(), chi.URLParam(r, "consultaID"), actor, Credencial{
			Password:  req.Password,
			UserAgent: r.UserAgent(),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toConsultaResponse(c, actor))
	}
}

func actorFrom(r *http.Request) (acceso.Actor, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		return acceso.Actor{}, false
	}
	return acceso.DesdeClaims(claims), true
}

// StatusDe mapea un error de dominio a su status HTTP.
func StatusDe(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrBadCredential):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSignedImmutable),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrNotResolved),
		errors.Is(err, ErrAlreadySigned),
		errors.Is(err, ErrBusy),
		errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := StatusDe(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		// no exponemos detalles de infraestructura
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: Codigo(err), Mensaje: msg})
}

func toConsultaResponse(c Consulta, actor acceso.Actor) consultaResponse {
	out := consultaResponse{
		ID:                  c.ID,
		NumeroConsulta:      c.NumeroConsulta,
		PersonaNombre:       c.PersonaNombre,
		PersonaDni:          c.PersonaDni,
		PersonaTelefono:     c.PersonaTelefono,
		PersonaEdad:         c.PersonaEdad,
		Motivo:              c.Motivo,
		Descripcion:         c.Descripcion,
		Tipo:                c.Tipo,
		TipoLabel:           c.TipoLabel,
		Prioridad:           c.Prioridad,
		PrioridadLabel:      c.PrioridadLabel,
		Estado:              c.Estado,
		EstadoLabel:         c.EstadoLabel,
		ProfesionalAsignado: c.ProfesionalAsignado,
		ProfesionalNombre:   c.ProfesionalNombre,
		ProfesionalEmail:    c.ProfesionalEmail,
		HistoricoEstados:    make([]historialResponse, 0, len(c.HistoricoEstados)),
		Observaciones:       make([]observacionResponse, 0, len(c.Observaciones)),
		PuedeFirmar:         PuedeFirmar(c, actor),
		FechaLabel:          c.FechaLabel,
		CreatedAt:           c.CreatedAt,
		CreatedAtLabel:      c.CreatedAtLabel,
		UpdatedAt:           c.UpdatedAt,
		UpdatedAtLabel:      c.UpdatedAtLabel,
	}
	for _, h := range c.HistoricoEstados {
		out.HistoricoEstados = append(out.HistoricoEstados, historialResponse(h))
	}
	for _, o := range c.Observaciones {
		out.Observaciones = append(out.Observaciones, observacionResponse(o))
	}
	if f := c.FirmaDigital; f != nil {
		fr := firmaResponse(*f)
		out.FirmaDigital = &fr
	}
	return out
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
