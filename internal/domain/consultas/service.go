package consultas

import (
	"context"
	"errors"
	"strings"
	"time"

	"cic-consultas/internal/domain/acceso"
	"cic-consultas/internal/platform/lock"
	"cic-consultas/internal/platform/logger"
	"cic-consultas/internal/platform/metrics"
	"cic-consultas/internal/ports/iplookup"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const DefaultPageSize = 25

type Service struct {
	repo   Repository
	dir    Directorio
	guard  lock.Guard
	ip     iplookup.Resolver
	pub    Publicador
	log    logger.Logger
	met    *metrics.Metrics
	tracer trace.Tracer

	pageSize int
	sync     *Sincronizador

	now   func() time.Time
	nonce func() string
}

type Option func(*Service)

func WithGuard(g lock.Guard) Option { return func(s *Service) { s.guard = g } }
func WithIPResolver(r iplookup.Resolver) Option { return func(s *Service) { s.ip = r } }
func WithPublicador(p Publicador) Option { return func(s *Service) { s.pub = p } }
func WithLogger(l logger.Logger) Option { return func(s *Service) { s.log = l } }
func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.met = m } }
func WithPageSize(n int) Option { return func(s *Service) { s.pageSize = n } }

func NewService(repo Repository, dir Directorio, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		dir:      dir,
		guard:    lock.NewMemory(),
		log:      logger.Nop(),
		tracer:   otel.Tracer("cic-consultas/consultas"),
		pageSize: DefaultPageSize,
		now:      time.Now,
		nonce:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pageSize <= 0 {
		s.pageSize = DefaultPageSize
	}
	s.sync = NewSincronizador(dir, s.log, s.met)
	return s
}

func (s *Service) PageSize() int { return s.pageSize }

func (s *Service) GetByID(ctx context.Context, id string) (Consulta, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Consulta{}, ErrInvalidInput
	}
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Consulta{}, storeErr("get consulta", err)
	}
	return Normalizar(doc), nil
}

// NuevaConsulta son los datos mínimos de ingreso de una consulta.
type NuevaConsulta struct {
	PersonaNombre   string
	PersonaDni      string
	PersonaTelefono string
	PersonaEdad     string
	PersonaID       string
	HogarID         string

	Motivo      string
	Descripcion string
	Tipo        Tipo
	Prioridad   Prioridad

	ProfesionalAsignado string
	ProfesionalNombre   string
	ProfesionalEmail    string
}

// Registrar crea una consulta pendiente. El store asigna numeroConsulta.
func (s *Service) Registrar(ctx context.Context, actor acceso.Actor, in NuevaConsulta) (Consulta, error) {
	if !actor.Puede(acceso.PermisoCrearConsultas) {
		return Consulta{}, &Rechazo{Causa: ErrUnauthorized, ActorID: actor.UserID}
	}

	in.PersonaNombre = strings.TrimSpace(in.PersonaNombre)
	in.PersonaDni = strings.TrimSpace(in.PersonaDni)
	in.Motivo = strings.TrimSpace(in.Motivo)
	if (in.PersonaNombre == "" && in.PersonaDni == "") || in.Motivo == "" {
		return Consulta{}, ErrInvalidInput
	}
	if in.Tipo == "" {
		in.Tipo = TipoEspontanea
	}
	if in.Tipo != TipoEspontanea && in.Tipo != TipoDerivacion {
		return Consulta{}, ErrInvalidInput
	}
	if in.Prioridad == "" {
		in.Prioridad = PrioridadMedia
	}
	if _, ok := etiquetasPrioridad[in.Prioridad]; !ok {
		return Consulta{}, ErrInvalidInput
	}

	ahora := s.now()
	datos := map[string]any{
		"personaNombre":       in.PersonaNombre,
		"personaDni":          in.PersonaDni,
		"personaTelefono":     strings.TrimSpace(in.PersonaTelefono),
		"personaEdad":         strings.TrimSpace(in.PersonaEdad),
		"personDocId":         strings.TrimSpace(in.PersonaID),
		"householdId":         strings.TrimSpace(in.HogarID),
		"motivo":              in.Motivo,
		"descripcion":         strings.TrimSpace(in.Descripcion),
		"tipo":                string(in.Tipo),
		"prioridad":           string(in.Prioridad),
		"profesionalAsignado": strings.TrimSpace(in.ProfesionalAsignado),
		"profesionalNombre":   strings.TrimSpace(in.ProfesionalNombre),
		"profesionalEmail":    strings.ToLower(strings.TrimSpace(in.ProfesionalEmail)),
		CampoEstado:           string(EstadoPendiente),
		CampoHistoricoEstados: []any{HistorialADatos(EntradaHistorial{
			Estado:        EstadoPendiente,
			Fecha:         ahora,
			Usuario:       actor.NombreVisible(),
			ProfesionalID: actor.ProfesionalID,
		})},
		CampoObservaciones: []any{},
		CampoFirmaDigital:  nil,
	}

	created, err := s.repo.Create(ctx, Documento{ID: uuid.NewString(), Datos: datos})
	if err != nil {
		return Consulta{}, storeErr("create consulta", err)
	}
	c := Normalizar(created)

	if c.Asignada() {
		s.sync.OnAsignacion(ctx, s.sync.ProfesionalDe(ctx, c))
	}
	s.publicar(ctx, Evento{
		Tipo:          EventoRegistrada,
		ConsultaID:    c.ID,
		Estado:        c.Estado,
		ActorID:       actor.UserID,
		ProfesionalID: c.ProfesionalAsignado,
		Fecha:         ahora,
	})
	return c, nil
}

// tomar adquiere el guard de la consulta. Si está tomado devuelve ErrBusy.
func (s *Service) tomar(ctx context.Context, id, actorID string) (func(), error) {
	rel, err := s.guard.TryAcquire(ctx, id)
	if errors.Is(err, lock.ErrHeld) {
		s.met.IncGuardOcupado()
		return nil, &Rechazo{Causa: ErrBusy, ConsultaID: id, ActorID: actorID}
	}
	if err != nil {
		return nil, storeErr("lock consulta", err)
	}
	return func() {
		if err := rel(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn("no se pudo liberar el guard", map[string]any{"consulta_id": id, "error": err})
		}
	}, nil
}

func (s *Service) publicar(ctx context.Context, e Evento) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publicar(ctx, e); err != nil {
		s.log.Warn("no se pudo publicar evento", map[string]any{
			"tipo":        e.Tipo,
			"consulta_id": e.ConsultaID,
			"error":       err,
		})
	}
}

// registrarResultado cuenta rechazos por código.
func (s *Service) registrarResultado(op string, start time.Time, err error) {
	s.met.ObserveOperacion(op, start)
	if err != nil {
		s.met.IncRechazo(Codigo(err))
	}
}

// EsAsignado indica si el actor es el profesional asignado (por id o email).
func EsAsignado(c Consulta, a acceso.Actor) bool {
	if c.ProfesionalAsignado != "" && strings.TrimSpace(a.ProfesionalID) == c.ProfesionalAsignado {
		return true
	}
	email := strings.ToLower(strings.TrimSpace(a.Email))
	return c.ProfesionalEmail != "" && email != "" && email == c.ProfesionalEmail
}
