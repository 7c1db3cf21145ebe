package consultas

import "time"

// Estado del ciclo de vida de una consulta.
// @Enum pendiente, en_proceso, notificado, resuelto, cerrado, archivado
type Estado string

const (
	EstadoPendiente  Estado = "pendiente"
	EstadoEnProceso  Estado = "en_proceso"
	EstadoNotificado Estado = "notificado"
	EstadoResuelto   Estado = "resuelto"
	EstadoCerrado    Estado = "cerrado"
	EstadoArchivado  Estado = "archivado"
)

// Tipo de ingreso.
// @Enum espontanea, derivacion
type Tipo string

const (
	TipoEspontanea Tipo = "espontanea"
	TipoDerivacion Tipo = "derivacion"
)

// Prioridad de atención.
// @Enum baja, media, alta, urgente
type Prioridad string

const (
	PrioridadBaja    Prioridad = "baja"
	PrioridadMedia   Prioridad = "media"
	PrioridadAlta    Prioridad = "alta"
	PrioridadUrgente Prioridad = "urgente"
)

// EntradaHistorial es un cambio de estado registrado. Nunca se edita ni se borra.
type EntradaHistorial struct {
	Estado        Estado    `json:"estado"`
	Fecha         time.Time `json:"fecha"`
	Usuario       string    `json:"usuario"`
	ProfesionalID string    `json:"profesionalId,omitempty"`
	Nota          string    `json:"nota,omitempty"`
}

// Observacion es una nota libre agregada a la consulta. Append-only.
type Observacion struct {
	Fecha         time.Time `json:"fecha"`
	Usuario       string    `json:"usuario"`
	Nota          string    `json:"nota"`
	ProfesionalID string    `json:"profesionalId,omitempty"`
}

// FirmaDigital certifica que un profesional cerró el caso resuelto.
type FirmaDigital struct {
	Profesional      string    `json:"profesional"`
	ProfesionalID    string    `json:"profesionalId"`
	ProfesionalEmail string    `json:"profesionalEmail"`
	Timestamp        time.Time `json:"timestamp"`
	Hash             string    `json:"hash"`
	IPAddress        string    `json:"ipAddress"`
	UserAgent        string    `json:"userAgent"`
	Verificado       bool      `json:"verificado"`
}

// Consulta es la vista normalizada de un documento de consulta.
// FirmaDigital nil significa "sin firmar".
type Consulta struct {
	ID             string
	NumeroConsulta *int64

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
	Estado      Estado
	Fecha       string

	ProfesionalAsignado string
	ProfesionalNombre   string
	ProfesionalEmail    string

	HistoricoEstados []EntradaHistorial
	Observaciones    []Observacion
	FirmaDigital     *FirmaDigital

	CreatedAt *time.Time
	UpdatedAt *time.Time

	// Derivados por el normalizador.
	FechaLabel     string
	CreatedAtLabel string
	UpdatedAtLabel string
	EstadoLabel    string
	PrioridadLabel string
	TipoLabel      string
	SearchText     string
}

// Firmada indica si la consulta tiene una firma vigente.
func (c Consulta) Firmada() bool {
	return c.FirmaDigital != nil
}

// Asignada indica si hay un profesional asignado (por id o email).
func (c Consulta) Asignada() bool {
	return c.ProfesionalAsignado != "" || c.ProfesionalEmail != ""
}

// Documento es la forma cruda tal como la guarda el store.
type Documento struct {
	ID    string
	Datos map[string]any
}

// Nombres de campo del documento almacenado.
const (
	CampoNumeroConsulta   = "numeroConsulta"
	CampoEstado           = "estado"
	CampoHistoricoEstados = "historicoEstados"
	CampoObservaciones    = "observaciones"
	CampoFirmaDigital     = "firmaDigital"
	CampoCreatedAt        = "createdAt"
	CampoUpdatedAt        = "updatedAt"
)

// EstadoValido indica si e es un estado conocido.
func EstadoValido(e Estado) bool {
	switch e {
	case EstadoPendiente, EstadoEnProceso, EstadoNotificado, EstadoResuelto, EstadoCerrado, EstadoArchivado:
		return true
	default:
		return false
	}
}

// Terminal: estados desde los que no se sale.
func (e Estado) Terminal() bool {
	return e == EstadoCerrado || e == EstadoArchivado
}
