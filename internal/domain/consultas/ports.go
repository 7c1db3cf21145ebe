package consultas

import (
	"context"
	"time"
)

// Firmante es el profesional verificado por el directorio.
type Firmante struct {
	ID     string
	Nombre string
	Email  string
}

// Directorio es el directorio de profesionales.
// Se define acá para no importar el paquete profesionales (evita ciclos).
type Directorio interface {
	// VerificarCredencial devuelve ErrBadCredential si el email no existe o la clave no coincide.
	VerificarCredencial(ctx context.Context, email, password string) (Firmante, error)
	// BuscarPorEmail resuelve un profesional por email (consultas asignadas sólo por email).
	BuscarPorEmail(ctx context.Context, email string) (Firmante, error)
	// AjustarContadores suma los deltas de forma atómica en el store.
	AjustarContadores(ctx context.Context, profesionalID string, deltaActivos, deltaResueltos int) error
}

// Tipos de evento publicados.
const (
	EventoRegistrada   = "consulta.registrada"
	EventoTransicion   = "consulta.transicion"
	EventoFirmada      = "consulta.firmada"
	EventoFirmaAnulada = "consulta.firma_anulada"
)

// Evento describe un hecho ya persistido del ciclo de vida.
type Evento struct {
	Tipo          string    `json:"tipo"`
	ConsultaID    string    `json:"consultaId"`
	Anterior      Estado    `json:"anterior,omitempty"`
	Estado        Estado    `json:"estado"`
	ActorID       string    `json:"actorId"`
	ProfesionalID string    `json:"profesionalId,omitempty"`
	Hash          string    `json:"hash,omitempty"`
	Dispositivo   string    `json:"dispositivo,omitempty"`
	Fecha         time.Time `json:"fecha"`
}

//go:generate mockgen -source=ports.go -destination=mock_ports_test.go -package=consultas
//go:generate mockgen -destination=mock_iplookup_test.go -package=consultas cic-consultas/internal/ports/iplookup Resolver

// Publicador emite eventos hacia afuera. Best-effort: un error no revierte nada.
type Publicador interface {
	Publicar(ctx context.Context, e Evento) error
}
