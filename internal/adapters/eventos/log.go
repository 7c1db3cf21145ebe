package eventos

import (
	"context"

	"cic-consultas/internal/domain/consultas"
	"cic-consultas/internal/platform/logger"
)

// Log sólo registra los eventos. Es el publicador por defecto sin Kafka.
type Log struct {
	log logger.Logger
}

func NewLog(l logger.Logger) *Log {
	return &Log{log: l}
}

var _ consultas.Publicador = (*Log)(nil)

func (p *Log) Publicar(_ context.Context, e consultas.Evento) error {
	fields := map[string]any{
		"tipo":        e.Tipo,
		"consulta_id": e.ConsultaID,
		"estado":      string(e.Estado),
		"actor_id":    e.ActorID,
	}
	if e.Anterior != "" {
		fields["anterior"] = string(e.Anterior)
	}
	if e.ProfesionalID != "" {
		fields["profesional_id"] = e.ProfesionalID
	}
	if e.Hash != "" {
		fields["hash"] = e.Hash
	}
	if e.Dispositivo != "" {
		fields["dispositivo"] = e.Dispositivo
	}
	p.log.Info("evento", fields)
	return nil
}

func (p *Log) Close() error { return nil }
