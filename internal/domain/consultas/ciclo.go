package consultas

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cic-consultas/internal/domain/acceso"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type TransitionOptions struct {
	// ConfirmarAnulacion permite sacar de resuelto una consulta firmada.
	// La firma se anula y queda registrada en observaciones.
	ConfirmarAnulacion bool
}

// EvaluarTransicion aplica las reglas del ciclo de vida sobre c.
// Devuelve anula=true si la transición invalida la firma vigente.
// Un profesional sólo opera sus casos: fuera de alcance se rechaza antes que cualquier otra regla.
func EvaluarTransicion(c Consulta, nuevo Estado, actor acceso.Actor, opts TransitionOptions) (anula bool, err error) {
	if !EstadoValido(nuevo) {
		return false, ErrInvalidInput
	}
	if !EnAlcance(c, actor) {
		return false, rechazo(ErrUnauthorized, c, nuevo, actor.UserID)
	}
	if c.Estado.Terminal() || nuevo == c.Estado {
		return false, rechazo(ErrInvalidTransition, c, nuevo, actor.UserID)
	}
	if c.Firmada() && c.Estado == EstadoResuelto && nuevo != EstadoResuelto {
		if !opts.ConfirmarAnulacion {
			return false, rechazo(ErrSignedImmutable, c, nuevo, actor.UserID)
		}
		anula = true
	}
	if nuevo == EstadoResuelto && c.Asignada() && !EsAsignado(c, actor) {
		return false, rechazo(ErrNotOwner, c, nuevo, actor.UserID)
	}
	return anula, nil
}

// Transition cambia el estado de la consulta id a nuevo.
// Historial, observaciones, anulación de firma y estado se guardan en una sola escritura.
func (s *Service) Transition(ctx context.Context, id string, nuevo Estado, actor acceso.Actor, nota string, opts TransitionOptions) (_ Consulta, err error) {
	ctx, span := s.tracer.Start(ctx, "consultas.Transition")
	defer span.End()
	span.SetAttributes(
		attribute.String("consulta.id", id),
		attribute.String("consulta.estado_nuevo", string(nuevo)),
		attribute.String("actor.rol", string(actor.Rol)),
	)

	start := time.Now()
	defer func() {
		s.registrarResultado("transition", start, err)
		if err != nil {
			span.SetStatus(codes.Error, Codigo(err))
		}
	}()

	id = strings.TrimSpace(id)
	nota = strings.TrimSpace(nota)
	if id == "" || !EstadoValido(nuevo) {
		return Consulta{}, ErrInvalidInput
	}
	if !actor.Puede(acceso.PermisoCambiarEstado) {
		return Consulta{}, &Rechazo{Causa: ErrUnauthorized, ConsultaID: id, EstadoSolicitado: nuevo, ActorID: actor.UserID}
	}

	release, err := s.tomar(ctx, id, actor.UserID)
	if err != nil {
		return Consulta{}, err
	}
	defer release()

	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Consulta{}, storeErr("get consulta", err)
	}
	c := Normalizar(doc)

	anula, err := EvaluarTransicion(c, nuevo, actor, opts)
	if err != nil {
		return Consulta{}, err
	}

	ahora := s.now()
	usuario := actor.NombreVisible()
	cambios := Cambios{
		Estado: &nuevo,
		NuevosHistorial: []EntradaHistorial{{
			Estado:        nuevo,
			Fecha:         ahora,
			Usuario:       usuario,
			ProfesionalID: actor.ProfesionalID,
			Nota:          nota,
		}},
		EsperaEstado: c.Estado,
	}
	if anula {
		f := c.FirmaDigital
		cambios.AnularFirma = true
		cambios.EsperaFirmaHash = f.Hash
		cambios.NuevasObservaciones = append(cambios.NuevasObservaciones, Observacion{
			Fecha:   ahora,
			Usuario: usuario,
			Nota: fmt.Sprintf("[FIRMA ANULADA] Firma de %s (id %s) del %s anulada al cambiar el estado de %s a %s. Hash: %s",
				f.Profesional, f.ProfesionalID, FormatFechaHora(f.Timestamp), c.Estado, nuevo, f.Hash),
			ProfesionalID: actor.ProfesionalID,
		})
	} else {
		cambios.EsperaSinFirma = !c.Firmada()
	}
	if nota != "" {
		cambios.NuevasObservaciones = append(cambios.NuevasObservaciones, Observacion{
			Fecha:         ahora,
			Usuario:       usuario,
			Nota:          nota,
			ProfesionalID: actor.ProfesionalID,
		})
	}

	if err := s.repo.Update(ctx, id, cambios); err != nil {
		return Consulta{}, storeErr("update consulta", err)
	}
	res := Normalizar(Documento{ID: id, Datos: cambios.AplicarA(doc.Datos, ahora)})

	s.met.IncTransicion(string(nuevo))
	s.log.Info("transición de estado", map[string]any{
		"consulta_id":   id,
		"anterior":      string(c.Estado),
		"nuevo":         string(nuevo),
		"actor_id":      actor.UserID,
		"firma_anulada": anula,
	})

	if da, dr := Deltas(c.Estado, nuevo); da != 0 || dr != 0 {
		s.sync.OnTransition(ctx, s.sync.ProfesionalDe(ctx, c), c.Estado, nuevo)
	}

	s.publicar(ctx, Evento{
		Tipo:          EventoTransicion,
		ConsultaID:    id,
		Anterior:      c.Estado,
		Estado:        nuevo,
		ActorID:       actor.UserID,
		ProfesionalID: c.ProfesionalAsignado,
		Fecha:         ahora,
	})
	if anula {
		s.publicar(ctx, Evento{
			Tipo:          EventoFirmaAnulada,
			ConsultaID:    id,
			Anterior:      c.Estado,
			Estado:        nuevo,
			ActorID:       actor.UserID,
			ProfesionalID: c.FirmaDigital.ProfesionalID,
			Hash:          c.FirmaDigital.Hash,
			Fecha:         ahora,
		})
	}

	return res, nil
}
