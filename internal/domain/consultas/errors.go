package consultas

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("consulta not found")
	ErrConflict            = errors.New("consulta modificada por otra operación")
	ErrSignedImmutable     = errors.New("consulta firmada: el estado resuelto es inmutable")
	ErrNotOwner            = errors.New("sólo el profesional asignado puede resolver la consulta")
	ErrNotResolved         = errors.New("sólo se pueden firmar consultas resueltas")
	ErrAlreadySigned       = errors.New("la consulta ya está firmada")
	ErrUnauthorized        = errors.New("operación no permitida para el actor")
	ErrBadCredential       = errors.New("credencial inválida")
	ErrInvalidTransition   = errors.New("transición de estado inválida")
	ErrBusy                = errors.New("la consulta está siendo modificada")
	ErrStoreUnavailable    = errors.New("almacenamiento no disponible")
	ErrOrderingUnsupported = errors.New("el store no soporta el orden solicitado")
)

// Rechazo describe una operación rechazada por una regla del ciclo de vida.
// errors.Is(r, ErrX) funciona vía Unwrap.
type Rechazo struct {
	Causa            error
	ConsultaID       string
	EstadoActual     Estado
	EstadoSolicitado Estado
	ActorID          string
}

func (r *Rechazo) Error() string {
	msg := fmt.Sprintf("consulta %s: %v", r.ConsultaID, r.Causa)
	if r.EstadoSolicitado != "" {
		msg += fmt.Sprintf(" (%s -> %s)", r.EstadoActual, r.EstadoSolicitado)
	}
	return msg
}

func (r *Rechazo) Unwrap() error { return r.Causa }

func rechazo(causa error, c Consulta, solicitado Estado, actorID string) *Rechazo {
	return &Rechazo{
		Causa:            causa,
		ConsultaID:       c.ID,
		EstadoActual:     c.Estado,
		EstadoSolicitado: solicitado,
		ActorID:          actorID,
	}
}

// storeErr envuelve errores de infraestructura como ErrStoreUnavailable.
// Los errores de dominio pasan sin tocar.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{ErrNotFound, ErrConflict, ErrOrderingUnsupported, ErrStoreUnavailable, ErrInvalidInput} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

// Codigo devuelve un código estable para cada tipo de error.
// Lo usan los handlers HTTP y las métricas.
func Codigo(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSignedImmutable):
		return "firma_inmutable"
	case errors.Is(err, ErrNotOwner):
		return "no_propietario"
	case errors.Is(err, ErrNotResolved):
		return "no_resuelta"
	case errors.Is(err, ErrAlreadySigned):
		return "ya_firmada"
	case errors.Is(err, ErrUnauthorized):
		return "no_autorizado"
	case errors.Is(err, ErrBadCredential):
		return "credencial_invalida"
	case errors.Is(err, ErrInvalidTransition):
		return "transicion_invalida"
	case errors.Is(err, ErrBusy):
		return "operacion_en_curso"
	case errors.Is(err, ErrConflict):
		return "conflicto"
	case errors.Is(err, ErrNotFound):
		return "no_encontrada"
	case errors.Is(err, ErrInvalidInput):
		return "entrada_invalida"
	case errors.Is(err, ErrStoreUnavailable):
		return "almacenamiento_no_disponible"
	default:
		return "error_interno"
	}
}
