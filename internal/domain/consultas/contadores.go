package consultas

import (
	"context"
	"strings"

	"cic-consultas/internal/platform/logger"
	"cic-consultas/internal/platform/metrics"
)

// Sincronizador mantiene casosActivos/casosResueltos del profesional asignado.
// Nunca hace fallar la operación que lo dispara: los errores se loguean.
type Sincronizador struct {
	dir Directorio
	log logger.Logger
	met *metrics.Metrics
}

func NewSincronizador(dir Directorio, log logger.Logger, met *metrics.Metrics) *Sincronizador {
	if log == nil {
		log = logger.Nop()
	}
	return &Sincronizador{dir: dir, log: log, met: met}
}

// Deltas devuelve el ajuste (activos, resueltos) para una transición.
// Entrar a resuelto: (-1, +1). Salir de resuelto: (+1, -1). Otro caso: (0, 0).
func Deltas(anterior, nuevo Estado) (int, int) {
	switch {
	case anterior != EstadoResuelto && nuevo == EstadoResuelto:
		return -1, 1
	case anterior == EstadoResuelto && nuevo != EstadoResuelto:
		return 1, -1
	default:
		return 0, 0
	}
}

// OnTransition aplica los deltas de la transición al profesional.
func (s *Sincronizador) OnTransition(ctx context.Context, profesionalID string, anterior, nuevo Estado) {
	da, dr := Deltas(anterior, nuevo)
	if da == 0 && dr == 0 {
		return
	}
	s.ajustar(ctx, profesionalID, da, dr, map[string]any{
		"anterior": string(anterior),
		"nuevo":    string(nuevo),
	})
}

// ProfesionalDe devuelve el id a ajustar para c. Si la consulta sólo tiene
// email lo resuelve en el directorio; "" si no hay a quién ajustar.
func (s *Sincronizador) ProfesionalDe(ctx context.Context, c Consulta) string {
	if c.ProfesionalAsignado != "" || c.ProfesionalEmail == "" || s.dir == nil {
		return c.ProfesionalAsignado
	}
	f, err := s.dir.BuscarPorEmail(ctx, c.ProfesionalEmail)
	if err != nil {
		s.log.Debug("profesional no resuelto por email", map[string]any{
			"consulta_id": c.ID,
			"email":       c.ProfesionalEmail,
			"error":       err,
		})
		return ""
	}
	return f.ID
}

// OnAsignacion suma un caso activo al profesional asignado al registrar.
func (s *Sincronizador) OnAsignacion(ctx context.Context, profesionalID string) {
	s.ajustar(ctx, profesionalID, 1, 0, map[string]any{"motivo": "asignacion"})
}

func (s *Sincronizador) ajustar(ctx context.Context, profesionalID string, da, dr int, fields map[string]any) {
	fields["profesional_id"] = profesionalID
	fields["delta_activos"] = da
	fields["delta_resueltos"] = dr

	if strings.TrimSpace(profesionalID) == "" || s.dir == nil {
		s.met.IncSyncOmitido()
		s.log.Warn("CounterSyncSkipped: profesional no identificado", fields)
		return
	}
	if err := s.dir.AjustarContadores(ctx, profesionalID, da, dr); err != nil {
		fields["error"] = err
		s.met.IncSyncOmitido()
		s.log.Warn("CounterSyncSkipped: no se pudieron ajustar contadores", fields)
		return
	}
	s.log.Debug("contadores ajustados", fields)
}
