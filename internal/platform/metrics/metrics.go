package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los contadores del ciclo de vida de consultas.
// Cada instancia tiene su propio registry para que los tests puedan crear varias.
// Todos los métodos aceptan receptor nil (métricas deshabilitadas).
type Metrics struct {
	reg *prometheus.Registry

	Transiciones      *prometheus.CounterVec
	Firmas            prometheus.Counter
	Rechazos          *prometheus.CounterVec
	FallbacksOrden    prometheus.Counter
	SyncOmitidos      prometheus.Counter
	ConflictosGuard   prometheus.Counter
	DuracionOperacion *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		Transiciones: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cic_consultas_transiciones_total",
			Help: "Transiciones de estado aceptadas, por estado destino",
		}, []string{"estado"}),
		Firmas: f.NewCounter(prometheus.CounterOpts{
			Name: "cic_consultas_firmas_total",
			Help: "Firmas digitales registradas",
		}),
		Rechazos: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cic_consultas_rechazos_total",
			Help: "Operaciones rechazadas por regla de negocio, por tipo",
		}, []string{"tipo"}),
		FallbacksOrden: f.NewCounter(prometheus.CounterOpts{
			Name: "cic_consultas_fallback_orden_total",
			Help: "Consultas paginadas que cayeron al orden por createdAt",
		}),
		SyncOmitidos: f.NewCounter(prometheus.CounterOpts{
			Name: "cic_profesionales_sync_omitidos_total",
			Help: "Ajustes de contadores de profesionales que no se pudieron aplicar",
		}),
		ConflictosGuard: f.NewCounter(prometheus.CounterOpts{
			Name: "cic_consultas_guard_ocupado_total",
			Help: "Operaciones rechazadas porque la consulta estaba siendo modificada",
		}),
		DuracionOperacion: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cic_consultas_operacion_duracion_seconds",
			Help:    "Duración de operaciones del ciclo de vida",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operacion"}),
	}
}

// Handler expone /metrics para este registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func (m *Metrics) IncTransicion(estado string) {
	if m == nil {
		return
	}
	m.Transiciones.WithLabelValues(estado).Inc()
}

func (m *Metrics) IncFirma() {
	if m == nil {
		return
	}
	m.Firmas.Inc()
}

func (m *Metrics) IncRechazo(tipo string) {
	if m == nil {
		return
	}
	m.Rechazos.WithLabelValues(tipo).Inc()
}

func (m *Metrics) IncFallbackOrden() {
	if m == nil {
		return
	}
	m.FallbacksOrden.Inc()
}

func (m *Metrics) IncSyncOmitido() {
	if m == nil {
		return
	}
	m.SyncOmitidos.Inc()
}

func (m *Metrics) IncGuardOcupado() {
	if m == nil {
		return
	}
	m.ConflictosGuard.Inc()
}

// ObserveOperacion registra la duración desde start.
func (m *Metrics) ObserveOperacion(op string, start time.Time) {
	if m == nil {
		return
	}
	m.DuracionOperacion.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
