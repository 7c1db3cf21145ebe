package consultas

import "time"

// Cambios es una modificación parcial y atómica de una consulta.
// Historial y observaciones sólo se agregan; nunca se reescriben.
type Cambios struct {
	Estado              *Estado
	NuevosHistorial     []EntradaHistorial
	NuevasObservaciones []Observacion
	Firma               *FirmaDigital
	AnularFirma         bool

	// Condiciones evaluadas contra el estado actual en el store.
	EsperaEstado    Estado // "" = sin condición
	EsperaSinFirma  bool
	EsperaFirmaHash string // "" = sin condición
}

// Cumple evalúa las condiciones de c contra la consulta actual.
func (c Cambios) Cumple(actual Consulta) bool {
	if c.EsperaEstado != "" && actual.Estado != c.EsperaEstado {
		return false
	}
	if c.EsperaSinFirma && actual.FirmaDigital != nil {
		return false
	}
	if c.EsperaFirmaHash != "" && (actual.FirmaDigital == nil || actual.FirmaDigital.Hash != c.EsperaFirmaHash) {
		return false
	}
	return true
}

// AplicarA devuelve una copia de datos con los cambios aplicados.
// Los elementos existentes de historial/observaciones se conservan tal cual.
func (c Cambios) AplicarA(datos map[string]any, ahora time.Time) map[string]any {
	out := make(map[string]any, len(datos)+4)
	for k, v := range datos {
		out[k] = v
	}

	if c.Estado != nil {
		out[CampoEstado] = string(*c.Estado)
	}
	if len(c.NuevosHistorial) > 0 {
		items := copiaLista(out[CampoHistoricoEstados])
		for _, h := range c.NuevosHistorial {
			items = append(items, HistorialADatos(h))
		}
		out[CampoHistoricoEstados] = items
	}
	if len(c.NuevasObservaciones) > 0 {
		items := copiaLista(out[CampoObservaciones])
		for _, o := range c.NuevasObservaciones {
			items = append(items, ObservacionADatos(o))
		}
		out[CampoObservaciones] = items
	}
	switch {
	case c.Firma != nil:
		out[CampoFirmaDigital] = FirmaADatos(*c.Firma)
	case c.AnularFirma:
		out[CampoFirmaDigital] = nil
	}

	out[CampoUpdatedAt] = ahora
	return out
}

func copiaLista(v any) []any {
	switch t := v.(type) {
	case []any:
		return append(make([]any, 0, len(t)+2), t...)
	case []map[string]any:
		out := make([]any, 0, len(t)+2)
		for _, m := range t {
			out = append(out, m)
		}
		return out
	case []EntradaHistorial:
		out := make([]any, 0, len(t)+2)
		for _, h := range t {
			out = append(out, HistorialADatos(h))
		}
		return out
	case []Observacion:
		out := make([]any, 0, len(t)+2)
		for _, o := range t {
			out = append(out, ObservacionADatos(o))
		}
		return out
	default:
		return make([]any, 0, 2)
	}
}

func isoUTC(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// HistorialADatos codifica una entrada de histórico en la forma del documento.
func HistorialADatos(h EntradaHistorial) map[string]any {
	m := map[string]any{
		"estado":  string(h.Estado),
		"fecha":   isoUTC(h.Fecha),
		"usuario": h.Usuario,
	}
	if h.ProfesionalID != "" {
		m["profesionalId"] = h.ProfesionalID
	}
	if h.Nota != "" {
		m["nota"] = h.Nota
	}
	return m
}

// ObservacionADatos codifica una observación en la forma del documento.
func ObservacionADatos(o Observacion) map[string]any {
	m := map[string]any{
		"fecha":   isoUTC(o.Fecha),
		"usuario": o.Usuario,
		"nota":    o.Nota,
	}
	if o.ProfesionalID != "" {
		m["profesionalId"] = o.ProfesionalID
	}
	return m
}

// FirmaADatos codifica una firma en la forma del documento.
func FirmaADatos(f FirmaDigital) map[string]any {
	return map[string]any{
		"profesional":      f.Profesional,
		"profesionalId":    f.ProfesionalID,
		"profesionalEmail": f.ProfesionalEmail,
		"timestamp":        isoUTC(f.Timestamp),
		"hash":             f.Hash,
		"ipAddress":        f.IPAddress,
		"userAgent":        f.UserAgent,
		"verificado":       f.Verificado,
	}
}
