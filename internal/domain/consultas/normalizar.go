package consultas

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Las etiquetas se muestran en hora de Argentina (sin DST).
var zonaAR = time.FixedZone("ART", -3*60*60)

const sinDato = "—"

var etiquetasEstado = map[Estado]string{
	EstadoPendiente:  "Pendiente",
	EstadoEnProceso:  "En Proceso",
	EstadoNotificado: "Notificado",
	EstadoResuelto:   "Resuelto",
	EstadoCerrado:    "Cerrado",
	EstadoArchivado:  "Archivado",
}

var etiquetasPrioridad = map[Prioridad]string{
	PrioridadBaja:    "Baja",
	PrioridadMedia:   "Media",
	PrioridadAlta:    "Alta",
	PrioridadUrgente: "Urgente",
}

var etiquetasTipo = map[Tipo]string{
	TipoEspontanea: "Espontánea",
	TipoDerivacion: "Derivación",
}

// Normalizar convierte un documento crudo (posiblemente legacy o parcial) en una Consulta.
// Nunca falla: los campos ausentes quedan en su valor por defecto.
func Normalizar(d Documento) Consulta {
	m := d.Datos
	if m == nil {
		m = map[string]any{}
	}

	c := Consulta{
		ID:             d.ID,
		NumeroConsulta: numero(m[CampoNumeroConsulta]),

		PersonaNombre:   texto(m["personaNombre"]),
		PersonaDni:      strings.TrimSpace(texto(m["personaDni"])),
		PersonaTelefono: texto(m["personaTelefono"]),
		PersonaEdad:     texto(m["personaEdad"]),
		PersonaID:       primero(m, "personDocId", "personId"),
		HogarID:         primero(m, "householdId", "grupoFamiliar"),

		Motivo:      texto(m["motivo"]),
		Descripcion: texto(m["descripcion"]),
		Tipo:        Tipo(texto(m["tipo"])),
		Prioridad:   Prioridad(texto(m["prioridad"])),
		Estado:      Estado(texto(m[CampoEstado])),
		Fecha:       texto(m["fecha"]),

		ProfesionalAsignado: strings.TrimSpace(primero(m, "profesionalAsignado", "profesionalId", "professionalId")),
		ProfesionalNombre:   primero(m, "profesionalNombre", "profesional"),
		ProfesionalEmail:    strings.ToLower(strings.TrimSpace(emailProfesional(m))),

		HistoricoEstados: historial(m[CampoHistoricoEstados]),
		Observaciones:    observaciones(m[CampoObservaciones]),
		FirmaDigital:     firma(m[CampoFirmaDigital]),

		CreatedAt: fecha(m[CampoCreatedAt]),
		UpdatedAt: fecha(m[CampoUpdatedAt]),
	}
	if c.Estado == "" {
		c.Estado = EstadoPendiente
	}

	c.FechaLabel = sinDato
	switch {
	case strings.TrimSpace(c.Fecha) != "":
		c.FechaLabel = c.Fecha
	case c.CreatedAt != nil:
		c.FechaLabel = FormatFecha(*c.CreatedAt)
	}
	c.CreatedAtLabel = fechaHoraLabel(c.CreatedAt)
	c.UpdatedAtLabel = fechaHoraLabel(c.UpdatedAt)
	c.EstadoLabel = etiqueta(etiquetasEstado, c.Estado)
	c.PrioridadLabel = etiqueta(etiquetasPrioridad, c.Prioridad)
	c.TipoLabel = etiqueta(etiquetasTipo, c.Tipo)

	alias := texto(m["profesional"])
	if alias == c.ProfesionalNombre {
		alias = ""
	}
	c.SearchText = strings.ToLower(strings.TrimSpace(strings.Join([]string{
		c.PersonaNombre, c.PersonaDni, c.Motivo, c.ProfesionalNombre, alias, c.ProfesionalEmail,
	}, " ")))

	return c
}

// FormatFecha formatea como es-AR (d/m/aaaa) en hora de Argentina.
func FormatFecha(t time.Time) string {
	return t.In(zonaAR).Format("2/1/2006")
}

// FormatFechaHora formatea como es-AR (d/m/aaaa, hh:mm:ss) en hora de Argentina.
func FormatFechaHora(t time.Time) string {
	return t.In(zonaAR).Format("2/1/2006, 15:04:05")
}

func fechaHoraLabel(t *time.Time) string {
	if t == nil {
		return sinDato
	}
	return FormatFechaHora(*t)
}

func etiqueta[K ~string](labels map[K]string, v K) string {
	if v == "" {
		return sinDato
	}
	if l, ok := labels[v]; ok {
		return l
	}
	return string(v)
}

func emailProfesional(m map[string]any) string {
	if e := texto(m["profesionalEmail"]); e != "" {
		return e
	}
	if v, ok := m["verificado"].(map[string]any); ok {
		return texto(v["profesionalEmail"])
	}
	return ""
}

func primero(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := texto(m[k]); strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func texto(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

// numero acepta cualquier forma numérica entera. Otra cosa => nil.
func numero(v any) *int64 {
	var n int64
	switch t := v.(type) {
	case int:
		n = int64(t)
	case int32:
		n = int64(t)
	case int64:
		n = t
	case *int64:
		if t == nil {
			return nil
		}
		n = *t
	case float32:
		return numero(float64(t))
	case float64:
		// float64(MaxInt64) redondea a 2^63, que ya no entra en int64.
		if math.IsNaN(t) || math.IsInf(t, 0) || t != math.Trunc(t) || t < math.MinInt64 || t >= math.MaxInt64 {
			return nil
		}
		n = int64(t)
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			f, ferr := t.Float64()
			if ferr != nil {
				return nil
			}
			return numero(f)
		}
		n = i
	default:
		return nil
	}
	return &n
}

// fecha acepta time.Time, *time.Time, strings RFC3339 y {seconds, nanoseconds}.
func fecha(v any) *time.Time {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return nil
		}
		return &t
	case *time.Time:
		if t == nil || t.IsZero() {
			return nil
		}
		tt := *t
		return &tt
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if p, err := time.Parse(layout, s); err == nil {
				return &p
			}
		}
		return nil
	case map[string]any:
		secs := numero(t["seconds"])
		if secs == nil {
			secs = numero(t["_seconds"])
		}
		if secs == nil {
			return nil
		}
		var nanos int64
		if n := numero(t["nanoseconds"]); n != nil {
			nanos = *n
		} else if n := numero(t["_nanoseconds"]); n != nil {
			nanos = *n
		}
		p := time.Unix(*secs, nanos).UTC()
		return &p
	default:
		return nil
	}
}

func fechaOCero(v any) time.Time {
	if t := fecha(v); t != nil {
		return *t
	}
	return time.Time{}
}

func lista(v any) []map[string]any {
	switch t := v.(type) {
	case []map[string]any:
		return t
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, it := range t {
			if m, ok := it.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

func historial(v any) []EntradaHistorial {
	if typed, ok := v.([]EntradaHistorial); ok {
		return append([]EntradaHistorial{}, typed...)
	}
	items := lista(v)
	out := make([]EntradaHistorial, 0, len(items))
	for _, m := range items {
		out = append(out, EntradaHistorial{
			Estado:        Estado(texto(m["estado"])),
			Fecha:         fechaOCero(m["fecha"]),
			Usuario:       texto(m["usuario"]),
			ProfesionalID: texto(m["profesionalId"]),
			Nota:          texto(m["nota"]),
		})
	}
	return out
}

func observaciones(v any) []Observacion {
	if typed, ok := v.([]Observacion); ok {
		return append([]Observacion{}, typed...)
	}
	items := lista(v)
	out := make([]Observacion, 0, len(items))
	for _, m := range items {
		out = append(out, Observacion{
			Fecha:         fechaOCero(m["fecha"]),
			Usuario:       texto(m["usuario"]),
			Nota:          texto(m["nota"]),
			ProfesionalID: texto(m["profesionalId"]),
		})
	}
	return out
}

// firma devuelve nil salvo que haya firmante o hash.
func firma(v any) *FirmaDigital {
	var f FirmaDigital
	switch t := v.(type) {
	case *FirmaDigital:
		if t == nil {
			return nil
		}
		f = *t
	case FirmaDigital:
		f = t
	case map[string]any:
		verificado, _ := t["verificado"].(bool)
		ts := fecha(t["timestamp"])
		if ts == nil {
			ts = fecha(t["fecha"])
		}
		f = FirmaDigital{
			Profesional:      texto(t["profesional"]),
			ProfesionalID:    texto(t["profesionalId"]),
			ProfesionalEmail: strings.ToLower(strings.TrimSpace(texto(t["profesionalEmail"]))),
			Hash:             texto(t["hash"]),
			IPAddress:        texto(t["ipAddress"]),
			UserAgent:        texto(t["userAgent"]),
			Verificado:       verificado,
		}
		if ts != nil {
			f.Timestamp = *ts
		}
	default:
		return nil
	}
	if strings.TrimSpace(f.Profesional) == "" && strings.TrimSpace(f.Hash) == "" {
		return nil
	}
	return &f
}
