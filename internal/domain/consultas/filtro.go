package consultas

import (
	"sort"
	"strings"

	"cic-consultas/internal/domain/acceso"
)

// Criterios de filtrado. Los campos vacíos no filtran.
type Criterios struct {
	Texto             string
	Estado            Estado
	Tipo              Tipo
	Prioridad         Prioridad
	Profesional       string // id o nombre visible
	MostrarArchivados bool
	DNI               string // coincidencia exacta con personaDni
}

// ConIdentidad fija el filtro por DNI y, si no hay texto, lo usa como búsqueda.
func (c Criterios) ConIdentidad(dni string) Criterios {
	dni = strings.TrimSpace(dni)
	if dni == "" {
		return c
	}
	c.DNI = dni
	if strings.TrimSpace(c.Texto) == "" {
		c.Texto = dni
	}
	return c
}

// EnAlcance indica si el actor puede ver y operar c.
// Sólo el rol profesional queda limitado a los casos que tiene asignados.
func EnAlcance(c Consulta, actor acceso.Actor) bool {
	return actor.Rol != acceso.RolProfesional || EsAsignado(c, actor)
}

// Aplicar filtra records sin reordenar. Todos los predicados se combinan con AND.
// Para el rol profesional el alcance a sus propios casos es obligatorio.
func Aplicar(records []Consulta, crit Criterios, actor acceso.Actor) []Consulta {
	texto := strings.ToLower(strings.TrimSpace(crit.Texto))
	dni := strings.TrimSpace(crit.DNI)
	prof := strings.TrimSpace(crit.Profesional)

	out := make([]Consulta, 0, len(records))
	for _, c := range records {
		if !crit.MostrarArchivados && c.Estado == EstadoArchivado {
			continue
		}
		if !EnAlcance(c, actor) {
			continue
		}
		if dni != "" && c.PersonaDni != dni {
			continue
		}
		if texto != "" && !strings.Contains(c.SearchText, texto) {
			continue
		}
		if crit.Estado != "" && c.Estado != crit.Estado {
			continue
		}
		if crit.Tipo != "" && c.Tipo != crit.Tipo {
			continue
		}
		if crit.Prioridad != "" && c.Prioridad != crit.Prioridad {
			continue
		}
		if prof != "" && c.ProfesionalAsignado != prof && strings.TrimSpace(c.ProfesionalNombre) != prof {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Resumen son los totales que muestra el panel sobre una página.
type Resumen struct {
	Total        int `json:"total"`
	Pendientes   int `json:"pendientes"`
	EnProceso    int `json:"en_proceso"`
	Resueltas    int `json:"resueltas"`
	Urgentes     int `json:"urgentes"`
	Derivaciones int `json:"derivaciones"`
	Firmadas     int `json:"firmadas"`
}

func Resumir(records []Consulta) Resumen {
	r := Resumen{Total: len(records)}
	for _, c := range records {
		switch c.Estado {
		case EstadoPendiente:
			r.Pendientes++
		case EstadoEnProceso:
			r.EnProceso++
		case EstadoResuelto:
			r.Resueltas++
		}
		if c.Prioridad == PrioridadUrgente {
			r.Urgentes++
		}
		if c.Tipo == TipoDerivacion {
			r.Derivaciones++
		}
		if c.Firmada() {
			r.Firmadas++
		}
	}
	return r
}

// OpcionProfesional es una entrada del selector de profesional.
type OpcionProfesional struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
}

// OpcionesProfesional lista los profesionales presentes en records, sin repetir,
// ordenados por nombre.
func OpcionesProfesional(records []Consulta) []OpcionProfesional {
	seen := map[string]struct{}{}
	out := make([]OpcionProfesional, 0)
	for _, c := range records {
		id := c.ProfesionalAsignado
		nombre := strings.TrimSpace(c.ProfesionalNombre)
		if id == "" && nombre == "" {
			continue
		}
		key := id
		if key == "" {
			key = nombre
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if nombre == "" {
			nombre = id
		}
		out = append(out, OpcionProfesional{ID: key, Nombre: nombre})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out
}
