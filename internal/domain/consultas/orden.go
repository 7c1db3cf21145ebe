package consultas

import "time"

// Orden de paginación.
type Orden string

const (
	// OrdenNumero: numeroConsulta desc. Los registros sin número van al final.
	OrdenNumero Orden = "numeroConsulta"
	// OrdenCreacion: createdAt desc.
	OrdenCreacion Orden = "createdAt"
)

func (o Orden) Valido() bool {
	return o == OrdenNumero || o == OrdenCreacion
}

// Clave es lo necesario para ordenar un registro.
type Clave struct {
	ID             string
	NumeroConsulta *int64
	CreatedAt      time.Time
}

// ClaveDe extrae la clave de orden de una consulta normalizada.
func ClaveDe(c Consulta) Clave {
	k := Clave{ID: c.ID, NumeroConsulta: c.NumeroConsulta}
	if c.CreatedAt != nil {
		k.CreatedAt = *c.CreatedAt
	}
	return k
}

// Precede indica si a va antes que b bajo el orden o.
// Desempates: createdAt desc y luego id desc, así el orden es total.
func Precede(o Orden, a, b Clave) bool {
	if o == OrdenNumero {
		switch {
		case a.NumeroConsulta != nil && b.NumeroConsulta == nil:
			return true
		case a.NumeroConsulta == nil && b.NumeroConsulta != nil:
			return false
		case a.NumeroConsulta != nil && *a.NumeroConsulta != *b.NumeroConsulta:
			return *a.NumeroConsulta > *b.NumeroConsulta
		}
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
