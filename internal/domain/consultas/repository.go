package consultas

import (
	"context"
	"time"
)

// Repository es el store de documentos de consultas.
// Devuelve documentos crudos: la normalización ocurre siempre en el servicio.
type Repository interface {
	// Create persiste un documento nuevo. El store asigna numeroConsulta,
	// createdAt y updatedAt y devuelve el documento tal como quedó.
	Create(ctx context.Context, d Documento) (Documento, error)
	GetByID(ctx context.Context, id string) (Documento, error)

	// List devuelve a lo sumo q.Limite documentos en el orden pedido,
	// estrictamente después de q.Despues si viene.
	// Si el store no puede ordenar por q.Orden devuelve ErrOrderingUnsupported.
	List(ctx context.Context, q PageQuery) ([]Documento, error)

	// Update aplica c de forma atómica (todo o nada) y setea updatedAt.
	// Si las condiciones de c no se cumplen devuelve ErrConflict.
	Update(ctx context.Context, id string, c Cambios) error
}

type PageQuery struct {
	Orden   Orden
	Despues *Cursor
	Limite  int
}

// Cursor apunta al último registro de una página bajo un orden dado.
type Cursor struct {
	Orden          Orden     `json:"o"`
	ID             string    `json:"id"`
	NumeroConsulta *int64    `json:"n,omitempty"`
	CreatedAt      time.Time `json:"c"`
}

// CursorDe arma el cursor que continúa después de c.
func CursorDe(c Consulta, orden Orden) *Cursor {
	cur := &Cursor{Orden: orden, ID: c.ID}
	if c.NumeroConsulta != nil {
		n := *c.NumeroConsulta
		cur.NumeroConsulta = &n
	}
	if c.CreatedAt != nil {
		cur.CreatedAt = *c.CreatedAt
	}
	return cur
}

// Clave devuelve la clave de orden del cursor.
func (c Cursor) Clave() Clave {
	return Clave{ID: c.ID, NumeroConsulta: c.NumeroConsulta, CreatedAt: c.CreatedAt}
}
