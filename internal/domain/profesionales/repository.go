package profesionales

import "context"

type Repository interface {
	Create(ctx context.Context, p Profesional) error
	Update(ctx context.Context, p Profesional) error
	GetByID(ctx context.Context, id string) (Profesional, error)
	GetByEmail(ctx context.Context, email string) (Profesional, error)
	List(ctx context.Context) ([]Profesional, error)

	// AjustarContadores suma los deltas de forma atómica (incremento relativo, sin recorte).
	AjustarContadores(ctx context.Context, id string, deltaActivos, deltaResueltos int) error
}
