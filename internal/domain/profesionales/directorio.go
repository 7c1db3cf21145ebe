package profesionales

import (
	"context"
	"errors"
	"fmt"

	"cic-consultas/internal/domain/consultas"
)

// Directorio adapta el servicio al puerto que usa el ciclo de vida de consultas.
type Directorio struct {
	svc *Service
}

func NewDirectorio(svc *Service) *Directorio {
	return &Directorio{svc: svc}
}

var _ consultas.Directorio = (*Directorio)(nil)

func (d *Directorio) VerificarCredencial(ctx context.Context, email, password string) (consultas.Firmante, error) {
	p, err := d.svc.Verificar(ctx, email, password)
	if errors.Is(err, ErrBadCredential) {
		return consultas.Firmante{}, consultas.ErrBadCredential
	}
	if err != nil {
		return consultas.Firmante{}, err
	}
	return consultas.Firmante{ID: p.ID, Nombre: p.NombreCompleto(), Email: p.Email}, nil
}

func (d *Directorio) BuscarPorEmail(ctx context.Context, email string) (consultas.Firmante, error) {
	p, err := d.svc.GetByEmail(ctx, email)
	if err != nil {
		return consultas.Firmante{}, fmt.Errorf("buscar profesional %s: %w", email, err)
	}
	return consultas.Firmante{ID: p.ID, Nombre: p.NombreCompleto(), Email: p.Email}, nil
}

func (d *Directorio) AjustarContadores(ctx context.Context, profesionalID string, deltaActivos, deltaResueltos int) error {
	if err := d.svc.AjustarContadores(ctx, profesionalID, deltaActivos, deltaResueltos); err != nil {
		return fmt.Errorf("ajustar contadores %s: %w", profesionalID, err)
	}
	return nil
}
