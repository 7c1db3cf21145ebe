package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"cic-consultas/internal/domain/profesionales"
)

type profesionalRepo struct {
	mu   sync.RWMutex
	byID map[string]profesionales.Profesional
}

func NewProfesionalRepo() profesionales.Repository {
	return &profesionalRepo{
		byID: make(map[string]profesionales.Profesional),
	}
}

func (r *profesionalRepo) Create(ctx context.Context, p profesionales.Profesional) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("profesional id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return profesionales.ErrAlreadyExists
	}
	for _, other := range r.byID {
		if other.Email == p.Email {
			return profesionales.ErrAlreadyExists
		}
	}
	r.byID[p.ID] = p
	return nil
}

func (r *profesionalRepo) Update(ctx context.Context, p profesionales.Profesional) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, exists := r.byID[p.ID]
	if !exists {
		return profesionales.ErrNotFound
	}
	// los contadores sólo cambian vía AjustarContadores
	p.CasosActivos = cur.CasosActivos
	p.CasosResueltos = cur.CasosResueltos
	r.byID[p.ID] = p
	return nil
}

func (r *profesionalRepo) GetByID(ctx context.Context, id string) (profesionales.Profesional, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return profesionales.Profesional{}, profesionales.ErrNotFound
	}
	return p, nil
}

func (r *profesionalRepo) GetByEmail(ctx context.Context, email string) (profesionales.Profesional, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, p := range r.byID {
		if p.Email == email {
			return p, nil
		}
	}
	return profesionales.Profesional{}, profesionales.ErrNotFound
}

func (r *profesionalRepo) List(ctx context.Context) ([]profesionales.Profesional, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]profesionales.Profesional, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}

	// Orden estable por apellido, nombre
	sort.Slice(out, func(i, j int) bool {
		if out[i].Apellido != out[j].Apellido {
			return out[i].Apellido < out[j].Apellido
		}
		return out[i].Nombre < out[j].Nombre
	})
	return out, nil
}

func (r *profesionalRepo) AjustarContadores(ctx context.Context, id string, deltaActivos, deltaResueltos int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return profesionales.ErrNotFound
	}
	p.CasosActivos += deltaActivos
	p.CasosResueltos += deltaResueltos
	r.byID[id] = p
	return nil
}
