package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"cic-consultas/internal/domain/consultas"
)

// ConsultaRepo guarda documentos crudos en memoria (dev y tests).
// Emula las garantías del store real: numeroConsulta secuencial y Update condicional.
type ConsultaRepo struct {
	mu   sync.RWMutex
	byID map[string]map[string]any
	seq  int64
	now  func() time.Time

	// sinOrdenNumero emula un store sin índice sobre numeroConsulta.
	sinOrdenNumero bool
}

type ConsultaRepoOption func(*ConsultaRepo)

// WithoutNumeroOrdering hace que List por numeroConsulta devuelva ErrOrderingUnsupported.
func WithoutNumeroOrdering() ConsultaRepoOption {
	return func(r *ConsultaRepo) { r.sinOrdenNumero = true }
}

func WithClock(now func() time.Time) ConsultaRepoOption {
	return func(r *ConsultaRepo) { r.now = now }
}

func NewConsultaRepo(opts ...ConsultaRepoOption) *ConsultaRepo {
	r := &ConsultaRepo{
		byID: make(map[string]map[string]any),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ consultas.Repository = (*ConsultaRepo)(nil)

func (r *ConsultaRepo) Create(ctx context.Context, d consultas.Documento) (consultas.Documento, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(d.ID) == "" {
		return consultas.Documento{}, errors.New("consulta id required")
	}
	if _, exists := r.byID[d.ID]; exists {
		return consultas.Documento{}, fmt.Errorf("%w: consulta %s ya existe", consultas.ErrConflict, d.ID)
	}

	datos := copiarMapa(d.Datos)
	r.seq++
	datos[consultas.CampoNumeroConsulta] = r.seq
	ahora := r.now().UTC()
	datos[consultas.CampoCreatedAt] = ahora
	datos[consultas.CampoUpdatedAt] = ahora

	r.byID[d.ID] = datos
	return consultas.Documento{ID: d.ID, Datos: copiarMapa(datos)}, nil
}

// Seed guarda un documento tal cual (sin numerar ni fechar). Sirve para cargar legacy.
func (r *ConsultaRepo) Seed(d consultas.Documento) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[d.ID] = copiarMapa(d.Datos)
	if n := consultas.Normalizar(d).NumeroConsulta; n != nil && *n > r.seq {
		r.seq = *n
	}
}

func (r *ConsultaRepo) GetByID(ctx context.Context, id string) (consultas.Documento, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	datos, ok := r.byID[id]
	if !ok {
		return consultas.Documento{}, consultas.ErrNotFound
	}
	return consultas.Documento{ID: id, Datos: copiarMapa(datos)}, nil
}

func (r *ConsultaRepo) List(ctx context.Context, q consultas.PageQuery) ([]consultas.Documento, error) {
	if q.Orden == consultas.OrdenNumero && r.sinOrdenNumero {
		return nil, fmt.Errorf("memory: %w: %s", consultas.ErrOrderingUnsupported, q.Orden)
	}
	if !q.Orden.Valido() {
		return nil, consultas.ErrInvalidInput
	}

	r.mu.RLock()
	type fila struct {
		clave consultas.Clave
		doc   consultas.Documento
	}
	filas := make([]fila, 0, len(r.byID))
	for id, datos := range r.byID {
		doc := consultas.Documento{ID: id, Datos: datos}
		filas = append(filas, fila{clave: consultas.ClaveDe(consultas.Normalizar(doc)), doc: doc})
	}
	r.mu.RUnlock()

	sort.Slice(filas, func(i, j int) bool {
		return consultas.Precede(q.Orden, filas[i].clave, filas[j].clave)
	})

	out := make([]consultas.Documento, 0, q.Limite)
	for _, f := range filas {
		if q.Despues != nil && !consultas.Precede(q.Orden, q.Despues.Clave(), f.clave) {
			continue
		}
		if q.Limite > 0 && len(out) >= q.Limite {
			break
		}
		out = append(out, consultas.Documento{ID: f.doc.ID, Datos: copiarMapa(f.doc.Datos)})
	}
	return out, nil
}

func (r *ConsultaRepo) Update(ctx context.Context, id string, c consultas.Cambios) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	datos, ok := r.byID[id]
	if !ok {
		return consultas.ErrNotFound
	}
	if !c.Cumple(consultas.Normalizar(consultas.Documento{ID: id, Datos: datos})) {
		return consultas.ErrConflict
	}
	r.byID[id] = copiarMapa(c.AplicarA(datos, r.now().UTC()))
	return nil
}

// Len devuelve la cantidad de documentos guardados.
func (r *ConsultaRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func copiarMapa(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copiarValor(v)
	}
	return out
}

func copiarValor(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copiarMapa(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = copiarValor(t[i])
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = copiarMapa(t[i])
		}
		return out
	default:
		return v
	}
}
