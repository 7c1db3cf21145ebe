package consultas

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"cic-consultas/internal/domain/acceso"
	"cic-consultas/internal/platform/lock"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoDown = errors.New("repo: connection refused")

type testRepo struct {
	mu   sync.Mutex
	byID map[string]map[string]any
	seq  int64
	now  func() time.Time

	sinOrdenNumero bool
	updateErr      error
	listCalls      []PageQuery
	updates        int
}

func newTestRepo(now func() time.Time) *testRepo {
	return &testRepo{byID: map[string]map[string]any{}, now: now}
}

func (r *testRepo) Create(ctx context.Context, d Documento) (Documento, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[d.ID]; ok {
		return Documento{}, ErrConflict
	}
	datos := cloneMap(d.Datos)
	r.seq++
	datos[CampoNumeroConsulta] = r.seq
	datos[CampoCreatedAt] = r.now().UTC()
	datos[CampoUpdatedAt] = r.now().UTC()
	r.byID[d.ID] = datos
	return Documento{ID: d.ID, Datos: cloneMap(datos)}, nil
}

func (r *testRepo) put(id string, datos map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[id] = cloneMap(datos)
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Documento, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	datos, ok := r.byID[id]
	if !ok {
		return Documento{}, ErrNotFound
	}
	return Documento{ID: id, Datos: cloneMap(datos)}, nil
}

func (r *testRepo) List(ctx context.Context, q PageQuery) ([]Documento, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.listCalls = append(r.listCalls, q)
	if q.Orden == OrdenNumero && r.sinOrdenNumero {
		return nil, ErrOrderingUnsupported
	}

	docs := make([]Documento, 0, len(r.byID))
	for id, datos := range r.byID {
		docs = append(docs, Documento{ID: id, Datos: cloneMap(datos)})
	}
	sort.Slice(docs, func(i, j int) bool {
		return Precede(q.Orden, ClaveDe(Normalizar(docs[i])), ClaveDe(Normalizar(docs[j])))
	})

	out := make([]Documento, 0, q.Limite)
	for _, d := range docs {
		if q.Despues != nil && !Precede(q.Orden, q.Despues.Clave(), ClaveDe(Normalizar(d))) {
			continue
		}
		if len(out) == q.Limite {
			break
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *testRepo) Update(ctx context.Context, id string, c Cambios) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.updateErr != nil {
		return r.updateErr
	}
	datos, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	if !c.Cumple(Normalizar(Documento{ID: id, Datos: datos})) {
		return ErrConflict
	}
	r.byID[id] = c.AplicarA(datos, r.now().UTC())
	r.updates++
	return nil
}

func (r *testRepo) stored(t *testing.T, id string) Consulta {
	t.Helper()
	doc, err := r.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("stored(%s): %v", id, err)
	}
	return Normalizar(doc)
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch t := v.(type) {
		case map[string]any:
			out[k] = cloneMap(t)
		case []any:
			out[k] = append([]any(nil), t...)
		default:
			out[k] = v
		}
	}
	return out
}

// -------------------------
// Test directorio
// -------------------------

type ajuste struct {
	profesionalID string
	activos       int
	resueltos     int
}

type testDir struct {
	mu        sync.Mutex
	users     map[string]Firmante // por email
	password  map[string]string
	ajustes   []ajuste
	ajusteErr error
}

func newTestDir() *testDir {
	return &testDir{users: map[string]Firmante{}, password: map[string]string{}}
}

func (d *testDir) add(f Firmante, password string) {
	d.users[f.Email] = f
	d.password[f.Email] = password
}

func (d *testDir) VerificarCredencial(ctx context.Context, email, password string) (Firmante, error) {
	f, ok := d.users[email]
	if !ok || d.password[email] != password {
		return Firmante{}, ErrBadCredential
	}
	return f, nil
}

func (d *testDir) BuscarPorEmail(ctx context.Context, email string) (Firmante, error) {
	f, ok := d.users[strings.ToLower(email)]
	if !ok {
		return Firmante{}, ErrNotFound
	}
	return f, nil
}

func (d *testDir) AjustarContadores(ctx context.Context, profesionalID string, da, dr int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ajusteErr != nil {
		return d.ajusteErr
	}
	d.ajustes = append(d.ajustes, ajuste{profesionalID, da, dr})
	return nil
}

// -------------------------
// Test publicador
// -------------------------

type testPub struct {
	mu      sync.Mutex
	eventos []Evento
}

func (p *testPub) Publicar(ctx context.Context, e Evento) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.eventos = append(p.eventos, e)
	return nil
}

func (p *testPub) tipos() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.eventos))
	for _, e := range p.eventos {
		out = append(out, e.Tipo)
	}
	return out
}

// -------------------------
// Guard que siempre está tomado
// -------------------------

type busyGuard struct{}

func (busyGuard) TryAcquire(context.Context, string) (lock.Release, error) {
	return nil, lock.ErrHeld
}

// -------------------------
// Helpers
// -------------------------

var fixedNow = time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)

type fixture struct {
	svc  *Service
	repo *testRepo
	dir  *testDir
	pub  *testPub
}

func newFixture(opts ...Option) fixture {
	now := func() time.Time { return fixedNow }
	repo := newTestRepo(now)
	dir := newTestDir()
	dir.add(Firmante{ID: "AB123", Nombre: "Dra. Ana Bravo", Email: "ana@cic.test"}, "s3creta")
	pub := &testPub{}

	svc := NewService(repo, dir, append([]Option{WithPublicador(pub)}, opts...)...)
	svc.now = now
	svc.nonce = func() string { return "nonce-fijo" }
	return fixture{svc: svc, repo: repo, dir: dir, pub: pub}
}

var (
	actorAdmin    = acceso.Actor{UserID: "u-admin", Rol: acceso.RolAdmin, Nombre: "Admin"}
	actorOperador = acceso.Actor{UserID: "u-op", Rol: acceso.RolOperador, Nombre: "Operadora"}
	actorLectura  = acceso.Actor{UserID: "u-ro", Rol: acceso.RolLectura}
	actorAB123    = acceso.Actor{UserID: "u-ab", Rol: acceso.RolProfesional, ProfesionalID: "AB123", Email: "ana@cic.test", Nombre: "Dra. Ana Bravo"}
	actorZZ999    = acceso.Actor{UserID: "u-zz", Rol: acceso.RolProfesional, ProfesionalID: "ZZ999", Email: "zeta@cic.test", Nombre: "Dr. Zeta"}
)

// docConsulta arma un documento mínimo con profesional AB123.
func docConsulta(estado Estado) map[string]any {
	return map[string]any{
		"personaNombre":       "Juan Pérez",
		"personaDni":          "30111222",
		"motivo":              "Control",
		"estado":              string(estado),
		"profesionalAsignado": "AB123",
		"profesionalNombre":   "Dra. Ana Bravo",
		CampoCreatedAt:        fixedNow.Add(-24 * time.Hour),
		CampoHistoricoEstados: []any{},
		CampoObservaciones:    []any{},
	}
}

func firmaExistente() map[string]any {
	return map[string]any{
		"profesional":      "Dra. Ana Bravo",
		"profesionalId":    "AB123",
		"profesionalEmail": "ana@cic.test",
		"timestamp":        "2024-05-01T12:00:00Z",
		"hash":             "abc123",
		"ipAddress":        "10.0.0.1",
		"userAgent":        "test",
		"verificado":       true,
	}
}

func ptr[T any](v T) *T { return &v }
