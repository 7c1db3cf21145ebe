package profesionales

import (
	"context"
	"errors"
	"testing"
	"time"

	"cic-consultas/internal/domain/acceso"
	"cic-consultas/internal/domain/consultas"

	"golang.org/x/crypto/bcrypt"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID    map[string]Profesional
	updates int
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Profesional{}}
}

func (r *testRepo) Create(ctx context.Context, p Profesional) error {
	if _, ok := r.byID[p.ID]; ok {
		return ErrAlreadyExists
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Update(ctx context.Context, p Profesional) error {
	if _, ok := r.byID[p.ID]; !ok {
		return ErrNotFound
	}
	r.byID[p.ID] = p
	r.updates++
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Profesional, error) {
	p, ok := r.byID[id]
	if !ok {
		return Profesional{}, ErrNotFound
	}
	return p, nil
}

func (r *testRepo) GetByEmail(ctx context.Context, email string) (Profesional, error) {
	for _, p := range r.byID {
		if p.Email == email {
			return p, nil
		}
	}
	return Profesional{}, ErrNotFound
}

func (r *testRepo) List(ctx context.Context) ([]Profesional, error) {
	out := make([]Profesional, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	return out, nil
}

func (r *testRepo) AjustarContadores(ctx context.Context, id string, da, dr int) error {
	p, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	p.CasosActivos += da
	p.CasosResueltos += dr
	r.byID[id] = p
	return nil
}

// -------------------------
// Helpers
// -------------------------

var admin = acceso.Actor{UserID: "u-admin", Rol: acceso.RolAdmin}

func newTestService(repo Repository) *Service {
	s := NewService(repo, nil)
	s.now = func() time.Time { return time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC) }
	s.cost = bcrypt.MinCost
	return s
}

func validInput() CreateInput {
	return CreateInput{
		Nombre:       "Ana",
		Apellido:     "Bravo",
		DNI:          "123",
		Especialidad: "medicina_general",
		Email:        " Ana@CIC.test ",
		Password:     "s3creta",
		Telefono:     "3794000000",
	}
}

// -------------------------
// Tests
// -------------------------

func TestCreate_OK(t *testing.T) {
	repo := newTestRepo()
	s := newTestService(repo)

	p, err := s.Create(context.Background(), admin, validInput())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.ID != "AB123" {
		t.Fatalf("expected id AB123, got %q", p.ID)
	}
	if p.Email != "ana@cic.test" {
		t.Fatalf("expected normalized email, got %q", p.Email)
	}
	if p.RolSistema != acceso.RolProfesional || !p.Activo {
		t.Fatalf("expected active profesional, got %+v", p)
	}
	if len(p.Hash) != 64 {
		t.Fatalf("expected sha256 identity hash, got %q", p.Hash)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.CredencialHash), []byte("s3creta")); err != nil {
		t.Fatalf("expected bcrypt credential: %v", err)
	}
	if _, ok := repo.byID["AB123"]; !ok {
		t.Fatalf("expected stored profesional")
	}
}

func TestCreate_Validaciones(t *testing.T) {
	s := newTestService(newTestRepo())

	if _, err := s.Create(context.Background(), acceso.Actor{UserID: "op", Rol: acceso.RolOperador}, validInput()); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	weak := validInput()
	weak.Password = "123"
	if _, err := s.Create(context.Background(), admin, weak); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for weak password, got %v", err)
	}

	noDNI := validInput()
	noDNI.DNI = " "
	if _, err := s.Create(context.Background(), admin, noDNI); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreate_EmailDuplicado(t *testing.T) {
	s := newTestService(newTestRepo())
	if _, err := s.Create(context.Background(), admin, validInput()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	otro := validInput()
	otro.DNI = "999"
	if _, err := s.Create(context.Background(), admin, otro); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestVerificar(t *testing.T) {
	s := newTestService(newTestRepo())
	if _, err := s.Create(context.Background(), admin, validInput()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	p, err := s.Verificar(context.Background(), "ANA@cic.test", "s3creta")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.ID != "AB123" {
		t.Fatalf("expected AB123, got %q", p.ID)
	}

	for _, tc := range []struct{ email, pass string }{
		{"ana@cic.test", "otra"},
		{"nadie@cic.test", "s3creta"},
		{"", "s3creta"},
		{"ana@cic.test", ""},
	} {
		if _, err := s.Verificar(context.Background(), tc.email, tc.pass); !errors.Is(err, ErrBadCredential) {
			t.Fatalf("%+v: expected ErrBadCredential, got %v", tc, err)
		}
	}
}

func TestVerificar_Inactivo(t *testing.T) {
	repo := newTestRepo()
	s := newTestService(repo)
	if _, err := s.Create(context.Background(), admin, validInput()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	off := false
	if _, err := s.Update(context.Background(), admin, "AB123", UpdateInput{Activo: &off}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if _, err := s.Verificar(context.Background(), "ana@cic.test", "s3creta"); !errors.Is(err, ErrBadCredential) {
		t.Fatalf("expected ErrBadCredential for inactive, got %v", err)
	}
}

func TestVerificar_LegacyMigraABcrypt(t *testing.T) {
	repo := newTestRepo()
	repo.byID["ZZ999"] = Profesional{ID: "ZZ999", Email: "zeta@cic.test", CredencialHash: "claro", Activo: true}
	s := newTestService(repo)

	if _, err := s.Verificar(context.Background(), "zeta@cic.test", "otra"); !errors.Is(err, ErrBadCredential) {
		t.Fatalf("expected ErrBadCredential, got %v", err)
	}
	if _, err := s.Verificar(context.Background(), "zeta@cic.test", "claro"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	migrated := repo.byID["ZZ999"]
	if !esBcrypt(migrated.CredencialHash) {
		t.Fatalf("expected migrated bcrypt hash, got %q", migrated.CredencialHash)
	}
	if _, err := s.Verificar(context.Background(), "zeta@cic.test", "claro"); err != nil {
		t.Fatalf("unexpected err after migration: %v", err)
	}
}

func TestUpdate_Patch(t *testing.T) {
	repo := newTestRepo()
	s := newTestService(repo)
	if _, err := s.Create(context.Background(), admin, validInput()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	mat := "MP 1234"
	pass := "nueva-clave"
	p, err := s.Update(context.Background(), acceso.Actor{UserID: "op", Rol: acceso.RolOperador}, "AB123", UpdateInput{Matricula: &mat, Password: &pass})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.Matricula != "MP 1234" || p.Telefono != "3794000000" {
		t.Fatalf("unexpected patch result: %+v", p)
	}
	if _, err := s.Verificar(context.Background(), "ana@cic.test", "nueva-clave"); err != nil {
		t.Fatalf("expected new password to verify: %v", err)
	}

	if _, err := s.Update(context.Background(), acceso.Actor{UserID: "ro", Rol: acceso.RolLectura}, "AB123", UpdateInput{Matricula: &mat}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	empty := " "
	if _, err := s.Update(context.Background(), admin, "AB123", UpdateInput{Especialidad: &empty}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDirectorio(t *testing.T) {
	repo := newTestRepo()
	s := newTestService(repo)
	if _, err := s.Create(context.Background(), admin, validInput()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	d := NewDirectorio(s)

	f, err := d.VerificarCredencial(context.Background(), "ana@cic.test", "s3creta")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if f.ID != "AB123" || f.Nombre != "Ana Bravo" || f.Email != "ana@cic.test" {
		t.Fatalf("unexpected firmante: %+v", f)
	}
	if _, err := d.VerificarCredencial(context.Background(), "ana@cic.test", "mala"); !errors.Is(err, consultas.ErrBadCredential) {
		t.Fatalf("expected consultas.ErrBadCredential, got %v", err)
	}

	byEmail, err := d.BuscarPorEmail(context.Background(), " ANA@cic.test ")
	if err != nil || byEmail.ID != "AB123" {
		t.Fatalf("expected AB123 by email, got %+v err=%v", byEmail, err)
	}
	if _, err := d.BuscarPorEmail(context.Background(), "nadie@cic.test"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := d.AjustarContadores(context.Background(), "AB123", 1, 0); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := d.AjustarContadores(context.Background(), "AB123", -1, 1); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := d.AjustarContadores(context.Background(), "AB123", -1, 0); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	p := repo.byID["AB123"]
	if p.CasosActivos != -1 || p.CasosResueltos != 1 {
		t.Fatalf("expected activos=-1 resueltos=1, got %d/%d", p.CasosActivos, p.CasosResueltos)
	}

	if err := d.AjustarContadores(context.Background(), "NOPE", 1, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGenerarID(t *testing.T) {
	if got := GenerarID(" ana ", "bravo", " 123 "); got != "AB123" {
		t.Fatalf("expected AB123, got %q", got)
	}
	if got := GenerarID("Ñandú", "", "1"); got != "Ñ1" {
		t.Fatalf("expected Ñ1, got %q", got)
	}
}
