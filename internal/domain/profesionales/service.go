package profesionales

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cic-consultas/internal/domain/acceso"
	"cic-consultas/internal/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("profesional not found")
	ErrAlreadyExists = errors.New("profesional already exists")
	ErrForbidden     = errors.New("forbidden")
	ErrBadCredential = errors.New("credencial inválida")
)

const minPasswordLen = 6

type Service struct {
	repo Repository
	log  logger.Logger
	now  func() time.Time

	cost int
}

func NewService(repo Repository, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
		cost: bcrypt.DefaultCost,
	}
}

type CreateInput struct {
	UserID       string
	Nombre       string
	Apellido     string
	DNI          string
	Especialidad string
	Matricula    string
	Email        string
	Password     string
	Telefono     string
	Horarios     string
	RolSistema   string
}

// Create da de alta un profesional. Sólo roles con permiso de crear usuarios.
func (s *Service) Create(ctx context.Context, actor acceso.Actor, in CreateInput) (Profesional, error) {
	if !actor.Puede(acceso.PermisoCrearUsuarios) {
		return Profesional{}, ErrForbidden
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	nombre := strings.TrimSpace(in.Nombre)
	apellido := strings.TrimSpace(in.Apellido)
	dni := strings.TrimSpace(in.DNI)
	if nombre == "" || apellido == "" || dni == "" || email == "" || strings.TrimSpace(in.Especialidad) == "" {
		return Profesional{}, ErrInvalidInput
	}
	if len(in.Password) < minPasswordLen {
		return Profesional{}, fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", ErrInvalidInput, minPasswordLen)
	}

	cred, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return Profesional{}, fmt.Errorf("hash credencial: %w", err)
	}

	rol := acceso.RolProfesional
	if strings.TrimSpace(in.RolSistema) != "" {
		rol = acceso.ParseRol(in.RolSistema)
	}

	now := s.now()
	id := GenerarID(nombre, apellido, dni)
	p := Profesional{
		ID:             id,
		UserID:         strings.TrimSpace(in.UserID),
		Nombre:         nombre,
		Apellido:       apellido,
		DNI:            dni,
		Especialidad:   Especialidad(strings.TrimSpace(in.Especialidad)),
		Matricula:      strings.TrimSpace(in.Matricula),
		Email:          email,
		Telefono:       strings.TrimSpace(in.Telefono),
		Horarios:       strings.TrimSpace(in.Horarios),
		RolSistema:     rol,
		Hash:           hashIdentidad(id, email, dni, now),
		CredencialHash: string(cred),
		Activo:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return Profesional{}, fmt.Errorf("%w: email %s", ErrAlreadyExists, email)
	} else if !errors.Is(err, ErrNotFound) {
		return Profesional{}, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return Profesional{}, err
	}

	s.log.Info("profesional creado", map[string]any{"profesional_id": p.ID, "actor_id": actor.UserID})
	return p, nil
}

func hashIdentidad(id, email, dni string, t time.Time) string {
	data := strings.Join([]string{
		"CIC_PROFESIONAL", id, email, dni,
		strconv.FormatInt(t.UnixMilli(), 10),
		uuid.NewString(),
	}, "|")
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

func (s *Service) GetByID(ctx context.Context, id string) (Profesional, error) {
	return s.repo.GetByID(ctx, strings.TrimSpace(id))
}

func (s *Service) GetByEmail(ctx context.Context, email string) (Profesional, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (s *Service) List(ctx context.Context) ([]Profesional, error) {
	return s.repo.List(ctx)
}

type UpdateInput struct {
	// Punteros: nil = no tocar.
	Especialidad *string
	Matricula    *string
	Telefono     *string
	Horarios     *string
	Activo       *bool
	Password     *string
}

func (s *Service) Update(ctx context.Context, actor acceso.Actor, id string, in UpdateInput) (Profesional, error) {
	if !actor.Puede(acceso.PermisoEditarProfesionales) {
		return Profesional{}, ErrForbidden
	}

	p, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Profesional{}, err
	}

	if in.Especialidad != nil {
		v := strings.TrimSpace(*in.Especialidad)
		if v == "" {
			return Profesional{}, ErrInvalidInput
		}
		p.Especialidad = Especialidad(v)
	}
	if in.Matricula != nil {
		p.Matricula = strings.TrimSpace(*in.Matricula)
	}
	if in.Telefono != nil {
		p.Telefono = strings.TrimSpace(*in.Telefono)
	}
	if in.Horarios != nil {
		p.Horarios = strings.TrimSpace(*in.Horarios)
	}
	if in.Activo != nil {
		p.Activo = *in.Activo
	}
	if in.Password != nil {
		if len(*in.Password) < minPasswordLen {
			return Profesional{}, fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", ErrInvalidInput, minPasswordLen)
		}
		cred, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.cost)
		if err != nil {
			return Profesional{}, fmt.Errorf("hash credencial: %w", err)
		}
		p.CredencialHash = string(cred)
	}

	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Profesional{}, err
	}
	return p, nil
}

// Verificar comprueba email + contraseña. Email desconocido, profesional inactivo
// o clave incorrecta devuelven ErrBadCredential sin distinguir.
func (s *Service) Verificar(ctx context.Context, email, password string) (Profesional, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Profesional{}, ErrBadCredential
	}

	p, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return Profesional{}, ErrBadCredential
	}
	if err != nil {
		return Profesional{}, err
	}
	if !p.Activo || p.CredencialHash == "" {
		return Profesional{}, ErrBadCredential
	}

	if !esBcrypt(p.CredencialHash) {
		// clave legacy en claro: se acepta una vez y se migra a bcrypt
		if subtle.ConstantTimeCompare([]byte(p.CredencialHash), []byte(password)) != 1 {
			return Profesional{}, ErrBadCredential
		}
		s.migrarCredencial(ctx, p, password)
		return p, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(p.CredencialHash), []byte(password)); err != nil {
		return Profesional{}, ErrBadCredential
	}
	return p, nil
}

func esBcrypt(h string) bool {
	return strings.HasPrefix(h, "$2a$") || strings.HasPrefix(h, "$2b$") || strings.HasPrefix(h, "$2y$")
}

func (s *Service) migrarCredencial(ctx context.Context, p Profesional, password string) {
	cred, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		s.log.Warn("no se pudo migrar credencial legacy", map[string]any{"profesional_id": p.ID, "error": err})
		return
	}
	p.CredencialHash = string(cred)
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		s.log.Warn("no se pudo migrar credencial legacy", map[string]any{"profesional_id": p.ID, "error": err})
		return
	}
	s.log.Info("credencial legacy migrada a bcrypt", map[string]any{"profesional_id": p.ID})
}

// AjustarContadores delega en el repo.
func (s *Service) AjustarContadores(ctx context.Context, id string, deltaActivos, deltaResueltos int) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	return s.repo.AjustarContadores(ctx, id, deltaActivos, deltaResueltos)
}
