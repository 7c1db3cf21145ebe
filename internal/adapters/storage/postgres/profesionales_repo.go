package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"cic-consultas/internal/domain/acceso"
	"cic-consultas/internal/domain/profesionales"
)

const profesionalesTable = "profesionales"

var profesionalColumns = []string{
	"id", "user_id",
	"nombre", "apellido", "dni", "especialidad", "matricula",
	"email", "telefono", "horarios", "rol_sistema",
	"hash", "credencial_hash", "activo",
	"casos_activos", "casos_resueltos",
	"created_at", "updated_at",
}

var profesionalErrs = errMap{
	notFound:  profesionales.ErrNotFound,
	duplicate: profesionales.ErrAlreadyExists,
}

type ProfesionalRepo struct {
	db DB
}

func NewProfesionalRepo(db DB) *ProfesionalRepo {
	return &ProfesionalRepo{db: db}
}

var _ profesionales.Repository = (*ProfesionalRepo)(nil)

func (r *ProfesionalRepo) Create(ctx context.Context, p profesionales.Profesional) error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("profesional id required")
	}

	query, args, err := builder().
		Insert(profesionalesTable).
		Columns(profesionalColumns...).
		Values(
			p.ID, p.UserID,
			p.Nombre, p.Apellido, p.DNI, string(p.Especialidad), p.Matricula,
			p.Email, p.Telefono, p.Horarios, string(p.RolSistema),
			p.Hash, p.CredencialHash, p.Activo,
			p.CasosActivos, p.CasosResueltos,
			p.CreatedAt, p.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return profesionalErrs.mapError(err, "profesional", p.ID)
}

// Update reescribe el perfil. Los contadores sólo cambian vía AjustarContadores.
func (r *ProfesionalRepo) Update(ctx context.Context, p profesionales.Profesional) error {
	query, args, err := builder().
		Update(profesionalesTable).
		Set("user_id", p.UserID).
		Set("nombre", p.Nombre).
		Set("apellido", p.Apellido).
		Set("dni", p.DNI).
		Set("especialidad", string(p.Especialidad)).
		Set("matricula", p.Matricula).
		Set("email", p.Email).
		Set("telefono", p.Telefono).
		Set("horarios", p.Horarios).
		Set("rol_sistema", string(p.RolSistema)).
		Set("credencial_hash", p.CredencialHash).
		Set("activo", p.Activo).
		Set("updated_at", p.UpdatedAt).
		Where(sq.Eq{"id": p.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return profesionalErrs.mapError(err, "profesional", p.ID)
	}
	if tag.RowsAffected() == 0 {
		return profesionales.ErrNotFound
	}
	return nil
}

func (r *ProfesionalRepo) GetByID(ctx context.Context, id string) (profesionales.Profesional, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return profesionales.Profesional{}, profesionales.ErrNotFound
	}
	return r.getOne(ctx, sq.Eq{"id": id}, id)
}

func (r *ProfesionalRepo) GetByEmail(ctx context.Context, email string) (profesionales.Profesional, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return profesionales.Profesional{}, profesionales.ErrNotFound
	}
	return r.getOne(ctx, sq.Expr("lower(email) = ?", email), email)
}

func (r *ProfesionalRepo) getOne(ctx context.Context, where sq.Sqlizer, key string) (profesionales.Profesional, error) {
	query, args, err := builder().
		Select(profesionalColumns...).
		From(profesionalesTable).
		Where(where).
		ToSql()
	if err != nil {
		return profesionales.Profesional{}, fmt.Errorf("build select: %w", err)
	}

	p, err := scanProfesional(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return profesionales.Profesional{}, profesionalErrs.mapError(err, "profesional", key)
	}
	return p, nil
}

func (r *ProfesionalRepo) List(ctx context.Context) ([]profesionales.Profesional, error) {
	query, args, err := builder().
		Select(profesionalColumns...).
		From(profesionalesTable).
		OrderBy("apellido ASC", "nombre ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, profesionalErrs.mapError(err, "profesionales", "list")
	}
	defer rows.Close()

	out := make([]profesionales.Profesional, 0)
	for rows.Next() {
		p, err := scanProfesional(rows)
		if err != nil {
			return nil, profesionalErrs.mapError(err, "profesionales", "list")
		}
		out = append(out, p)
	}
	return out, profesionalErrs.mapError(rows.Err(), "profesionales", "list")
}

// AjustarContadores suma los deltas en un solo UPDATE (incremento relativo).
func (r *ProfesionalRepo) AjustarContadores(ctx context.Context, id string, deltaActivos, deltaResueltos int) error {
	query, args, err := builder().
		Update(profesionalesTable).
		Set("casos_activos", sq.Expr("casos_activos + ?", deltaActivos)).
		Set("casos_resueltos", sq.Expr("casos_resueltos + ?", deltaResueltos)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return profesionalErrs.mapError(err, "profesional", id)
	}
	if tag.RowsAffected() == 0 {
		return profesionales.ErrNotFound
	}
	return nil
}

func scanProfesional(row pgx.Row) (profesionales.Profesional, error) {
	var (
		p            profesionales.Profesional
		especialidad string
		rol          string
	)
	err := row.Scan(
		&p.ID, &p.UserID,
		&p.Nombre, &p.Apellido, &p.DNI, &especialidad, &p.Matricula,
		&p.Email, &p.Telefono, &p.Horarios, &rol,
		&p.Hash, &p.CredencialHash, &p.Activo,
		&p.CasosActivos, &p.CasosResueltos,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return profesionales.Profesional{}, err
	}
	p.Especialidad = profesionales.Especialidad(especialidad)
	p.RolSistema = acceso.Rol(rol)
	return p, nil
}
