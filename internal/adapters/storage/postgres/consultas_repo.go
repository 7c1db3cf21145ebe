package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"cic-consultas/internal/domain/consultas"
)

const consultasTable = "consultas"

var consultaColumns = []string{"id", "numero_consulta", "data", "created_at", "updated_at"}

// createdExpr ordena los NULL como la fecha cero, igual que consultas.Precede.
const createdExpr = "COALESCE(created_at, '0001-01-01 00:00:00+00'::timestamptz)"

var consultaErrs = errMap{
	notFound:  consultas.ErrNotFound,
	duplicate: consultas.ErrConflict,
	ordering:  consultas.ErrOrderingUnsupported,
}

func builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// ConsultaRepo guarda cada consulta como JSONB. numero_consulta, created_at y
// updated_at viven en columnas propias y se mezclan en el documento al leer.
type ConsultaRepo struct {
	db  DB
	now func() time.Time
}

func NewConsultaRepo(db DB) *ConsultaRepo {
	return &ConsultaRepo{db: db, now: time.Now}
}

var _ consultas.Repository = (*ConsultaRepo)(nil)

func (r *ConsultaRepo) Create(ctx context.Context, d consultas.Documento) (consultas.Documento, error) {
	if strings.TrimSpace(d.ID) == "" {
		return consultas.Documento{}, errors.New("consulta id required")
	}
	raw, err := encodeDatos(d.Datos)
	if err != nil {
		return consultas.Documento{}, err
	}

	query, args, err := builder().
		Insert(consultasTable).
		Columns(consultaColumns...).
		Values(d.ID, sq.Expr("nextval('consultas_numero_seq')"), raw, sq.Expr("now()"), sq.Expr("now()")).
		Suffix("RETURNING " + strings.Join(consultaColumns, ", ")).
		ToSql()
	if err != nil {
		return consultas.Documento{}, fmt.Errorf("build insert: %w", err)
	}

	doc, err := scanDocumento(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return consultas.Documento{}, consultaErrs.mapError(err, "consulta", d.ID)
	}
	return doc, nil
}

func (r *ConsultaRepo) GetByID(ctx context.Context, id string) (consultas.Documento, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return consultas.Documento{}, consultas.ErrNotFound
	}

	query, args, err := builder().
		Select(consultaColumns...).
		From(consultasTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return consultas.Documento{}, fmt.Errorf("build select: %w", err)
	}

	doc, err := scanDocumento(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return consultas.Documento{}, consultaErrs.mapError(err, "consulta", id)
	}
	return doc, nil
}

func (r *ConsultaRepo) List(ctx context.Context, q consultas.PageQuery) ([]consultas.Documento, error) {
	if !q.Orden.Valido() {
		return nil, consultas.ErrInvalidInput
	}

	sel := builder().Select(consultaColumns...).From(consultasTable)
	if q.Orden == consultas.OrdenNumero {
		sel = sel.OrderBy("numero_consulta DESC NULLS LAST", createdExpr+" DESC", "id DESC")
	} else {
		sel = sel.OrderBy(createdExpr+" DESC", "id DESC")
	}
	if q.Despues != nil {
		sel = sel.Where(despuesDe(q.Orden, *q.Despues))
	}
	if q.Limite > 0 {
		sel = sel.Limit(uint64(q.Limite))
	}

	query, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, consultaErrs.mapError(err, "consultas", string(q.Orden))
	}
	defer rows.Close()

	out := make([]consultas.Documento, 0, q.Limite)
	for rows.Next() {
		doc, err := scanDocumento(rows)
		if err != nil {
			return nil, consultaErrs.mapError(err, "consultas", string(q.Orden))
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, consultaErrs.mapError(err, "consultas", string(q.Orden))
	}
	return out, nil
}

// despuesDe arma el predicado keyset: filas estrictamente posteriores al cursor.
func despuesDe(o consultas.Orden, c consultas.Cursor) sq.Sqlizer {
	porCreacion := sq.Or{
		sq.Expr(createdExpr+" < ?", c.CreatedAt),
		sq.And{sq.Expr(createdExpr+" = ?", c.CreatedAt), sq.Lt{"id": c.ID}},
	}
	if o != consultas.OrdenNumero {
		return porCreacion
	}
	if c.NumeroConsulta == nil {
		return sq.And{sq.Eq{"numero_consulta": nil}, porCreacion}
	}
	n := *c.NumeroConsulta
	return sq.Or{
		sq.Lt{"numero_consulta": n},
		sq.Eq{"numero_consulta": nil},
		sq.And{sq.Eq{"numero_consulta": n}, porCreacion},
	}
}

// Update toma la fila con FOR UPDATE, evalúa las condiciones y escribe el documento completo.
func (r *ConsultaRepo) Update(ctx context.Context, id string, c consultas.Cambios) error {
	sel, selArgs, err := builder().
		Select(consultaColumns...).
		From(consultasTable).
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return fmt.Errorf("build select: %w", err)
	}

	err = runInTx(ctx, r.db, func(tx pgx.Tx) error {
		actual, err := scanDocumento(tx.QueryRow(ctx, sel, selArgs...))
		if err != nil {
			return err
		}
		if !c.Cumple(consultas.Normalizar(actual)) {
			return consultas.ErrConflict
		}

		ahora := r.now().UTC()
		raw, err := encodeDatos(c.AplicarA(actual.Datos, ahora))
		if err != nil {
			return err
		}

		upd, args, err := builder().
			Update(consultasTable).
			Set("data", raw).
			Set("updated_at", ahora).
			Where(sq.Eq{"id": id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build update: %w", err)
		}
		_, err = tx.Exec(ctx, upd, args...)
		return err
	})
	if errors.Is(err, consultas.ErrConflict) {
		return err
	}
	return consultaErrs.mapError(err, "consulta", id)
}

// encodeDatos serializa el documento sin los campos que viven en columnas.
func encodeDatos(datos map[string]any) ([]byte, error) {
	limpio := make(map[string]any, len(datos))
	for k, v := range datos {
		switch k {
		case consultas.CampoNumeroConsulta, consultas.CampoCreatedAt, consultas.CampoUpdatedAt:
			continue
		}
		limpio[k] = v
	}
	raw, err := json.Marshal(limpio)
	if err != nil {
		return nil, fmt.Errorf("encode consulta: %w", err)
	}
	return raw, nil
}

func scanDocumento(row pgx.Row) (consultas.Documento, error) {
	var (
		id        string
		numero    *int64
		raw       []byte
		createdAt *time.Time
		updatedAt *time.Time
	)
	if err := row.Scan(&id, &numero, &raw, &createdAt, &updatedAt); err != nil {
		return consultas.Documento{}, err
	}

	datos := make(map[string]any)
	if len(raw) > 0 {
		dec := json.NewDecoder(strings.NewReader(string(raw)))
		dec.UseNumber()
		if err := dec.Decode(&datos); err != nil {
			return consultas.Documento{}, fmt.Errorf("decode consulta %s: %w", id, err)
		}
	}

	// las columnas mandan sobre lo que diga el JSON
	delete(datos, consultas.CampoNumeroConsulta)
	delete(datos, consultas.CampoCreatedAt)
	delete(datos, consultas.CampoUpdatedAt)
	if numero != nil {
		datos[consultas.CampoNumeroConsulta] = *numero
	}
	if createdAt != nil {
		datos[consultas.CampoCreatedAt] = createdAt.UTC()
	}
	if updatedAt != nil {
		datos[consultas.CampoUpdatedAt] = updatedAt.UTC()
	}
	return consultas.Documento{ID: id, Datos: datos}, nil
}
