package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Traducción de errores del driver a errores de dominio.
// Los errores de contexto pasan tal cual.
type errMap struct {
	notFound  error
	duplicate error
	ordering  error
}

func (m errMap) mapError(err error, entity, id string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, id, err)
	}

	if errors.Is(err, pgx.ErrNoRows) && m.notFound != nil {
		return fmt.Errorf("%s %s: %w", entity, id, m.notFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if m.duplicate != nil {
				return fmt.Errorf("%s %s: %w", entity, id, m.duplicate)
			}
		case "42703", "42P01": // undefined_column, undefined_table
			if m.ordering != nil {
				return fmt.Errorf("%s: %w: %s", entity, m.ordering, pgErr.Message)
			}
		}
	}

	return fmt.Errorf("%s %s: %w", entity, id, err)
}
