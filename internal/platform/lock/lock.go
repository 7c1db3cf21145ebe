// Package lock provee exclusión mutua por clave (una consulta a la vez).
// No espera: si la clave está tomada devuelve ErrHeld.
package lock

import (
	"context"
	"errors"
)

var ErrHeld = errors.New("lock: key held")

// Release libera la clave tomada. Es idempotente.
type Release func(ctx context.Context) error

// Guard toma una clave de forma exclusiva.
type Guard interface {
	TryAcquire(ctx context.Context, key string) (Release, error)
}
