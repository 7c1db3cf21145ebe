package iplookup

import "context"

// Unknown es el valor que se registra cuando no se pudo resolver la IP.
const Unknown = "unknown"

// Resolver obtiene la IP pública/cliente a registrar en una firma.
type Resolver interface {
	Resolve(ctx context.Context) (string, error)
}
