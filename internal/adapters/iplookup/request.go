package iplookup

import (
	"context"
	"errors"

	"cic-consultas/internal/middleware"
	"cic-consultas/internal/ports/iplookup"
)

var ErrNoClientIP = errors.New("iplookup: request sin IP de cliente")

// FromRequest usa la IP del cliente HTTP que dejó middleware.ClientIP en el contexto.
type FromRequest struct{}

var _ iplookup.Resolver = FromRequest{}

func (FromRequest) Resolve(ctx context.Context) (string, error) {
	ip, ok := middleware.GetClientIP(ctx)
	if !ok || ip == "" {
		return "", ErrNoClientIP
	}
	return ip, nil
}
