package iplookup

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"cic-consultas/internal/platform/httpclient"
	"cic-consultas/internal/ports/iplookup"
)

var ErrInvalidIP = errors.New("iplookup: respuesta sin IP válida")

// Ipify consulta un servicio tipo api.ipify.org (`?format=json` => {"ip": "..."}).
type Ipify struct {
	client *httpclient.Client
}

func NewIpify(baseURL string, timeout time.Duration) (*Ipify, error) {
	c, err := httpclient.New(baseURL, timeout, httpclient.WithUserAgent("cic-consultas"))
	if err != nil {
		return nil, err
	}
	return &Ipify{client: c}, nil
}

var _ iplookup.Resolver = (*Ipify)(nil)

func (r *Ipify) Resolve(ctx context.Context) (string, error) {
	var out struct {
		IP string `json:"ip"`
	}
	if err := r.client.GetJSON(ctx, "/?format=json", &out); err != nil {
		return "", err
	}
	ip := strings.TrimSpace(out.IP)
	if net.ParseIP(ip) == nil {
		return "", ErrInvalidIP
	}
	return ip, nil
}
