package consultas

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"cic-consultas/internal/domain/acceso"
	"cic-consultas/internal/ports/iplookup"

	"github.com/mssola/useragent"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Credencial es lo que el profesional presenta para firmar.
type Credencial struct {
	Password  string
	UserAgent string
}

const isoMillis = "2006-01-02T15:04:05.000Z"

// HashFirma es el SHA-256 (hex) de profesionalId|consultaId|timestamp|nonce|userAgent.
// El nonce aleatorio hace que dos firmas nunca repitan hash.
func HashFirma(profesionalID, consultaID string, ts time.Time, nonce, userAgent string) string {
	data := strings.Join([]string{
		profesionalID,
		consultaID,
		ts.UTC().Format(isoMillis),
		nonce,
		userAgent,
	}, "|")
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// DescribirDispositivo resume un user agent como "Navegador en SO".
func DescribirDispositivo(ua string) string {
	if strings.TrimSpace(ua) == "" || ua == iplookup.Unknown {
		return "Dispositivo desconocido"
	}
	parsed := useragent.New(ua)
	browser, _ := parsed.Browser()
	os := parsed.OS()
	switch {
	case browser != "" && os != "":
		return browser + " en " + os
	case browser != "":
		return browser
	case os != "":
		return os
	default:
		return "Dispositivo desconocido"
	}
}

// PuedeFirmar indica si el actor podría firmar c ahora (sin verificar credencial).
func PuedeFirmar(c Consulta, actor acceso.Actor) bool {
	return c.Estado == EstadoResuelto &&
		!c.Firmada() &&
		actor.Puede(acceso.PermisoFirmar) &&
		EsAsignado(c, actor)
}

// Sign firma digitalmente una consulta resuelta.
// Precondiciones, en orden: resuelta, sin firma, actor autorizado, credencial válida.
func (s *Service) Sign(ctx context.Context, id string, actor acceso.Actor, cred Credencial) (_ Consulta, err error) {
	ctx, span := s.tracer.Start(ctx, "consultas.Sign")
	defer span.End()
	span.SetAttributes(attribute.String("consulta.id", id), attribute.String("actor.rol", string(actor.Rol)))

	start := time.Now()
	defer func() {
		s.registrarResultado("sign", start, err)
		if err != nil {
			span.SetStatus(codes.Error, Codigo(err))
		}
	}()

	id = strings.TrimSpace(id)
	if id == "" {
		return Consulta{}, ErrInvalidInput
	}

	release, err := s.tomar(ctx, id, actor.UserID)
	if err != nil {
		return Consulta{}, err
	}
	defer release()

	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Consulta{}, storeErr("get consulta", err)
	}
	c := Normalizar(doc)

	switch {
	case c.Estado != EstadoResuelto:
		return Consulta{}, rechazo(ErrNotResolved, c, "", actor.UserID)
	case c.Firmada():
		return Consulta{}, rechazo(ErrAlreadySigned, c, "", actor.UserID)
	case !actor.Puede(acceso.PermisoFirmar) || !EsAsignado(c, actor):
		return Consulta{}, rechazo(ErrUnauthorized, c, "", actor.UserID)
	}

	if strings.TrimSpace(cred.Password) == "" || s.dir == nil {
		return Consulta{}, rechazo(ErrBadCredential, c, "", actor.UserID)
	}
	firmante, err := s.dir.VerificarCredencial(ctx, actor.Email, cred.Password)
	if errors.Is(err, ErrBadCredential) {
		return Consulta{}, rechazo(ErrBadCredential, c, "", actor.UserID)
	}
	if err != nil {
		return Consulta{}, storeErr("verificar credencial", err)
	}

	profID := strings.TrimSpace(actor.ProfesionalID)
	if profID == "" {
		profID = firmante.ID
	}
	nombre := strings.TrimSpace(firmante.Nombre)
	if nombre == "" {
		nombre = actor.NombreVisible()
	}
	email := strings.ToLower(strings.TrimSpace(firmante.Email))
	if email == "" {
		email = strings.ToLower(strings.TrimSpace(actor.Email))
	}
	ua := strings.TrimSpace(cred.UserAgent)
	if ua == "" {
		ua = iplookup.Unknown
	}

	ts := s.now().UTC()
	hash := HashFirma(profID, id, ts, s.nonce(), ua)

	f := FirmaDigital{
		Profesional:      nombre,
		ProfesionalID:    profID,
		ProfesionalEmail: email,
		Timestamp:        ts,
		Hash:             hash,
		IPAddress:        s.resolverIP(ctx),
		UserAgent:        ua,
		Verificado:       true,
	}
	cambios := Cambios{
		Firma: &f,
		NuevasObservaciones: []Observacion{{
			Fecha:         ts,
			Usuario:       nombre,
			Nota:          "[FIRMA DIGITAL] Caso firmado. Hash: " + hash,
			ProfesionalID: profID,
		}},
		EsperaEstado:   EstadoResuelto,
		EsperaSinFirma: true,
	}

	if err := s.repo.Update(ctx, id, cambios); err != nil {
		return Consulta{}, storeErr("update consulta", err)
	}
	res := Normalizar(Documento{ID: id, Datos: cambios.AplicarA(doc.Datos, ts)})

	dispositivo := DescribirDispositivo(ua)
	s.met.IncFirma()
	s.log.Info("consulta firmada", map[string]any{
		"consulta_id":    id,
		"profesional_id": profID,
		"hash":           hash,
		"ip":             f.IPAddress,
		"dispositivo":    dispositivo,
	})
	s.publicar(ctx, Evento{
		Tipo:          EventoFirmada,
		ConsultaID:    id,
		Estado:        EstadoResuelto,
		ActorID:       actor.UserID,
		ProfesionalID: profID,
		Hash:          hash,
		Dispositivo:   dispositivo,
		Fecha:         ts,
	})

	return res, nil
}

// resolverIP nunca falla: sin resolver o con error devuelve "unknown".
func (s *Service) resolverIP(ctx context.Context) string {
	if s.ip == nil {
		return iplookup.Unknown
	}
	ip, err := s.ip.Resolve(ctx)
	if err != nil || strings.TrimSpace(ip) == "" {
		s.log.Debug("no se pudo resolver la IP del firmante", map[string]any{"error": err})
		return iplookup.Unknown
	}
	return strings.TrimSpace(ip)
}
