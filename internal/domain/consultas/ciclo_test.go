package consultas

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestTransition_Happy_ConNota(t *testing.T) {
	f := newFixture()
	f.repo.put("c1", docConsulta(EstadoPendiente))

	got, err := f.svc.Transition(context.Background(), "c1", EstadoEnProceso, actorOperador, "  llamó la familia ", TransitionOptions{})
	require.NoError(t, err)

	assert.Equal(t, EstadoEnProceso, got.Estado)
	require.Len(t, got.HistoricoEstados, 1)
	h := got.HistoricoEstados[0]
	assert.Equal(t, EstadoEnProceso, h.Estado)
	assert.Equal(t, "Operadora", h.Usuario)
	assert.Equal(t, "llamó la familia", h.Nota)
	assert.True(t, fixedNow.Equal(h.Fecha))
	require.Len(t, got.Observaciones, 1)
	assert.Equal(t, "llamó la familia", got.Observaciones[0].Nota)

	stored := f.repo.stored(t, "c1")
	assert.Equal(t, EstadoEnProceso, stored.Estado)
	assert.Len(t, stored.HistoricoEstados, 1)
	assert.Empty(t, f.dir.ajustes, "pendiente -> en_proceso no mueve contadores")
	assert.Equal(t, []string{EventoTransicion}, f.pub.tipos())
}

func TestTransition_SinNotaNoAgregaObservacion(t *testing.T) {
	f := newFixture()
	f.repo.put("c1", docConsulta(EstadoPendiente))

	got, err := f.svc.Transition(context.Background(), "c1", EstadoNotificado, actorAdmin, "   ", TransitionOptions{})
	require.NoError(t, err)
	assert.Empty(t, got.Observaciones)
	assert.Empty(t, got.HistoricoEstados[0].Nota)
}

func TestTransition_RequierePermiso(t *testing.T) {
	f := newFixture()
	f.repo.put("c1", docConsulta(EstadoPendiente))

	_, err := f.svc.Transition(context.Background(), "c1", EstadoEnProceso, actorLectura, "", TransitionOptions{})
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "no_autorizado", Codigo(err))
	assert.Equal(t, 0, f.repo.updates)
}

func TestTransition_EntradaInvalida(t *testing.T) {
	f := newFixture()
	f.repo.put("c1", docConsulta(EstadoPendiente))

	_, err := f.svc.Transition(context.Background(), "c1", Estado("borrado"), actorAdmin, "", TransitionOptions{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Transition(context.Background(), "  ", EstadoEnProceso, actorAdmin, "", TransitionOptions{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Transition(context.Background(), "no-existe", EstadoEnProceso, actorAdmin, "", TransitionOptions{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransition_TerminalYMismoEstado(t *testing.T) {
	f := newFixture()
	f.repo.put("cerrada", docConsulta(EstadoCerrado))
	f.repo.put("archivada", docConsulta(EstadoArchivado))
	f.repo.put("pend", docConsulta(EstadoPendiente))

	for _, tc := range []struct {
		id    string
		nuevo Estado
	}{
		{"cerrada", EstadoPendiente},
		{"archivada", EstadoEnProceso},
		{"pend", EstadoPendiente},
	} {
		_, err := f.svc.Transition(context.Background(), tc.id, tc.nuevo, actorAdmin, "", TransitionOptions{})
		assert.ErrorIs(t, err, ErrInvalidTransition, tc.id)
	}
	assert.Equal(t, 0, f.repo.updates)
}

func TestTransition_FirmadaEsInmutable(t *testing.T) {
	f := newFixture()
	d := docConsulta(EstadoResuelto)
	d[CampoFirmaDigital] = firmaExistente()
	f.repo.put("c1", d)

	for _, nuevo := range []Estado{EstadoPendiente, EstadoEnProceso, EstadoNotificado, EstadoCerrado, EstadoArchivado} {
		_, err := f.svc.Transition(context.Background(), "c1", nuevo, actorAB123, "", TransitionOptions{})
		require.ErrorIs(t, err, ErrSignedImmutable, nuevo)

		var rej *Rechazo
		require.True(t, errors.As(err, &rej))
		assert.Equal(t, EstadoResuelto, rej.EstadoActual)
		assert.Equal(t, nuevo, rej.EstadoSolicitado)
	}

	stored := f.repo.stored(t, "c1")
	assert.Equal(t, EstadoResuelto, stored.Estado)
	assert.True(t, stored.Firmada())
	assert.Empty(t, stored.HistoricoEstados)
	assert.Empty(t, f.pub.tipos())
}

func TestTransition_AnulacionConfirmada(t *testing.T) {
	f := newFixture()
	d := docConsulta(EstadoResuelto)
	d[CampoFirmaDigital] = firmaExistente()
	f.repo.put("c1", d)

	got, err := f.svc.Transition(context.Background(), "c1", EstadoEnProceso, actorAdmin, "reabre", TransitionOptions{ConfirmarAnulacion: true})
	require.NoError(t, err)

	assert.Equal(t, EstadoEnProceso, got.Estado)
	assert.Nil(t, got.FirmaDigital)
	require.Len(t, got.Observaciones, 2)
	anulacion := got.Observaciones[0].Nota
	assert.True(t, strings.HasPrefix(anulacion, "[FIRMA ANULADA]"))
	assert.Contains(t, anulacion, "Dra. Ana Bravo")
	assert.Contains(t, anulacion, "AB123")
	assert.Contains(t, anulacion, "1/5/2024, 09:00:00")
	assert.Contains(t, anulacion, "Hash: abc123")
	assert.Equal(t, "reabre", got.Observaciones[1].Nota)

	stored := f.repo.stored(t, "c1")
	assert.Nil(t, stored.FirmaDigital)
	assert.Equal(t, EstadoEnProceso, stored.Estado)

	assert.Equal(t, []ajuste{{"AB123", 1, -1}}, f.dir.ajustes)
	assert.Equal(t, []string{EventoTransicion, EventoFirmaAnulada}, f.pub.tipos())
}

func TestTransition_SoloElAsignadoResuelve(t *testing.T) {
	f := newFixture()
	f.repo.put("c1", docConsulta(EstadoEnProceso))

	_, err := f.svc.Transition(context.Background(), "c1", EstadoResuelto, actorOperador, "", TransitionOptions{})
	require.ErrorIs(t, err, ErrNotOwner)

	// otros estados sí los puede mover cualquiera con permiso
	_, err = f.svc.Transition(context.Background(), "c1", EstadoNotificado, actorOperador, "", TransitionOptions{})
	require.NoError(t, err)

	got, err := f.svc.Transition(context.Background(), "c1", EstadoResuelto, actorAB123, "", TransitionOptions{})
	require.NoError(t, err)
	assert.Equal(t, EstadoResuelto, got.Estado)
	assert.Equal(t, "AB123", got.HistoricoEstados[len(got.HistoricoEstados)-1].ProfesionalID)
	assert.Equal(t, []ajuste{{"AB123", -1, 1}}, f.dir.ajustes)
}

func TestTransition_AsignadoPorEmail(t *testing.T) {
	f := newFixture()
	d := docConsulta(EstadoEnProceso)
	delete(d, "profesionalAsignado")
	d["profesionalEmail"] = "ANA@cic.test"
	f.repo.put("c1", d)

	porEmail := actorAB123
	porEmail.ProfesionalID = ""
	_, err := f.svc.Transition(context.Background(), "c1", EstadoResuelto, porEmail, "", TransitionOptions{})
	require.NoError(t, err)
	assert.Equal(t, []ajuste{{"AB123", -1, 1}}, f.dir.ajustes, "el directorio resuelve el email")
}

func TestTransition_SinAsignarCualquieraResuelve(t *testing.T) {
	f := newFixture()
	d := docConsulta(EstadoEnProceso)
	delete(d, "profesionalAsignado")
	f.repo.put("c1", d)

	_, err := f.svc.Transition(context.Background(), "c1", EstadoResuelto, actorOperador, "", TransitionOptions{})
	require.NoError(t, err)
	assert.Empty(t, f.dir.ajustes, "sin profesional se omite la sincronización")
}

func TestTransition_ContadoresNoRompenLaOperacion(t *testing.T) {
	f := newFixture()
	f.dir.ajusteErr = errors.New("directorio caído")
	f.repo.put("c1", docConsulta(EstadoEnProceso))

	got, err := f.svc.Transition(context.Background(), "c1", EstadoResuelto, actorAB123, "", TransitionOptions{})
	require.NoError(t, err)
	assert.Equal(t, EstadoResuelto, got.Estado)
	assert.Equal(t, EstadoResuelto, f.repo.stored(t, "c1").Estado)
}

func TestTransition_ContadoresViaDirectorio(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := NewMockDirectorio(ctrl)
	dir.EXPECT().AjustarContadores(gomock.Any(), "AB123", -1, 1).Return(nil).Times(1)

	repo := newTestRepo(func() time.Time { return fixedNow })
	repo.put("c1", docConsulta(EstadoEnProceso))
	svc := NewService(repo, dir)

	_, err := svc.Transition(context.Background(), "c1", EstadoResuelto, actorAB123, "", TransitionOptions{})
	require.NoError(t, err)
}

func TestTransition_GuardOcupado(t *testing.T) {
	f := newFixture(WithGuard(busyGuard{}))
	f.repo.put("c1", docConsulta(EstadoPendiente))

	_, err := f.svc.Transition(context.Background(), "c1", EstadoEnProceso, actorAdmin, "", TransitionOptions{})
	require.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, "operacion_en_curso", Codigo(err))
	assert.Equal(t, 0, f.repo.updates)
}

func TestTransition_StoreCaido(t *testing.T) {
	f := newFixture()
	f.repo.put("c1", docConsulta(EstadoPendiente))
	f.repo.updateErr = errRepoDown

	_, err := f.svc.Transition(context.Background(), "c1", EstadoEnProceso, actorAdmin, "", TransitionOptions{})
	require.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, errRepoDown)
	assert.Equal(t, "almacenamiento_no_disponible", Codigo(err))
	assert.Empty(t, f.pub.tipos())
}

func TestTransition_ConflictoSePropaga(t *testing.T) {
	f := newFixture()
	f.repo.put("c1", docConsulta(EstadoPendiente))
	f.repo.updateErr = ErrConflict

	_, err := f.svc.Transition(context.Background(), "c1", EstadoEnProceso, actorAdmin, "", TransitionOptions{})
	require.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrStoreUnavailable)
}

func TestEvaluarTransicion_Orden(t *testing.T) {
	firmada := Normalizar(Documento{ID: "c", Datos: map[string]any{
		"estado":              "resuelto",
		"profesionalAsignado": "AB123",
		CampoFirmaDigital:     firmaExistente(),
	}})

	// el alcance del profesional se evalúa antes que la firma
	_, err := EvaluarTransicion(firmada, EstadoPendiente, actorZZ999, TransitionOptions{ConfirmarAnulacion: true})
	assert.ErrorIs(t, err, ErrUnauthorized)

	// la inmutabilidad se evalúa antes que la propiedad
	_, err = EvaluarTransicion(firmada, EstadoPendiente, actorOperador, TransitionOptions{})
	assert.ErrorIs(t, err, ErrSignedImmutable)

	anula, err := EvaluarTransicion(firmada, EstadoPendiente, actorOperador, TransitionOptions{ConfirmarAnulacion: true})
	require.NoError(t, err)
	assert.True(t, anula)

	_, err = EvaluarTransicion(firmada, EstadoResuelto, actorAB123, TransitionOptions{})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransition_ProfesionalFueraDeAlcance(t *testing.T) {
	f := newFixture()
	firmada := docConsulta(EstadoResuelto)
	firmada[CampoFirmaDigital] = firmaExistente()
	f.repo.put("c1", firmada)

	sinAsignar := docConsulta(EstadoPendiente)
	delete(sinAsignar, "profesionalAsignado")
	f.repo.put("c2", sinAsignar)

	for _, tc := range []struct {
		name  string
		id    string
		nuevo Estado
	}{
		{"anular firma ajena", "c1", EstadoArchivado},
		{"reabrir caso ajeno", "c1", EstadoEnProceso},
		{"resolver caso ajeno", "c1", EstadoResuelto},
		{"caso sin asignar", "c2", EstadoEnProceso},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Transition(context.Background(), tc.id, tc.nuevo, actorZZ999, "", TransitionOptions{ConfirmarAnulacion: true})
			require.ErrorIs(t, err, ErrUnauthorized)
			assert.Equal(t, "no_autorizado", Codigo(err))

			var r *Rechazo
			require.True(t, errors.As(err, &r))
			assert.Equal(t, tc.nuevo, r.EstadoSolicitado)
			assert.Equal(t, "u-zz", r.ActorID)
		})
	}

	// nada cambió: la firma de AB123 sigue vigente
	stored := f.repo.stored(t, "c1")
	assert.Equal(t, EstadoResuelto, stored.Estado)
	require.NotNil(t, stored.FirmaDigital)
	assert.Equal(t, 0, f.repo.updates)
	assert.Empty(t, f.dir.ajustes)
	assert.Empty(t, f.pub.tipos())

	// el asignado sí puede anular con confirmación
	got, err := f.svc.Transition(context.Background(), "c1", EstadoEnProceso, actorAB123, "", TransitionOptions{ConfirmarAnulacion: true})
	require.NoError(t, err)
	assert.Nil(t, got.FirmaDigital)
}
