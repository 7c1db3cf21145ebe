package consultas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCambios_Cumple(t *testing.T) {
	pend := Normalizar(Documento{ID: "a", Datos: map[string]any{"estado": "pendiente"}})
	firmada := Normalizar(Documento{ID: "b", Datos: map[string]any{"estado": "resuelto", CampoFirmaDigital: firmaExistente()}})

	assert.True(t, Cambios{}.Cumple(pend))
	assert.True(t, Cambios{EsperaEstado: EstadoPendiente, EsperaSinFirma: true}.Cumple(pend))
	assert.False(t, Cambios{EsperaEstado: EstadoEnProceso}.Cumple(pend))
	assert.False(t, Cambios{EsperaSinFirma: true}.Cumple(firmada))
	assert.True(t, Cambios{EsperaFirmaHash: "abc123"}.Cumple(firmada))
	assert.False(t, Cambios{EsperaFirmaHash: "otro"}.Cumple(firmada))
	assert.False(t, Cambios{EsperaFirmaHash: "abc123"}.Cumple(pend))
}

func TestCambios_AplicarA_AppendOnlyYSinMutar(t *testing.T) {
	legacy := map[string]any{"estado": "pendiente", "fecha": "raro", "usuario": "X", "extra": 1}
	datos := map[string]any{
		"estado":              "pendiente",
		CampoHistoricoEstados: []any{legacy},
		"otroCampo":           "se conserva",
	}
	nuevo := EstadoEnProceso

	out := Cambios{
		Estado:              &nuevo,
		NuevosHistorial:     []EntradaHistorial{{Estado: nuevo, Fecha: fixedNow, Usuario: "Admin"}},
		NuevasObservaciones: []Observacion{{Fecha: fixedNow, Usuario: "Admin", Nota: "hola"}},
	}.AplicarA(datos, fixedNow)

	// el original queda igual
	assert.Equal(t, "pendiente", datos["estado"])
	assert.Len(t, datos[CampoHistoricoEstados], 1)
	assert.NotContains(t, datos, CampoUpdatedAt)

	assert.Equal(t, "en_proceso", out["estado"])
	assert.Equal(t, "se conserva", out["otroCampo"])
	hist := out[CampoHistoricoEstados].([]any)
	require.Len(t, hist, 2)
	assert.Equal(t, legacy, hist[0], "las entradas existentes no se reescriben")
	assert.Equal(t, "2024-05-10T15:30:00Z", hist[1].(map[string]any)["fecha"])
	assert.Len(t, out[CampoObservaciones], 1)
	assert.Equal(t, fixedNow, out[CampoUpdatedAt])
}

func TestCambios_AplicarA_Firma(t *testing.T) {
	datos := map[string]any{"estado": "resuelto"}

	f := FirmaDigital{Profesional: "Dra", ProfesionalID: "AB123", Hash: "h", Timestamp: fixedNow, Verificado: true}
	firmado := Cambios{Firma: &f}.AplicarA(datos, fixedNow)
	got := Normalizar(Documento{ID: "x", Datos: firmado})
	require.NotNil(t, got.FirmaDigital)
	assert.Equal(t, f, *got.FirmaDigital)

	anulado := Cambios{AnularFirma: true}.AplicarA(firmado, fixedNow)
	v, ok := anulado[CampoFirmaDigital]
	assert.True(t, ok)
	assert.Nil(t, v)
	assert.Nil(t, Normalizar(Documento{ID: "x", Datos: anulado}).FirmaDigital)
}
