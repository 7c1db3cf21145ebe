package profesionales

import (
	"strings"
	"time"

	"cic-consultas/internal/domain/acceso"
)

// Especialidad del profesional.
// @Enum medicina_general, pediatria, enfermeria, psicologia, trabajo_social, nutricion, odontologia, otra
type Especialidad string

// Profesional es un integrante del equipo que puede tener consultas asignadas.
type Profesional struct {
	ID     string // iniciales + DNI en mayúsculas, ej. "AB123"
	UserID string // usuario con el que inicia sesión

	Nombre       string
	Apellido     string
	DNI          string
	Especialidad Especialidad
	Matricula    string
	Email        string
	Telefono     string
	Horarios     string
	RolSistema   acceso.Rol

	// Hash de identidad, fijo desde el alta.
	Hash string
	// CredencialHash es bcrypt. Registros viejos pueden tener la clave en claro.
	CredencialHash string

	Activo         bool
	CasosActivos   int
	CasosResueltos int

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p Profesional) NombreCompleto() string {
	return strings.TrimSpace(p.Nombre + " " + p.Apellido)
}

// GenerarID arma el id a partir de las iniciales y el DNI.
func GenerarID(nombre, apellido, dni string) string {
	inicial := func(s string) string {
		for _, r := range strings.TrimSpace(s) {
			return string(r)
		}
		return ""
	}
	return strings.ToUpper(inicial(nombre) + inicial(apellido) + strings.TrimSpace(dni))
}
