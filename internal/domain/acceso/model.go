package acceso

import "strings"

// Rol del usuario autenticado.
// @Enum admin, operador, profesional, lectura
type Rol string

const (
	RolAdmin       Rol = "admin"
	RolOperador    Rol = "operador"
	RolProfesional Rol = "profesional"
	RolLectura     Rol = "lectura"
)

// Permiso es una acción habilitada por rol.
type Permiso string

const (
	PermisoVerPaneles          Permiso = "paneles:ver"
	PermisoExportar            Permiso = "exportar"
	PermisoCrearConsultas      Permiso = "consultas:crear"
	PermisoEditarConsultas     Permiso = "consultas:editar"
	PermisoDerivarConsultas    Permiso = "consultas:derivar"
	PermisoCambiarEstado       Permiso = "consultas:estado"
	PermisoFirmar              Permiso = "consultas:firmar"
	PermisoWhatsApp            Permiso = "whatsapp"
	PermisoCrearUsuarios       Permiso = "usuarios:crear"
	PermisoEditarUsuarios      Permiso = "usuarios:editar"
	PermisoEditarProfesionales Permiso = "profesionales:editar"
)

// Actor es quien ejecuta una operación. Se pasa explícito a cada servicio.
type Actor struct {
	UserID        string
	Rol           Rol
	ProfesionalID string
	Email         string
	Nombre        string
}

// ParseRol normaliza el rol; cualquier valor desconocido o vacío es lectura.
func ParseRol(s string) Rol {
	switch Rol(strings.ToLower(strings.TrimSpace(s))) {
	case RolAdmin:
		return RolAdmin
	case RolOperador:
		return RolOperador
	case RolProfesional:
		return RolProfesional
	default:
		return RolLectura
	}
}

// NombreVisible devuelve el nombre a registrar en histórico/observaciones.
func (a Actor) NombreVisible() string {
	switch {
	case strings.TrimSpace(a.Nombre) != "":
		return strings.TrimSpace(a.Nombre)
	case strings.TrimSpace(a.Email) != "":
		return strings.TrimSpace(a.Email)
	case strings.TrimSpace(a.UserID) != "":
		return strings.TrimSpace(a.UserID)
	default:
		return "Sistema"
	}
}
