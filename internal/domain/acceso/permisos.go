package acceso

import (
	"sort"

	"cic-consultas/internal/ports/auth"
)

var comunes = []Permiso{PermisoVerPaneles, PermisoExportar}

// matriz rol -> permisos. lectura sólo tiene los comunes.
var matriz = map[Rol]map[Permiso]struct{}{
	RolAdmin: set(
		PermisoCrearConsultas, PermisoEditarConsultas, PermisoDerivarConsultas,
		PermisoCambiarEstado, PermisoWhatsApp,
		PermisoCrearUsuarios, PermisoEditarUsuarios, PermisoEditarProfesionales,
	),
	RolOperador: set(
		PermisoCrearConsultas, PermisoEditarConsultas, PermisoDerivarConsultas,
		PermisoCambiarEstado, PermisoWhatsApp, PermisoEditarProfesionales,
	),
	// La firma es exclusiva del panel profesional.
	RolProfesional: set(
		PermisoCrearConsultas, PermisoEditarConsultas, PermisoDerivarConsultas,
		PermisoCambiarEstado, PermisoWhatsApp, PermisoFirmar,
		PermisoEditarUsuarios, PermisoEditarProfesionales,
	),
	RolLectura: set(),
}

func set(ps ...Permiso) map[Permiso]struct{} {
	out := make(map[Permiso]struct{}, len(ps)+len(comunes))
	for _, p := range comunes {
		out[p] = struct{}{}
	}
	for _, p := range ps {
		out[p] = struct{}{}
	}
	return out
}

// Puede indica si el rol tiene el permiso. Rol desconocido => lectura.
func Puede(rol Rol, p Permiso) bool {
	perms, ok := matriz[rol]
	if !ok {
		perms = matriz[RolLectura]
	}
	_, ok = perms[p]
	return ok
}

func (a Actor) Puede(p Permiso) bool {
	return Puede(a.Rol, p)
}

// PermisosDe lista los permisos del rol, ordenados.
func PermisosDe(rol Rol) []Permiso {
	perms, ok := matriz[rol]
	if !ok {
		perms = matriz[RolLectura]
	}
	out := make([]Permiso, 0, len(perms))
	for p := range perms {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DesdeClaims arma el Actor a partir de los claims del token.
func DesdeClaims(c auth.Claims) Actor {
	return Actor{
		UserID:        c.UserID,
		Rol:           ParseRol(c.Role),
		ProfesionalID: c.ProfesionalID,
		Email:         c.Email,
		Nombre:        c.Nombre,
	}
}
