// Package docs registra la especificación Swagger de la API.
// Regenerar con: swag init -g cmd/api/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/consultas": {
            "get": {
                "description": "Página de consultas ordenada por numeroConsulta desc (createdAt desc si el store no lo soporta). Navegación con cursor; pagina=N reconstruye desde la primera.",
                "produces": ["application/json"],
                "tags": ["consultas"],
                "summary": "Listar consultas (paginado)",
                "parameters": [
                    {"type": "string", "description": "Cursor opaco devuelto en siguiente", "name": "cursor", "in": "query"},
                    {"type": "integer", "description": "Número de página a reconstruir", "name": "pagina", "in": "query"},
                    {"type": "string", "description": "Texto libre", "name": "q", "in": "query"},
                    {"type": "string", "name": "estado", "in": "query"},
                    {"type": "string", "name": "tipo", "in": "query"},
                    {"type": "string", "name": "prioridad", "in": "query"},
                    {"type": "string", "name": "profesional", "in": "query"},
                    {"type": "boolean", "name": "archivados", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/consultas.paginaResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/consultas.errorResponse"}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/consultas.errorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["consultas"],
                "summary": "Registrar consulta",
                "parameters": [
                    {"description": "Datos de la consulta", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/consultas.createConsultaRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/consultas.consultaResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/consultas.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/consultas.errorResponse"}}
                }
            }
        },
        "/consultas/{consultaID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["consultas"],
                "summary": "Obtener consulta",
                "parameters": [
                    {"type": "string", "description": "ID de la consulta", "name": "consultaID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/consultas.consultaResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/consultas.errorResponse"}}
                }
            }
        },
        "/consultas/{consultaID}/estado": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["consultas"],
                "summary": "Cambiar estado",
                "parameters": [
                    {"type": "string", "name": "consultaID", "in": "path", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/consultas.transitionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/consultas.consultaResponse"}},
                    "403": {"description": "no_autorizado / no_propietario", "schema": {"$ref": "#/definitions/consultas.errorResponse"}},
                    "409": {"description": "firma_inmutable / transicion_invalida / operacion_en_curso / conflicto", "schema": {"$ref": "#/definitions/consultas.errorResponse"}}
                }
            }
        },
        "/consultas/{consultaID}/firma": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["consultas"],
                "summary": "Firmar consulta resuelta",
                "parameters": [
                    {"type": "string", "name": "consultaID", "in": "path", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/consultas.signRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/consultas.consultaResponse"}},
                    "401": {"description": "credencial_invalida", "schema": {"$ref": "#/definitions/consultas.errorResponse"}},
                    "403": {"description": "no_autorizado", "schema": {"$ref": "#/definitions/consultas.errorResponse"}},
                    "409": {"description": "no_resuelta / ya_firmada", "schema": {"$ref": "#/definitions/consultas.errorResponse"}}
                }
            }
        },
        "/profesionales": {
            "get": {
                "produces": ["application/json"],
                "tags": ["profesionales"],
                "summary": "Listar profesionales",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["profesionales"],
                "summary": "Alta de profesional",
                "responses": {
                    "201": {"description": "Created"},
                    "403": {"description": "forbidden", "schema": {"type": "string"}},
                    "409": {"description": "profesional already exists", "schema": {"type": "string"}}
                }
            }
        },
        "/profesionales/{profesionalID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["profesionales"],
                "summary": "Obtener profesional",
                "parameters": [{"type": "string", "name": "profesionalID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "not found"}}
            },
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["profesionales"],
                "summary": "Editar profesional",
                "parameters": [{"type": "string", "name": "profesionalID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "forbidden"}}
            }
        },
        "/me/permisos": {
            "get": {
                "produces": ["application/json"],
                "tags": ["acceso"],
                "summary": "Permisos del usuario actual",
                "responses": {"200": {"description": "OK"}, "401": {"description": "unauthorized"}}
            }
        }
    },
    "definitions": {
        "consultas.createConsultaRequest": {
            "type": "object",
            "properties": {
                "persona_nombre": {"type": "string"},
                "persona_dni": {"type": "string"},
                "persona_telefono": {"type": "string"},
                "persona_edad": {"type": "string"},
                "motivo": {"type": "string"},
                "descripcion": {"type": "string"},
                "tipo": {"type": "string", "enum": ["espontanea", "derivacion"]},
                "prioridad": {"type": "string", "enum": ["baja", "media", "alta", "urgente"]},
                "profesional_asignado": {"type": "string"},
                "profesional_nombre": {"type": "string"},
                "profesional_email": {"type": "string"}
            }
        },
        "consultas.transitionRequest": {
            "type": "object",
            "properties": {
                "estado": {"type": "string", "enum": ["pendiente", "en_proceso", "notificado", "resuelto", "cerrado", "archivado"]},
                "nota": {"type": "string"},
                "confirmar_anulacion": {"type": "boolean"}
            }
        },
        "consultas.signRequest": {
            "type": "object",
            "properties": {"password": {"type": "string"}}
        },
        "consultas.firmaResponse": {
            "type": "object",
            "properties": {
                "profesional": {"type": "string"},
                "profesional_id": {"type": "string"},
                "profesional_email": {"type": "string"},
                "timestamp": {"type": "string"},
                "hash": {"type": "string"},
                "ip_address": {"type": "string"},
                "user_agent": {"type": "string"},
                "verificado": {"type": "boolean"}
            }
        },
        "consultas.consultaResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "numero_consulta": {"type": "integer"},
                "persona_nombre": {"type": "string"},
                "estado": {"type": "string"},
                "estado_label": {"type": "string"},
                "prioridad": {"type": "string"},
                "tipo": {"type": "string"},
                "profesional_asignado": {"type": "string"},
                "firma_digital": {"$ref": "#/definitions/consultas.firmaResponse"},
                "puede_firmar": {"type": "boolean"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "consultas.paginaResponse": {
            "type": "object",
            "properties": {
                "pagina": {"type": "integer"},
                "orden": {"type": "string"},
                "siguiente": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/consultas.consultaResponse"}}
            }
        },
        "consultas.errorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "mensaje": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "CIC Consultas API",
	Description:      "Ciclo de vida de consultas del Centro Integrador Comunitario: registro, cambios de estado y firma digital.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
