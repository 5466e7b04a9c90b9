package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Ward Roster API",
        "description": "Nurse roster scheduling, hour accounting and validation service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication and session management"},
        {"name": "Users", "description": "User administration"},
        {"name": "Schedules", "description": "Month roster views and edits"},
        {"name": "Exports", "description": "Asynchronous roster exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log in",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current user profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/{year}/{month}": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Assemble a month roster view",
                "parameters": [
                    {"name": "year", "in": "path", "required": true, "type": "integer"},
                    {"name": "month", "in": "path", "required": true, "type": "integer"},
                    {"name": "revision", "in": "query", "type": "string", "enum": ["primary", "actual"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ScheduleView"}},
                    "400": {"description": "Invalid target"}
                }
            },
            "put": {
                "tags": ["Schedules"],
                "summary": "Save the month roster",
                "parameters": [
                    {"name": "year", "in": "path", "required": true, "type": "integer"},
                    {"name": "month", "in": "path", "required": true, "type": "integer"},
                    {"name": "revision", "in": "query", "type": "string", "enum": ["primary", "actual"]},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/SaveScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "Saved", "schema": {"$ref": "#/definitions/ScheduleView"}},
                    "409": {"description": "Revision conflict"},
                    "422": {"description": "Malformed schedule"}
                }
            }
        },
        "/schedules/{year}/{month}/edits": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Apply a single roster edit",
                "parameters": [
                    {"name": "year", "in": "path", "required": true, "type": "integer"},
                    {"name": "month", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EditRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ScheduleView"}},
                    "400": {"description": "Invalid edit"}
                }
            }
        },
        "/schedules/{year}/{month}/undo": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Undo the last edit",
                "parameters": [
                    {"name": "year", "in": "path", "required": true, "type": "integer"},
                    {"name": "month", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ScheduleView"}},
                    "409": {"description": "Nothing to undo"}
                }
            }
        },
        "/schedules/{year}/{month}/redo": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Redo the last undone edit",
                "parameters": [
                    {"name": "year", "in": "path", "required": true, "type": "integer"},
                    {"name": "month", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ScheduleView"}},
                    "409": {"description": "Nothing to redo"}
                }
            }
        },
        "/schedules/{year}/{month}/import": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Import a month roster from CSV",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "year", "in": "path", "required": true, "type": "integer"},
                    {"name": "month", "in": "path", "required": true, "type": "integer"},
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "200": {"description": "Imported", "schema": {"$ref": "#/definitions/ImportResponse"}},
                    "400": {"description": "Unsupported or empty file"}
                }
            }
        },
        "/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue an export job",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ExportJobResponse"}}
                }
            }
        },
        "/exports/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ExportStatusResponse"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "401": {"description": "Expired or invalid token"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "ScheduleView": {
            "type": "object",
            "properties": {
                "schedule": {"type": "object"},
                "hours": {"type": "object"},
                "errors": {"type": "object"}
            }
        },
        "SaveScheduleRequest": {
            "type": "object",
            "properties": {
                "schedule": {"type": "object"}
            }
        },
        "EditRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["change_shift", "add_worker", "remove_worker", "update_norm", "toggle_frozen", "set_children", "set_extra_workers"]},
                "worker": {"type": "string"},
                "day": {"type": "integer"},
                "code": {"type": "string"},
                "kind": {"type": "string"},
                "contract": {"type": "string"},
                "norm": {"type": "integer"},
                "team": {"type": "string"},
                "value": {"type": "integer"}
            },
            "required": ["type"]
        },
        "ImportResponse": {
            "type": "object",
            "properties": {
                "month": {"type": "object"},
                "issues": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/ImportIssue"}
                }
            }
        },
        "ImportIssue": {
            "type": "object",
            "properties": {
                "row": {"type": "integer"},
                "column": {"type": "integer"},
                "message": {"type": "string"}
            }
        },
        "ExportRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["shift_table", "work_hours"]},
                "year": {"type": "integer"},
                "month": {"type": "integer"},
                "revision": {"type": "string", "enum": ["primary", "actual"]},
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            },
            "required": ["type", "year", "month", "revision", "format"]
        },
        "ExportJobResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "status": {"type": "string"},
                "progress": {"type": "integer"}
            }
        },
        "ExportStatusResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "status": {"type": "string"},
                "progress": {"type": "integer"},
                "resultUrl": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
