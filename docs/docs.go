// Package docs registers the OpenAPI description of the dashboard API with swag.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check endpoint",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.HealthResponse"}}
                }
            }
        },
        "/dataset": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dataset"],
                "summary": "Dataset information",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/entities.DatasetInfo"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/dataset/reload": {
            "post": {
                "produces": ["application/json"],
                "tags": ["dataset"],
                "summary": "Reload the dataset",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/entities.DatasetInfo"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/dashboard": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Dashboard view",
                "parameters": [
                    {"type": "string", "default": "daily", "description": "daily or hourly", "name": "granularity", "in": "query"},
                    {"type": "string", "default": "casual", "description": "casual or registered", "name": "user_type", "in": "query"},
                    {"type": "string", "description": "Start date YYYY-MM-DD", "name": "start", "in": "query"},
                    {"type": "string", "description": "End date YYYY-MM-DD", "name": "end", "in": "query"},
                    {"type": "boolean", "description": "Include the first rows of the filtered table", "name": "preview", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/charts": {
            "get": {
                "produces": ["application/json"],
                "tags": ["charts"],
                "summary": "Chart catalog",
                "parameters": [
                    {"type": "string", "description": "daily or hourly", "name": "granularity", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/entities.ChartInfo"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/charts/{name}": {
            "get": {
                "produces": ["image/svg+xml", "image/png"],
                "tags": ["charts"],
                "summary": "Render one chart",
                "parameters": [
                    {"type": "string", "description": "Chart name", "name": "name", "in": "path", "required": true},
                    {"type": "string", "default": "daily", "description": "daily or hourly", "name": "granularity", "in": "query"},
                    {"type": "string", "default": "casual", "description": "casual or registered", "name": "user_type", "in": "query"},
                    {"type": "string", "description": "Start date YYYY-MM-DD", "name": "start", "in": "query"},
                    {"type": "string", "description": "End date YYYY-MM-DD", "name": "end", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Chart image", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/exports": {
            "post": {
                "produces": ["application/json"],
                "tags": ["exports"],
                "summary": "Export the dashboard as an Excel workbook",
                "parameters": [
                    {"type": "string", "default": "daily", "description": "daily or hourly", "name": "granularity", "in": "query"},
                    {"type": "string", "default": "casual", "description": "casual or registered", "name": "user_type", "in": "query"},
                    {"type": "string", "description": "Start date YYYY-MM-DD", "name": "start", "in": "query"},
                    {"type": "string", "description": "End date YYYY-MM-DD", "name": "end", "in": "query"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/api.ExportResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/exports/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["exports"],
                "summary": "Export metadata",
                "parameters": [
                    {"type": "string", "description": "Export ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.ExportResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/exports/{id}/download": {
            "get": {
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["exports"],
                "summary": "Download export by ID",
                "parameters": [
                    {"type": "string", "description": "Export ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Excel file", "schema": {"type": "file"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"},
                "time": {"type": "string"}
            }
        },
        "api.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "version": {"type": "string"},
                "time": {"type": "string"},
                "services": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "api.ExportResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "granularity": {"type": "string"},
                "user_type": {"type": "string"},
                "period_start": {"type": "string"},
                "period_end": {"type": "string"},
                "rows": {"type": "integer"},
                "file_name": {"type": "string"},
                "file_size": {"type": "integer"},
                "checksum": {"type": "string"},
                "dataset_version": {"type": "string"},
                "download_url": {"type": "string"},
                "generated_at": {"type": "string"},
                "expires_at": {"type": "string"}
            }
        },
        "entities.DatasetInfo": {
            "type": "object",
            "properties": {
                "version": {"type": "string"},
                "loaded_at": {"type": "string"},
                "min_date": {"type": "string"},
                "max_date": {"type": "string"},
                "daily_rows": {"type": "integer"},
                "hourly_rows": {"type": "integer"}
            }
        },
        "entities.ChartInfo": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "title": {"type": "string"},
                "kind": {"type": "string"},
                "granularity": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "Bike Rental Dashboard API",
	Description:      "Descriptive statistics over the bike-sharing rental dataset.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
