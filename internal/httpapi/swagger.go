//go:build swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

// openAPITemplate is the Swagger 2.0 document served at /swagger/doc.json.
const openAPITemplate = `{
  "swagger": "2.0",
  "info": {"title": "{{.Title}}", "description": "{{escape .Description}}", "version": "{{.Version}}"},
  "basePath": "{{.BasePath}}",
  "paths": {
    "/models": {"get": {"tags": ["models"], "summary": "List models", "produces": ["application/json"],
      "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ModelsResponse"}}}}},
    "/status": {"get": {"tags": ["status"], "summary": "Service status", "produces": ["application/json"],
      "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}}},
    "/predict": {"post": {"tags": ["predict"], "summary": "Predict topologies",
      "consumes": ["application/json"], "produces": ["application/json"],
      "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/PredictRequest"}}],
      "responses": {
        "200": {"description": "OK", "schema": {"type": "object"}},
        "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}},
        "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ErrorResponse"}},
        "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/ErrorResponse"}},
        "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/ErrorResponse"}}}}},
    "/healthz": {"get": {"summary": "Liveness", "responses": {"200": {"description": "ok"}}}},
    "/readyz": {"get": {"summary": "Readiness", "responses": {"200": {"description": "ready"}, "503": {"description": "not ready"}}}}
  },
  "definitions": {
    "Model": {"type": "object", "properties": {"id": {"type": "string"}, "name": {"type": "string"}, "path": {"type": "string"}, "format": {"type": "string"}, "states": {"type": "integer"}}},
    "ModelsResponse": {"type": "object", "properties": {"models": {"type": "array", "items": {"$ref": "#/definitions/Model"}}}},
    "SequenceInput": {"type": "object", "required": ["seq"], "properties": {"id": {"type": "string"}, "description": {"type": "string"}, "seq": {"type": "string"}}},
    "PredictRequest": {"type": "object", "required": ["sequences"], "properties": {"model": {"type": "string"}, "posterior": {"type": "boolean"}, "sequences": {"type": "array", "items": {"$ref": "#/definitions/SequenceInput"}}}},
    "ErrorResponse": {"type": "object", "properties": {"error": {"type": "string"}, "code": {"type": "integer"}}}
  }
}`

var swaggerSpec = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Title:            "topohmm API",
	Description:      "Transmembrane topology prediction with hidden Markov models.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  openAPITemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(swaggerSpec.InstanceName(), swaggerSpec)
}

// MountSwagger serves the Swagger UI under /swagger/.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}
