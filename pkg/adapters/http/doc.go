// Package http exposes the ruleflow service as a JSON REST API routed with chi.
// The API is described by an embedded OpenAPI 3 document served at /openapi.yaml.
package http
