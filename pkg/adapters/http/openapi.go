package http

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	legacyrouter "github.com/getkin/kin-openapi/routers/legacy"
)

//go:embed openapi.yaml
var rawSpec []byte

// LoadSpec parses and validates the embedded OpenAPI document.
func LoadSpec(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI spec: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI spec: %w", err)
	}
	return doc, nil
}

// requestValidator rejects requests that do not match the OpenAPI document.
// Requests for paths the document does not describe pass through untouched.
func requestValidator(doc *openapi3.T, onError func(w http.ResponseWriter, err error)) (func(http.Handler) http.Handler, error) {
	router, err := legacyrouter.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build OpenAPI router: %w", err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				if errors.Is(err, routers.ErrPathNotFound) || errors.Is(err, routers.ErrMethodNotAllowed) {
					next.ServeHTTP(w, r)
					return
				}
				onError(w, err)
				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options: &openapi3filter.Options{
					AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
					MultiError:         true,
				},
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				onError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}
