package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// pathUUID binds a UUID path parameter the way generated oapi-codegen
// wrappers do.
func pathUUID(r *http.Request, name string) (openapi_types.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return id, fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return id, nil
}

// pathInt binds an integer path parameter.
func pathInt(r *http.Request, name string) (int, error) {
	var n int
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &n,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return 0, fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return n, nil
}

// queryParam binds an optional form-style query parameter into dest, which
// must be a pointer to a pointer so absence stays nil.
func queryParam(r *http.Request, name string, dest any) error {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		return fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return nil
}

// decodeBody decodes a JSON request body into dst. Numbers are kept as
// json.Number so integer values survive untyped fields intact.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("malformed request body: %w", err)
	}
	return nil
}
