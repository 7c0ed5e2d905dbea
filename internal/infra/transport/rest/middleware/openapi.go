package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"

	"github.com/mark47B/opspilot/internal/infra/transport/rest/gen"
	"github.com/mark47B/opspilot/internal/infra/transport/rest/handlers"
)

// OpenAPIValidator rejects requests that do not match the contract with a 400.
// Routes missing from the document pass through untouched.
func OpenAPIValidator(swagger *openapi3.T) (func(http.Handler) http.Handler, error) {
	// server URLs are not matched against the Host header
	swagger.Servers = nil

	router, err := gorillamux.NewRouter(swagger)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}
	opts := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		MultiError:         false,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				if errors.Is(err, routers.ErrPathNotFound) || errors.Is(err, routers.ErrMethodNotAllowed) {
					next.ServeHTTP(w, r)
					return
				}
				handlers.WriteError(w, http.StatusBadRequest, handlers.NewError(gen.INVALIDREQUEST, err.Error()))
				return
			}

			err = openapi3filter.ValidateRequest(r.Context(), &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options:    opts,
			})
			if err != nil {
				handlers.WriteError(w, http.StatusBadRequest, handlers.NewError(gen.INVALIDREQUEST, validationMessage(err)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}

// validationMessage keeps the first line of kin-openapi's verbose error.
func validationMessage(err error) string {
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		msg := reqErr.Error()
		if i := strings.IndexByte(msg, '\n'); i > 0 {
			msg = msg[:i]
		}
		return msg
	}
	return err.Error()
}
