package gen

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {

	// (GET /api/dashboard/summary)
	GetApiDashboardSummary(w http.ResponseWriter, r *http.Request)

	// (GET /api/dashboard/trends)
	GetApiDashboardTrends(w http.ResponseWriter, r *http.Request, params GetApiDashboardTrendsParams)

	// (GET /api/reports)
	GetApiReports(w http.ResponseWriter, r *http.Request, params GetApiReportsParams)

	// (GET /api/reports/{id})
	GetApiReportsId(w http.ResponseWriter, r *http.Request, id string)

	// (POST /analyze-workflow)
	PostAnalyzeWorkflow(w http.ResponseWriter, r *http.Request)

	// (POST /clear-cache)
	PostClearCache(w http.ResponseWriter, r *http.Request)

	// (GET /healthz)
	GetHealthz(w http.ResponseWriter, r *http.Request)
}

// Unimplemented server implementation that returns http.StatusNotImplemented for each endpoint.
type Unimplemented struct{}

// (GET /api/dashboard/summary)
func (_ Unimplemented) GetApiDashboardSummary(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotImplemented)
}

// (GET /api/dashboard/trends)
func (_ Unimplemented) GetApiDashboardTrends(w http.ResponseWriter, r *http.Request, params GetApiDashboardTrendsParams) {
	w.WriteHeader(http.StatusNotImplemented)
}

// (GET /api/reports)
func (_ Unimplemented) GetApiReports(w http.ResponseWriter, r *http.Request, params GetApiReportsParams) {
	w.WriteHeader(http.StatusNotImplemented)
}

// (GET /api/reports/{id})
func (_ Unimplemented) GetApiReportsId(w http.ResponseWriter, r *http.Request, id string) {
	w.WriteHeader(http.StatusNotImplemented)
}

// (POST /analyze-workflow)
func (_ Unimplemented) PostAnalyzeWorkflow(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotImplemented)
}

// (POST /clear-cache)
func (_ Unimplemented) PostClearCache(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotImplemented)
}

// (GET /healthz)
func (_ Unimplemented) GetHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotImplemented)
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

type MiddlewareFunc func(http.Handler) http.Handler

func (siw *ServerInterfaceWrapper) wrap(h http.Handler) http.Handler {
	for _, middleware := range siw.HandlerMiddlewares {
		h = middleware(h)
	}
	return h
}

// GetApiDashboardSummary operation middleware
func (siw *ServerInterfaceWrapper) GetApiDashboardSummary(w http.ResponseWriter, r *http.Request) {
	siw.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetApiDashboardSummary(w, r)
	})).ServeHTTP(w, r)
}

// GetApiDashboardTrends operation middleware
func (siw *ServerInterfaceWrapper) GetApiDashboardTrends(w http.ResponseWriter, r *http.Request) {
	var err error

	// Parameter object where we will unmarshal all parameters from the context
	var params GetApiDashboardTrendsParams

	// ------------- Optional query parameter "days" -------------

	err = runtime.BindQueryParameter("form", true, false, "days", r.URL.Query(), &params.Days)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "days", Err: err})
		return
	}

	siw.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetApiDashboardTrends(w, r, params)
	})).ServeHTTP(w, r)
}

// GetApiReports operation middleware
func (siw *ServerInterfaceWrapper) GetApiReports(w http.ResponseWriter, r *http.Request) {
	var err error

	var params GetApiReportsParams

	// ------------- Optional query parameter "repo" -------------

	err = runtime.BindQueryParameter("form", true, false, "repo", r.URL.Query(), &params.Repo)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "repo", Err: err})
		return
	}

	// ------------- Optional query parameter "team" -------------

	err = runtime.BindQueryParameter("form", true, false, "team", r.URL.Query(), &params.Team)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "team", Err: err})
		return
	}

	// ------------- Optional query parameter "limit" -------------

	err = runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}

	siw.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetApiReports(w, r, params)
	})).ServeHTTP(w, r)
}

// GetApiReportsId operation middleware
func (siw *ServerInterfaceWrapper) GetApiReportsId(w http.ResponseWriter, r *http.Request) {
	var err error

	// ------------- Path parameter "id" -------------
	var id string

	err = runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "id", Err: err})
		return
	}

	siw.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetApiReportsId(w, r, id)
	})).ServeHTTP(w, r)
}

// PostAnalyzeWorkflow operation middleware
func (siw *ServerInterfaceWrapper) PostAnalyzeWorkflow(w http.ResponseWriter, r *http.Request) {
	siw.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.PostAnalyzeWorkflow(w, r)
	})).ServeHTTP(w, r)
}

// PostClearCache operation middleware
func (siw *ServerInterfaceWrapper) PostClearCache(w http.ResponseWriter, r *http.Request) {
	siw.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.PostClearCache(w, r)
	})).ServeHTTP(w, r)
}

// GetHealthz operation middleware
func (siw *ServerInterfaceWrapper) GetHealthz(w http.ResponseWriter, r *http.Request) {
	siw.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetHealthz(w, r)
	})).ServeHTTP(w, r)
}

type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// Handler creates http.Handler with routing matching OpenAPI spec.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerFromMux creates http.Handler with routing matching OpenAPI spec based on the provided mux.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{
		BaseRouter: r,
	})
}

// HandlerWithOptions creates http.Handler with additional options
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/api/dashboard/summary", wrapper.GetApiDashboardSummary)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/api/dashboard/trends", wrapper.GetApiDashboardTrends)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/api/reports", wrapper.GetApiReports)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/api/reports/{id}", wrapper.GetApiReportsId)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/analyze-workflow", wrapper.PostAnalyzeWorkflow)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/clear-cache", wrapper.PostClearCache)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/healthz", wrapper.GetHealthz)
	})

	return r
}
