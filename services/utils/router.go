package utils

import (
	"context"
	"net/http"

	"github.com/LOCKbusiness/transaction-checker-sub000/logger"
	"github.com/LOCKbusiness/transaction-checker-sub000/services/api"

	swagger "github.com/davidebianchi/gswagger"
	"github.com/davidebianchi/gswagger/support/gorilla"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gorilla/mux"
	v3 "github.com/swaggest/swgui/v3"
)

type RouteHandler struct {
	Handler            func(w http.ResponseWriter, r *http.Request)
	SwaggerDefinitions swagger.Definitions
	Method             string
}

type ErrorHandler struct {
	Handler func(w http.ResponseWriter)
}

type Router interface {
	AddRoute(path string, handler RouteHandler, description ...string)
	WithPrefix(prefix string, tag string) Router
	Finalize()
}

// Default router implementation using gorilla/mux
type defaultRouter struct {
	router *mux.Router
}

func (r *defaultRouter) AddRoute(path string, handler RouteHandler, description ...string) {
	r.router.HandleFunc(path, handler.Handler).Methods(handler.Method)
}

func (r *defaultRouter) WithPrefix(prefix string, tag string) Router {
	return &defaultRouter{
		router: r.router.PathPrefix(prefix).Subrouter(),
	}
}

func (r *defaultRouter) Finalize() {
}

func NewDefaultRouter(mRouter *mux.Router) Router {
	return &defaultRouter{
		router: mRouter,
	}
}

// Router implementation with swagger support
type swaggerRouter struct {
	mRouter *mux.Router
	router  *swagger.Router[gorilla.HandlerFunc, *mux.Route]
	tag     string
	title   string
}

func NewSwaggerRouter(mRouter *mux.Router, title string, version string) (Router, error) {
	router, err := swagger.NewRouter(gorilla.NewRouter(mRouter), swagger.Options{
		Openapi: &openapi3.T{
			Info: &openapi3.Info{
				Title:   title,
				Version: version,
			},
		},
	})
	if err != nil {
		return nil, err
	}
	return &swaggerRouter{
		mRouter: mRouter,
		router:  router,
		tag:     "",
		title:   title,
	}, nil
}

// Add a route to the router and generate openapi definitions from the handler
// The first item in the description parameter is used to set the openapi summary field and
// the second item is used to set the openapi description field
func (r *swaggerRouter) AddRoute(path string, handler RouteHandler, description ...string) {
	swaggerDefinitions := handler.SwaggerDefinitions
	swaggerDefinitions.Tags = []string{r.tag}
	if len(description) > 0 {
		swaggerDefinitions.Summary = description[0]
		if len(description) > 1 {
			swaggerDefinitions.Description = description[1]
		}
	}

	_, err := r.router.AddRoute(handler.Method, path, handler.Handler, swaggerDefinitions)
	if err != nil {
		logger.Fatal("Cannot add route %s: %v", path, err)
	}
}

func (r *swaggerRouter) WithPrefix(prefix string, tag string) Router {
	mSubRouter := r.mRouter.NewRoute().Subrouter()
	subRouter, _ := r.router.SubRouter(gorilla.NewRouter(mSubRouter), swagger.SubRouterOptions{
		PathPrefix: prefix,
	})
	return &swaggerRouter{
		mRouter: mSubRouter,
		router:  subRouter,
		tag:     tag,
		title:   r.title,
	}
}

func (r *swaggerRouter) Finalize() {
	if err := r.router.GenerateAndExposeOpenapi(); err != nil {
		logger.Fatal("Cannot generate openapi definitions: %v", err)
	}

	handler := v3.NewHandler(r.title, "/documentation/json", "/swagger")
	r.mRouter.PathPrefix("/swagger").HandlerFunc(handler.ServeHTTP)
}

// Route handler for POST endpoints. The request body is decoded into R and validated,
// the handler's result is wrapped into an ApiResponseWrapper. Openapi definitions are
// generated from requestObject and respObject.
func NewRouteHandler[R any, T any](handler func(request R) (T, *ErrorHandler), requestObject R, respObject T) RouteHandler {
	routeHandler := func(w http.ResponseWriter, r *http.Request) {
		var request R
		if !DecodeBody(w, r, &request) {
			return
		}
		resp, errHandler := handler(request)
		writeResult(w, resp, errHandler)
	}
	swaggerDefinitions := swagger.Definitions{
		RequestBody: &swagger.ContentValue{
			Content: swagger.Content{
				"application/json": {Value: requestObject},
			},
		},
		Responses: okResponse(respObject),
	}
	return RouteHandler{
		Handler:            routeHandler,
		SwaggerDefinitions: swaggerDefinitions,
		Method:             http.MethodPost,
	}
}

// Route handler for GET endpoints addressed by path parameters. paramDescriptions lists
// the parameters (name -> openapi description) the handler expects in params.
func NewParamRouteHandler[T any](
	handler func(ctx context.Context, params map[string]string) (T, *ErrorHandler),
	paramDescriptions map[string]string,
	respObject T,
) RouteHandler {
	routeHandler := func(w http.ResponseWriter, r *http.Request) {
		resp, errHandler := handler(r.Context(), mux.Vars(r))
		writeResult(w, resp, errHandler)
	}
	pathParams := make(map[string]swagger.Parameter)
	for name, description := range paramDescriptions {
		pathParams[name] = swagger.Parameter{
			Schema:      &swagger.Schema{Value: ""},
			Description: description,
		}
	}
	return RouteHandler{
		Handler: routeHandler,
		SwaggerDefinitions: swagger.Definitions{
			PathParams: pathParams,
			Responses:  okResponse(respObject),
		},
		Method: http.MethodGet,
	}
}

func okResponse[T any](respObject T) map[int]swagger.ContentValue {
	return map[int]swagger.ContentValue{
		http.StatusOK: {
			Content: swagger.Content{
				"application/json": {Value: api.ApiResponseWrapper[T]{Data: respObject}},
			},
		},
	}
}

func writeResult[T any](w http.ResponseWriter, resp T, errHandler *ErrorHandler) {
	if errHandler != nil {
		errHandler.Handler(w)
		return
	}
	WriteApiResponseOk(w, resp)
}

func InternalServerErrorHandler(err error) *ErrorHandler {
	return &ErrorHandler{
		Handler: func(w http.ResponseWriter) {
			logger.Error("Internal error: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		},
	}
}

func NotFoundErrorHandler(what string) *ErrorHandler {
	return ApiResponseErrorHandler(http.StatusNotFound, api.ApiResStatusNotFound, what+" not found", "")
}

func InvalidRequestErrorHandler(err error) *ErrorHandler {
	return ApiResponseErrorHandler(http.StatusBadRequest, api.ApiResStatusInvalidRequest, "invalid request", err.Error())
}

func ApiResponseErrorHandler(
	code int,
	status api.ApiResStatusEnum,
	errorMessage string,
	errorDetails string,
) *ErrorHandler {
	return &ErrorHandler{
		Handler: func(w http.ResponseWriter) {
			WriteApiResponseError(w, code, status, errorMessage, errorDetails)
		},
	}
}
