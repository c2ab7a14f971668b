package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/LOCKbusiness/transaction-checker-sub000/services/api"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Address string `json:"address" validate:"required,chain-address"`
}

type echoResponse struct {
	Address string `json:"address"`
}

func echoRoutes(router Router) {
	sub := router.WithPrefix("/echo", "Echo")
	sub.AddRoute("/{address}", NewParamRouteHandler(
		func(_ context.Context, params map[string]string) (echoResponse, *ErrorHandler) {
			if params["address"] == strings.Repeat("0", 30) {
				return echoResponse{}, NotFoundErrorHandler("address")
			}
			return echoResponse{Address: params["address"]}, nil
		},
		map[string]string{"address": "Chain address"},
		echoResponse{},
	), "Echo a path parameter")
	sub.AddRoute("", NewRouteHandler(
		func(request echoRequest) (echoResponse, *ErrorHandler) {
			return echoResponse(request), nil
		},
		echoRequest{},
		echoResponse{},
	), "Echo a request body")
}

func TestSwaggerRouter(t *testing.T) {
	muxRouter := mux.NewRouter()
	router, err := NewSwaggerRouter(muxRouter, "Test API", "0.0.1")
	require.NoError(t, err)
	echoRoutes(router)
	router.Finalize()

	w := httptest.NewRecorder()
	muxRouter.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/documentation/json", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "/echo/{address}")
	require.Contains(t, w.Body.String(), "Test API")

	address := strings.Repeat("a", 34)
	w = httptest.NewRecorder()
	muxRouter.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/echo/"+address, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.ApiResponseWrapper[echoResponse]
	DecodeStruct(t, w.Body, &resp)
	require.Equal(t, api.ApiResStatusOk, resp.Status)
	require.Equal(t, address, resp.Data.Address)
}

func TestRouteHandlerErrors(t *testing.T) {
	muxRouter := mux.NewRouter()
	echoRoutes(NewDefaultRouter(muxRouter))

	w := httptest.NewRecorder()
	muxRouter.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/echo/"+strings.Repeat("0", 30), nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	body := StructToReader(t, echoRequest{Address: "x"})
	muxRouter.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", body))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp api.ApiResponseWrapper[any]
	DecodeStruct(t, w.Body, &resp)
	require.Equal(t, api.ApiResStatusRequestBodyError, resp.Status)
}
