package routes

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/LOCKbusiness/transaction-checker-sub000/services/api"
	"github.com/LOCKbusiness/transaction-checker-sub000/services/utils"

	"github.com/bradleyjkemp/cupaloy"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *mux.Router {
	muxRouter := mux.NewRouter()
	router := utils.NewDefaultRouter(muxRouter)
	AddLedgerRoutes(router, testContext)
	AddStatusRoutes(router, testContext)
	return muxRouter
}

func serve(t *testing.T, method string, path string, body io.Reader) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, body)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	newTestRouter().ServeHTTP(w, r)
	return w
}

func decodeOk[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp api.ApiResponseWrapper[T]
	utils.DecodeStruct(t, w.Body, &resp)
	require.Equal(t, api.ApiResStatusOk, resp.Status)
	return resp.Data
}

func TestGetBalance(t *testing.T) {
	w := serve(t, http.MethodGet, "/ledger/balances/DFI/"+liquidityAddress, nil)
	b := decodeOk[api.ApiBalance](t, w)

	require.Equal(t, liquidityAddress, b.Address)
	require.Equal(t, uint32(3), b.BlockNumber)
	require.Equal(t, uint64(2), b.TransactionCount)
	require.Equal(t, "160", b.Vout.String())
	require.Equal(t, "100", b.Vin.String())
	require.Equal(t, "60", b.Net.String())

	cupaloy.SnapshotT(t, b)
}

func TestGetBalanceNotFound(t *testing.T) {
	// Known address without a balance row
	w := serve(t, http.MethodGet, "/ledger/balances/DFI/"+customerAddress, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = serve(t, http.MethodGet, "/ledger/balances/BTC/"+liquidityAddress, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetBalanceInvalidAddress(t *testing.T) {
	w := serve(t, http.MethodGet, "/ledger/balances/DFI/short", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp api.ApiResponseWrapper[any]
	utils.DecodeStruct(t, w.Body, &resp)
	require.Equal(t, api.ApiResStatusInvalidRequest, resp.Status)
}

func TestListDeposits(t *testing.T) {
	w := serve(t, http.MethodGet, "/ledger/deposits/DFI/"+liquidityAddress, nil)
	deposits := decodeOk[[]api.ApiDeposit](t, w)

	require.Equal(t, []api.ApiDeposit{{
		Token:            "DFI",
		LiquidityAddress: liquidityAddress,
		DepositAddress:   depositAddress,
		CustomerAddress:  customerAddress,
		StartBlockNumber: 2,
	}}, deposits)

	cupaloy.SnapshotT(t, deposits)
}

func TestListStakings(t *testing.T) {
	body := utils.StructToReader(t, GetStakingsRequest{
		Token:            "DFI",
		LiquidityAddress: liquidityAddress,
	})
	w := serve(t, http.MethodPost, "/ledger/stakings", body)
	stakings := decodeOk[[]api.ApiStaking](t, w)

	require.Len(t, stakings, 1)
	s := stakings[0]
	require.Equal(t, depositAddress, s.DepositAddress)
	require.Equal(t, customerAddress, s.CustomerAddress)
	require.Equal(t, uint32(2), *s.LastInBlockNumber)
	require.Equal(t, uint32(3), *s.LastOutBlockNumber)
	require.Equal(t, "60", s.Net.String())

	cupaloy.SnapshotT(t, stakings)
}

func TestListStakingsPagination(t *testing.T) {
	body := utils.StructToReader(t, GetStakingsRequest{
		PaginatedRequest: PaginatedRequest{Offset: 1, Limit: 10},
		Token:            "DFI",
		LiquidityAddress: liquidityAddress,
	})
	w := serve(t, http.MethodPost, "/ledger/stakings", body)
	require.Empty(t, decodeOk[[]api.ApiStaking](t, w))
}

func TestListStakingsRequestErrors(t *testing.T) {
	tests := map[string]string{
		"malformed":     `{"token": `,
		"unknown field": `{"token": "DFI", "liquidityAddress": "` + liquidityAddress + `", "foo": 1}`,
		"limit":         `{"token": "DFI", "liquidityAddress": "` + liquidityAddress + `", "limit": 1000}`,
		"missing token": `{"liquidityAddress": "` + liquidityAddress + `"}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			w := serve(t, http.MethodPost, "/ledger/stakings", strings.NewReader(body))
			require.Equal(t, http.StatusBadRequest, w.Code)

			var resp api.ApiResponseWrapper[any]
			utils.DecodeStruct(t, w.Body, &resp)
			require.Equal(t, api.ApiResStatusRequestBodyError, resp.Status)
		})
	}
}

func TestGetStatus(t *testing.T) {
	w := serve(t, http.MethodGet, "/status", nil)
	status := decodeOk[api.ApiStatus](t, w)

	require.Equal(t, uint32(4), status.ChainHeight)
	require.NotNil(t, status.LastIngestedBlock)
	require.Equal(t, uint32(3), *status.LastIngestedBlock)
}
