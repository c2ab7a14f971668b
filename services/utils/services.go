package utils

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/LOCKbusiness/transaction-checker-sub000/services/api"
)

// Decode body from the request into value and validate it.
// Any error is written into the response and false is returned.
func DecodeBody(w http.ResponseWriter, r *http.Request, value any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(value); err != nil {
		WriteApiResponseError(w, http.StatusBadRequest, api.ApiResStatusRequestBodyError,
			"error parsing request body", err.Error())
		return false
	}
	if err := validate.Struct(value); err != nil {
		WriteApiResponseError(w, http.StatusBadRequest, api.ApiResStatusRequestBodyError,
			"error validating request body", err.Error())
		return false
	}
	return true
}

// Write value into w as json with the given status code
func WriteResponse(w http.ResponseWriter, code int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		http.Error(w, fmt.Sprintf("error writing response: %v", err), http.StatusInternalServerError)
	}
}

func WriteApiResponseOk[T any](w http.ResponseWriter, value T) {
	WriteResponse(w, http.StatusOK, api.ApiResponseWrapper[T]{
		Status: api.ApiResStatusOk,
		Data:   value,
	})
}

func WriteApiResponseError(
	w http.ResponseWriter,
	code int,
	status api.ApiResStatusEnum,
	errorMessage string,
	errorDetails string,
) {
	WriteResponse(w, code, api.ApiResponseWrapper[any]{
		Status:       status,
		ErrorDetails: errorDetails,
		ErrorMessage: errorMessage,
	})
}
