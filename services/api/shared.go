package api

type ApiResStatusEnum string

const (
	ApiResStatusOk               ApiResStatusEnum = "OK"
	ApiResStatusError            ApiResStatusEnum = "ERROR"
	ApiResStatusRequestBodyError ApiResStatusEnum = "REQUEST_BODY_ERROR"
	ApiResStatusInvalidRequest   ApiResStatusEnum = "INVALID_REQUEST"
	ApiResStatusNotFound         ApiResStatusEnum = "NOT_FOUND"
)

type ApiResponseWrapper[T any] struct {
	Status       ApiResStatusEnum `json:"status"`
	Data         T                `json:"data"`
	ErrorDetails string           `json:"errorDetails,omitempty"`
	ErrorMessage string           `json:"errorMessage,omitempty"`
}
