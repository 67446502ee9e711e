package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"stockgenius/pkg/stockgenius"
)

// Response represents a successful API response with unified format.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse represents an error API response with structured information.
type ErrorResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeSuccess writes a successful response with data.
func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Response{Code: 0, Data: data})
}

// writeSuccessWithMessage writes a successful response with data and message.
func writeSuccessWithMessage(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, Response{Code: 0, Message: message, Data: data})
}

// writeErrorResponse maps err to an HTTP status and writes the error envelope. Unclassified
// errors are reported as internal errors.
func writeErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	code := stockgenius.CodeOf(err)
	status := mapErrorCodeToHTTPStatus(code)

	message := err.Error()
	var sgErr *stockgenius.Error
	if errors.As(err, &sgErr) {
		message = sgErr.Message
	}

	if lw, ok := w.(interface{ SetErrorMessage(string) }); ok {
		lw.SetErrorMessage(err.Error())
	}

	writeJSON(w, status, ErrorResponse{
		Code:      status,
		Message:   message,
		ErrorCode: string(code),
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// writeInvalidInput reports a malformed request body or query.
func writeInvalidInput(w http.ResponseWriter, r *http.Request, err error) {
	writeErrorResponse(w, r, stockgenius.NewError(stockgenius.ErrCodeInvalidInput, "invalid request: "+err.Error()))
}

// mapErrorCodeToHTTPStatus maps business error codes to HTTP status codes.
func mapErrorCodeToHTTPStatus(code stockgenius.ErrorCode) int {
	switch code {
	case stockgenius.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case stockgenius.ErrCodeUpstreamUnavailable, stockgenius.ErrCodeReportGeneration:
		return http.StatusBadGateway
	case stockgenius.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case stockgenius.ErrCodeSimulationFailure, stockgenius.ErrCodeDatabase, stockgenius.ErrCodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
