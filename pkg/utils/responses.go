package utils

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type Response struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

// Machine-readable failure codes carried in Response.Code.
const (
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeDuplicateCredential = "DUPLICATE_CREDENTIAL"
	CodeInvalidCredential   = "INVALID_CREDENTIAL"
	CodePreconditionFailed  = "PRECONDITION_FAILED"
	CodeUnauthenticated     = "UNAUTHENTICATED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeInternalFailure     = "INTERNAL_FAILURE"
)

// internalFailureBody is sent when a response cannot be encoded.
var internalFailureBody = []byte(`{"status":false,"message":"Internal server error","code":"INTERNAL_FAILURE"}` + "\n")

// ResponseJSON writes JSON response with custom status code.
// The body is encoded before the header goes out so an encoding failure
// still reaches the client as a 500.
func ResponseJSON(w http.ResponseWriter, code int, response Response) {
	body, err := json.Marshal(response)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		zap.L().Error("Failed to encode response",
			zap.Error(err),
			zap.Int("status", code),
			zap.String("message", response.Message))
		w.WriteHeader(http.StatusInternalServerError)
		w.Write(internalFailureBody)
		return
	}

	w.WriteHeader(code)
	w.Write(append(body, '\n'))
}

// ------------- Success responses -------------

// returns 200 OK
func ResponseSuccess(w http.ResponseWriter, message string, data any) {
	ResponseJSON(w, http.StatusOK, Response{Status: true, Message: message, Data: data})
}

// returns 201 Created
func ResponseCreated(w http.ResponseWriter, message string, data any) {
	ResponseJSON(w, http.StatusCreated, Response{Status: true, Message: message, Data: data})
}

// ------------- Error responses -------------

// returns 400 Bad Request
func ResponseBadRequest(w http.ResponseWriter, code, message string, errors any) {
	ResponseJSON(w, http.StatusBadRequest, Response{Message: message, Code: code, Errors: errors})
}

// returns 401 Unauthorized
func ResponseUnauthorized(w http.ResponseWriter, message string) {
	ResponseJSON(w, http.StatusUnauthorized, Response{Message: message, Code: CodeUnauthenticated})
}

// returns 403 Forbidden
func ResponseForbidden(w http.ResponseWriter, message string) {
	ResponseJSON(w, http.StatusForbidden, Response{Message: message, Code: CodeForbidden})
}

// returns 404 Not Found
func ResponseNotFound(w http.ResponseWriter, message string) {
	ResponseJSON(w, http.StatusNotFound, Response{Message: message, Code: CodeNotFound})
}

// returns 413 Request Entity Too Large
func ResponseTooLarge(w http.ResponseWriter, message string) {
	ResponseJSON(w, http.StatusRequestEntityTooLarge, Response{Message: message, Code: CodeValidationFailed})
}

// returns 500 Internal Server Error
func ResponseInternalError(w http.ResponseWriter, message string) {
	ResponseJSON(w, http.StatusInternalServerError, Response{Message: message, Code: CodeInternalFailure})
}
