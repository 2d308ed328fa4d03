package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Client-side error codes. Any other code is passed through from the server.
const (
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeTimeout         = "TIMEOUT"
	CodeNetwork         = "NETWORK_ERROR"
	CodeUpload          = "UPLOAD_ERROR"
	CodeCanceled        = "CANCELED"
	CodeInvalidResponse = "INVALID_RESPONSE"
	CodeUnknown         = "UNKNOWN_ERROR"
)

// GenericMessage is shown when the server does not supply a message.
const GenericMessage = "Bir hata oluştu"

// User-facing messages for client-side failures.
const (
	msgUnauthorized    = "Oturumunuzun süresi doldu. Lütfen tekrar giriş yapın."
	msgTimeout         = "İstek zaman aşımına uğradı"
	msgNetwork         = "Sunucuya bağlanılamadı. İnternet bağlantınızı kontrol edin."
	msgCanceled        = "İstek iptal edildi"
	msgInvalidResponse = "Sunucu yanıtı okunamadı"
	msgUpload          = "Dosya yüklenemedi"
)

// APIError is the single error shape surfaced by the client. Status is the
// HTTP status, 408 for client-side timeouts, or 0 for transport failures.
type APIError struct {
	Message string
	Status  int
	Code    string
	Details json.RawMessage
	Cause   error
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}

	parts := make([]string, 0, 5)
	parts = append(parts, "api error")

	if e.Status > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.Status))
	}
	if code := strings.TrimSpace(e.Code); code != "" {
		parts = append(parts, code)
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		parts = append(parts, msg)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}

	return strings.Join(parts, ": ")
}

func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// CodeOf returns the APIError code of err, or "" when err is not an APIError.
func CodeOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

// StatusOf returns the APIError status of err, or -1 when err is not an APIError.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return -1
}

func IsUnauthorized(err error) bool { return CodeOf(err) == CodeUnauthorized }

func IsTimeout(err error) bool { return CodeOf(err) == CodeTimeout }

func IsNetwork(err error) bool { return CodeOf(err) == CodeNetwork }

// IsTransient reports whether a retry of the same request may succeed.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case CodeTimeout, CodeNetwork:
			return true
		case CodeUnauthorized, CodeCanceled, CodeUpload, CodeInvalidResponse:
			return false
		}
		return isTransientHTTPStatus(apiErr.Status)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}

func isTransientHTTPStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || (statusCode >= http.StatusInternalServerError && statusCode <= 599)
}

// errorBody is the error envelope the backend returns on non-2xx responses.
type errorBody struct {
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
	Code    string          `json:"code"`
	Details json.RawMessage `json:"details"`
}

func serverError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		Message: GenericMessage,
		Status:  statusCode,
		Code:    CodeUnknown,
	}

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return apiErr
	}

	if msg := strings.TrimSpace(parsed.Message); msg != "" {
		apiErr.Message = msg
	} else if msg := rawString(parsed.Error); msg != "" {
		apiErr.Message = msg
	}
	if code := strings.TrimSpace(parsed.Code); code != "" {
		apiErr.Code = code
	}
	if len(parsed.Details) > 0 && string(parsed.Details) != "null" {
		apiErr.Details = parsed.Details
	}

	return apiErr
}

// rawString returns raw as a string when it holds a JSON string.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}
