package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/smithy-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const requestIDHeader = "X-Request-ID"

// ErrorResponse represents the API error response format
type ErrorResponse struct {
	Error     bool                   `json:"error"`
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Code      string                 `json:"code,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// statusTypes names the error type reported by HandleStatus. Statuses not
// listed are reported as INTERNAL.
var statusTypes = map[int]string{
	http.StatusBadRequest:         string(ErrorTypeValidation),
	http.StatusUnauthorized:       string(ErrorTypeUnauthorized),
	http.StatusNotFound:           string(ErrorTypeItemNotFound),
	http.StatusConflict:           string(ErrorTypeItemAlreadyExists),
	http.StatusTooManyRequests:    "RATE_LIMITED",
	http.StatusServiceUnavailable: string(ErrorTypeServiceUnavailable),
}

// ErrorHandler renders errors as JSON responses and logs them once.
type ErrorHandler struct {
	logger *zap.Logger
	debug  bool
}

// NewErrorHandler creates a new error handler. In debug mode responses carry
// raw error text and stack traces.
func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	return &ErrorHandler{logger: logger, debug: debug}
}

// Handle writes the response for err. A nil error writes nothing.
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	status, body, fields := h.describe(err)
	body.RequestID = r.Header.Get(requestIDHeader)
	h.log(r, status, body.Message, fields...)
	h.write(w, status, body)
}

// HandleStatus writes an error response for a bare status and message.
func (h *ErrorHandler) HandleStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	errType, ok := statusTypes[status]
	if !ok {
		errType = string(ErrorTypeInternal)
	}
	h.log(r, status, message)
	h.write(w, status, ErrorResponse{
		Error:     true,
		Type:      errType,
		Message:   message,
		RequestID: r.Header.Get(requestIDHeader),
	})
}

// describe maps err to a status, a response body and extra log fields.
// Anything that is not an AppError is reported as INTERNAL with its text
// hidden outside debug mode.
func (h *ErrorHandler) describe(err error) (int, ErrorResponse, []zap.Field) {
	appErr := GetAppError(err)
	if appErr == nil {
		body := ErrorResponse{Error: true, Type: string(ErrorTypeInternal), Message: "An internal error occurred"}
		if h.debug {
			body.Message = err.Error()
		}
		fields := []zap.Field{zap.Error(err)}
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			fields = append(fields, zap.String("aws_error_code", apiErr.ErrorCode()))
		}
		return http.StatusInternalServerError, body, fields
	}

	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	body := ErrorResponse{
		Error:   true,
		Type:    string(appErr.Type),
		Message: appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Details,
	}
	if h.debug && appErr.StackTrace != "" {
		details := make(map[string]interface{}, len(body.Details)+1)
		for k, v := range body.Details {
			details[k] = v
		}
		details["stack_trace"] = appErr.StackTrace
		body.Details = details
	}

	fields := []zap.Field{zap.String("error_type", string(appErr.Type))}
	if appErr.Cause != nil {
		fields = append(fields, zap.Error(appErr.Cause))
	}
	return status, body, fields
}

// log records server faults at error level and client faults at warn.
func (h *ErrorHandler) log(r *http.Request, status int, message string, extra ...zap.Field) {
	level := zapcore.WarnLevel
	if status >= http.StatusInternalServerError {
		level = zapcore.ErrorLevel
	}
	ce := h.logger.Check(level, message)
	if ce == nil {
		return
	}
	ce.Write(append([]zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("request_id", r.Header.Get(requestIDHeader)),
	}, extra...)...)
}

func (h *ErrorHandler) write(w http.ResponseWriter, status int, body ErrorResponse) {
	payload, err := json.Marshal(body)
	if err != nil {
		h.logger.Error("Failed to encode error response", zap.Error(err), zap.String("type", body.Type))
		payload = []byte(`{"error":true,"type":"INTERNAL","message":"An internal error occurred"}`)
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

// Middleware turns panics in next into 500 responses.
func (h *ErrorHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.Handle(w, r, NewInternalError(fmt.Sprintf("panic: %v", rec)))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
