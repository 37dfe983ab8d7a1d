package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/DukeRupert/rcadmin/internal/domain"
)

// Page handlers render their own error states and only borrow StatusFor.
// The responses below serve JSON clients and the plain-text fallback.

var statusByCode = map[string]int{
	domain.EINVALID:      http.StatusBadRequest,
	domain.EUNAUTHORIZED: http.StatusUnauthorized,
	domain.EFORBIDDEN:    http.StatusForbidden,
	domain.ENOTFOUND:     http.StatusNotFound,
	domain.ECONFLICT:     http.StatusConflict,
	domain.ERATELIMIT:    http.StatusTooManyRequests,
	domain.EUNAVAILABLE:  http.StatusBadGateway,
}

// StatusFor maps a domain error code to an HTTP status. Unknown codes are 500.
func StatusFor(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// JSONError is the body of every JSON error response.
type JSONError struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields,omitempty"`
	} `json:"error"`
}

// ErrorResponse writes err using its user-facing message only. Ops and
// wrapped causes go to the log, never to the client.
func ErrorResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	code := domain.ErrorCode(err)
	status := StatusFor(code)

	logResponseError(logger, r, err, code, status)
	writeError(w, r, status, code, domain.ErrorMessage(err), nil)
}

// ValidationErrorResponse writes field errors as a 400. Anything that is not
// a *domain.ValidationError falls through to ErrorResponse.
func ValidationErrorResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		ErrorResponse(w, r, logger, err)
		return
	}

	logger.Info("validation failed", "op", ve.Op, "field_count", len(ve.Fields), "path", r.URL.Path)
	writeError(w, r, http.StatusBadRequest, domain.EINVALID,
		"Validation failed. Please check your input and try again.", ve.Fields)
}

// UnauthorizedResponse answers an API request that has no live session.
func UnauthorizedResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	ErrorResponse(w, r, logger, domain.Unauthorized("", "Your session has expired. Please sign in again."))
}

func logResponseError(logger *slog.Logger, r *http.Request, err error, code string, status int) {
	attrs := []any{
		"error", err,
		"code", code,
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
	}
	if op := domain.ErrorOp(err); op != "" {
		attrs = append(attrs, "op", op)
	}

	switch {
	case code == domain.EUNAVAILABLE:
		logger.Warn("upstream error", attrs...)
	case status >= 500:
		logger.Error("server error", attrs...)
	default:
		logger.Info("client error", attrs...)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, fields map[string]string) {
	if !wantsJSON(r) {
		http.Error(w, message, status)
		return
	}

	var body JSONError
	body.Error.Code = code
	body.Error.Message = message
	body.Error.Fields = fields

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// wantsJSON reports whether the caller is an API client rather than a
// browser page or an htmx swap.
func wantsJSON(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json") ||
		strings.HasPrefix(r.URL.Path, "/api/")
}
