package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"financeiro/internal/core"
)

// errorEnvelope is the JSON error body returned by every endpoint.
type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Client-facing messages are generic on purpose: causes are logged
// server-side, never leaked in responses.
var kindMessages = map[core.ErrorKind]string{
	core.KindUnauthorized: "Sessão inválida ou expirada",
	core.KindValidation:   "Dados inválidos",
	core.KindNotFound:     "Registro não encontrado",
	core.KindStorage:      "Erro interno",
}

var kindStatus = map[core.ErrorKind]int{
	core.KindUnauthorized: http.StatusUnauthorized,
	core.KindValidation:   http.StatusUnprocessableEntity,
	core.KindNotFound:     http.StatusNotFound,
	core.KindStorage:      http.StatusInternalServerError,
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// writeError maps a service error to its status code and generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := core.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	msg, ok := kindMessages[kind]
	if !ok {
		msg = kindMessages[core.KindStorage]
	}

	if status >= 500 {
		slog.ErrorContext(r.Context(), "Request failed", "error", err, "url", r.URL.Path, "kind", string(kind))
	} else {
		slog.WarnContext(r.Context(), "Request rejected", "error", err, "url", r.URL.Path, "kind", string(kind))
	}

	writeJSON(w, status, errorEnvelope{Error: errorBody{Kind: string(kind), Message: msg}})
}

// writeValidationError is a shorthand for request bodies that fail parsing.
func writeValidationError(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, core.NewError(core.KindValidation, err))
}

// decodeJSON parses a request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// pathID extracts the numeric id path segment.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// parseYearMonth extracts year and month from query parameters.
// Returns current year/month as defaults if not provided or invalid.
func parseYearMonth(r *http.Request, now time.Time) (year, month int) {
	year = now.Year()
	month = int(now.Month())

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			month = m
		}
	}

	return year, month
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
