package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"debiti/internal/core"
	"debiti/internal/ledger"
)

type errorResponse struct {
	Error string `json:"error"`
}

// respondJSON writes v as a JSON body with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response body", "error", err)
	}
}

// respondError maps domain errors onto HTTP statuses and writes a JSON error
// body. Unknown errors become a 500 without leaking internals.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	var notFound *ledger.NotFoundError
	var dependents *ledger.HasDependentsError
	var billing *ledger.InvalidBillingConfigError
	var limit *ledger.LimitExceededError
	var cycle *ledger.BeforeBillingDateError
	var owner *ledger.MismatchedOwnerError

	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.As(err, &dependents):
		status = http.StatusConflict
		message = err.Error()
	case errors.As(err, &billing), errors.As(err, &limit),
		errors.As(err, &cycle), errors.As(err, &owner):
		status = http.StatusUnprocessableEntity
		message = err.Error()
	case isValidationError(err):
		status = http.StatusUnprocessableEntity
		message = err.Error()
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
	}
	respondJSON(w, status, errorResponse{Error: message})
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidDay,
		core.ErrInvalidAmount,
		core.ErrEmptyName,
		core.ErrNameTooLong,
		core.ErrEmptyDescription,
		core.ErrDescriptionTooLong,
		core.ErrUnknownCategory,
		core.ErrMissingDate,
		core.ErrMissingReference,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// respondBadRequest covers malformed bodies and parameters.
func respondBadRequest(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusBadRequest, errorResponse{Error: message})
}

// pathID extracts the {id} route variable.
func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id in path")
	}
	return id, nil
}

// queryInt64 reads an optional integer query parameter, returning 0 when
// absent.
func queryInt64(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, errors.New("invalid " + name + " parameter")
	}
	return v, nil
}

// parseYearMonth extracts year and month from query parameters, defaulting to
// the current UTC month.
func parseYearMonth(r *http.Request) (year, month int, err error) {
	now := time.Now().UTC()
	year = now.Year()
	month = int(now.Month())

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, convErr := strconv.Atoi(v)
		if convErr != nil || y < 1970 || y > 9999 {
			return 0, 0, errors.New("invalid year parameter")
		}
		year = y
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		m, convErr := strconv.Atoi(v)
		if convErr != nil || m < 1 || m > 12 {
			return 0, 0, errors.New("invalid month parameter")
		}
		month = m
	}
	return year, month, nil
}

// parseDate parses a wire date in YYYY-MM-DD format.
func parseDate(s string) (core.Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return core.Date{}, errors.New("invalid date, expected YYYY-MM-DD")
	}
	return core.NewDate(t.Year(), int(t.Month()), t.Day()), nil
}

// decodeBody decodes a JSON request body into dst, rejecting unknown fields.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("malformed request body")
	}
	return nil
}
