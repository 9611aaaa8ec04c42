package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/hbnb-project/hbnb/backend/internal/domain/repositories"
	"github.com/hbnb-project/hbnb/backend/internal/infrastructure/observability"
	apperrors "github.com/hbnb-project/hbnb/backend/pkg/errors"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

const msgInternal = "internal server error"

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps the error taxonomy onto HTTP status codes. Anything
// that is not a client error is logged and answered with a generic 500.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
		respondWithError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Type {
	case apperrors.ErrorTypeValidation, apperrors.ErrorTypePolicy:
		status = http.StatusBadRequest
	case apperrors.ErrorTypeUnauthorized:
		status = http.StatusUnauthorized
	case apperrors.ErrorTypeForbidden:
		status = http.StatusForbidden
	case apperrors.ErrorTypeNotFound:
		status = http.StatusNotFound
	case apperrors.ErrorTypeConflict:
		status = http.StatusConflict
	default:
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		respondWithError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	body := map[string]string{"error": appErr.Message}
	if appErr.Field != "" {
		body["field"] = appErr.Field
	}
	respondWithJSON(w, status, body)
}

// decodeJSON reads a single JSON object into dst. Type mismatches are reported
// against the offending field.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			return apperrors.NewValidationError("Request body is required")
		case errors.As(err, &typeErr) && typeErr.Field != "":
			return apperrors.NewFieldValidationError(typeErr.Field,
				fmt.Sprintf("%s must be a %s", typeErr.Field, jsonKind(typeErr.Type.Kind().String())))
		default:
			return apperrors.NewValidationError("Invalid JSON body")
		}
	}
	return nil
}

func jsonKind(goKind string) string {
	switch goKind {
	case "string":
		return "string"
	case "bool":
		return "boolean"
	case "slice", "array":
		return "list"
	case "float32", "float64", "int", "int64", "int32":
		return "number"
	default:
		return "valid value"
	}
}

// parseListOptions reads the optional limit and offset query parameters
func parseListOptions(r *http.Request) (repositories.ListOptions, error) {
	var opts repositories.ListOptions
	var err error
	if opts.Limit, err = queryInt(r, "limit"); err != nil {
		return opts, err
	}
	if opts.Offset, err = queryInt(r, "offset"); err != nil {
		return opts, err
	}
	return opts, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperrors.NewFieldValidationError(name, name+" must be a non-negative integer")
	}
	return v, nil
}

func queryFloat(r *http.Request, name string) (*float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.NewFieldValidationError(name, name+" must be a number")
	}
	return &v, nil
}
