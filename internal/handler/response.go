package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gisvideo/backend/internal/contextkeys"
	"github.com/gisvideo/backend/internal/domain"
	"github.com/gisvideo/backend/internal/logging"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error writes an error JSON response, using AppError status codes when available.
// Server errors carry the request id so a report can be matched to the log line.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	if appErr, ok := domain.AsAppError(err); ok {
		if appErr.Code < http.StatusInternalServerError {
			JSON(w, appErr.Code, map[string]string{"error": appErr.Message})
			return
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		JSON(w, appErr.Code, serverError(r, appErr.Message))
		return
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("unhandled error")
	JSON(w, http.StatusInternalServerError, serverError(r, "internal server error"))
}

func serverError(r *http.Request, msg string) map[string]string {
	body := map[string]string{"error": msg}
	if id := logging.RequestID(r.Context()); id != "" {
		body["requestId"] = id
	}
	return body
}

// DecodeJSON decodes a JSON request body into v and validates it.
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.ErrBadRequest("invalid JSON body")
	}
	return validateBody(v)
}

// DecodeOptionalJSON is DecodeJSON for endpoints whose body may be absent.
// An empty body leaves v at its zero value.
func DecodeOptionalJSON(r *http.Request, v interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return domain.ErrBadRequest("invalid JSON body")
	}
	return validateBody(v)
}

func validateBody(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return domain.ErrValidation(formatValidationErrors(err))
	}
	return nil
}

func formatValidationErrors(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}

// currentUser returns the authenticated subject set by the auth middleware.
func currentUser(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(contextkeys.UserID).(string)
	return id, ok && id != ""
}

func unauthorized(w http.ResponseWriter) {
	JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
}
