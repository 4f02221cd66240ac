package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"bread-calculator/internal/apperr"
	"bread-calculator/internal/logging"

	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

// WriteJSON encodes v before committing status. A value that cannot be
// encoded is answered with a 500 error body.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logrus.WithError(err).Error("encode response")
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Error: "internal server error"})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

// WriteError renders err as {"error": message}. Internal errors are logged
// with the request-scoped logger and replaced by a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.Internal("unhandled error", err)
	}

	status := appErr.Kind.HTTPStatus()
	message := appErr.Message
	if appErr.Kind == apperr.KindInternal {
		logging.FromContext(r.Context()).WithError(err).Error("request failed")
		message = "internal server error"
	}
	if appErr.Kind == apperr.KindAuthentication {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}

	WriteJSON(w, status, errorResponse{Error: message})
}

// DecodeJSON reads a single JSON document from the request body into dst.
// Malformed bodies come back as validation errors.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return apperr.Validation("%s: invalid value", typeErr.Field)
		}
		return apperr.Validation("invalid request body")
	}
	return nil
}
