package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/schema"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-agent/internal/board"
	"github.com/vancomm/minesweeper-agent/internal/knowledge"
	"github.com/vancomm/minesweeper-agent/internal/middleware"
	"github.com/vancomm/minesweeper-agent/internal/repository"
)

var (
	ErrMissingToken  = errors.New("missing session token")
	ErrForeignToken  = errors.New("token belongs to another session")
	ErrUnknownAgent  = errors.New("unknown agent session")
	ErrBadIdentifier = errors.New("malformed identifier")
	ErrBadQuery      = errors.New("malformed query")
)

var dec = schema.NewDecoder()

func init() {
	dec.IgnoreUnknownKeys(true)
}

func decodeQuery(dst any, r *http.Request) error {
	if err := dec.Decode(dst, r.URL.Query()); err != nil {
		return fmt.Errorf("%w: %w", ErrBadQuery, err)
	}
	return nil
}

func SendJSON(w http.ResponseWriter, v any) (int, error) {
	return SendJSONStatus(w, http.StatusOK, v)
}

// SendJSONStatus writes v with the given status code.
func SendJSONStatus(w http.ResponseWriter, code int, v any) (int, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return 0, err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return w.Write(payload)
}

func sendJSONOrLog(w http.ResponseWriter, log logrus.FieldLogger, v any) {
	sendJSONStatusOrLog(w, log, http.StatusOK, v)
}

func sendJSONStatusOrLog(w http.ResponseWriter, log logrus.FieldLogger, code int, v any) {
	if _, err := SendJSONStatus(w, code, v); err != nil {
		log.WithError(err).Error("unable to send response")
	}
}

func wrapError(err error) map[string]string {
	return map[string]string{
		"error": err.Error(),
	}
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrBadQuery),
		errors.Is(err, knowledge.ErrInvalidInput),
		errors.Is(err, board.ErrInvalidParams),
		errors.Is(err, ErrBadIdentifier):
		return http.StatusBadRequest
	case errors.Is(err, ErrMissingToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForeignToken):
		return http.StatusForbidden
	case errors.Is(err, ErrUnknownAgent), errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, knowledge.ErrInconsistent), errors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrTooManySessions):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// sendError answers with the status matching err. Server errors are logged
// and their details withheld from the client.
func sendError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
		sendJSONStatusOrLog(w, log, code, wrapError(errors.New(http.StatusText(code))))
		return
	}
	log.WithError(err).Debug("request rejected")
	sendJSONStatusOrLog(w, log, code, wrapError(err))
}

// authorize checks that the request carries a token for session id.
func authorize(r *http.Request, id string) error {
	claims, ok := middleware.SessionClaims(r.Context())
	if !ok {
		return ErrMissingToken
	}
	if claims.Subject != id {
		return ErrForeignToken
	}
	return nil
}
