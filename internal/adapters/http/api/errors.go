package api

import (
	"errors"
	"net/http"

	"github.com/okian/nbapicks/internal/adapters/repository"
	service "github.com/okian/nbapicks/internal/app"
	"github.com/okian/nbapicks/internal/domain/calendar"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrMissingGameID = errors.New("gameId is required")
	ErrMissingTeamID = errors.New("teamId is required")
	ErrMissingID     = errors.New("id is required")
)

// Envelope error codes.
const (
	codeUnauthorized = "unauthorized"
	codeForbidden    = "forbidden"
	codeNotFound     = "not_found"
	codeBadRequest   = "bad_request"
	codeServerError  = "server_error"
)

// classify maps an error to a status, a code and a caller-safe message.
// Server-side failures never expose their cause.
func classify(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, codeUnauthorized, service.ErrUnauthorized.Error()
	case errors.Is(err, service.ErrPaymentRequired), errors.Is(err, service.ErrDailyLimit):
		return http.StatusForbidden, codeForbidden, err.Error()
	case errors.Is(err, service.ErrGameNotFound), errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, codeNotFound, err.Error()
	case errors.Is(err, calendar.ErrInvalidDate),
		errors.Is(err, service.ErrUnknownTeam),
		errors.Is(err, repository.ErrInvalidEntry),
		errors.Is(err, repository.ErrInvalidLimit),
		errors.Is(err, ErrBadRequest),
		errors.Is(err, ErrMissingGameID),
		errors.Is(err, ErrMissingTeamID),
		errors.Is(err, ErrMissingID):
		return http.StatusBadRequest, codeBadRequest, err.Error()
	case errors.Is(err, service.ErrNoScheduleSource):
		return http.StatusBadGateway, codeServerError, "schedule unavailable"
	}
	return http.StatusInternalServerError, codeServerError, "internal error"
}
