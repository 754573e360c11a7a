package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/malaebhub/malaeb-server/middleware"
	"github.com/malaebhub/malaeb-server/services"
)

type jsonResponse map[string]interface{}

// Machine-readable error codes surfaced to clients alongside the HTTP
// status.
const (
	codeUnauthenticated    = "unauthenticated"
	codeInvalidArgument    = "invalid-argument"
	codeFailedPrecondition = "failed-precondition"
	codeAlreadyExists      = "already-exists"
	codeUnknown            = "unknown"
)

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, code string, message string) {
	env := jsonResponse{"error": jsonResponse{"code": code, "message": message}}
	if err := writeJSON(w, status, env, nil); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusInternalServerError, codeUnknown, "an unexpected error occurred")
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, codeInvalidArgument, err.Error())
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, codeUnauthenticated, message)
}

// mapServiceErrorToHTTP translates service layer sentinels into coded
// HTTP responses. Missing resource preconditions get the 404 status so
// clients can tell "gone" from "not allowed yet", but the code stays
// failed-precondition for both.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	// Invalid arguments
	case errors.Is(err, services.ErrMissingParameters),
		errors.Is(err, services.ErrUsernameInvalid),
		errors.Is(err, services.ErrTeamNameInvalid),
		errors.Is(err, services.ErrAccountTypeInvalid),
		errors.Is(err, services.ErrResultRequired),
		errors.Is(err, services.ErrScoresIncomplete),
		errors.Is(err, services.ErrNoFieldsToUpdate),
		errors.Is(err, services.ErrInvalidAction):
		badRequestResponse(w, r, err)

	// Conflicts
	case errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrTeamNameTaken):
		errorResponse(w, r, http.StatusConflict, codeAlreadyExists, err.Error())

	// Missing resources
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, services.ErrTournamentNotFound),
		errors.Is(err, services.ErrMemberNotFound),
		errors.Is(err, services.ErrNotificationNotFound):
		errorResponse(w, r, http.StatusNotFound, codeFailedPrecondition, err.Error())

	// Business rule preconditions
	case errors.Is(err, services.ErrUserAlreadyExists),
		errors.Is(err, services.ErrMatchNotClassic),
		errors.Is(err, services.ErrMatchAlreadyOver),
		errors.Is(err, services.ErrMatchRefereeOnly),
		errors.Is(err, services.ErrMatchAwaitingReferee),
		errors.Is(err, services.ErrMatchCoachesOnly),
		errors.Is(err, services.ErrMatchPendingRestricted),
		errors.Is(err, services.ErrMatchInProgressLocked),
		errors.Is(err, services.ErrNotCoachOfMatch),
		errors.Is(err, services.ErrStartNotInFuture),
		errors.Is(err, services.ErrLocationInvalid),
		errors.Is(err, services.ErrRefereeRequired),
		errors.Is(err, services.ErrUserNotCoach),
		errors.Is(err, services.ErrNotTeamCoach),
		errors.Is(err, services.ErrCoachAlreadyInTeam),
		errors.Is(err, services.ErrSameCoachAndMember),
		errors.Is(err, services.ErrTeamNotEmpty),
		errors.Is(err, services.ErrTeamHasActiveMatches),
		errors.Is(err, services.ErrAccountTypeUnchanged),
		errors.Is(err, services.ErrStillTeamMember),
		errors.Is(err, services.ErrRefereeHasActiveMatches),
		errors.Is(err, services.ErrRefereeListedInTournament),
		errors.Is(err, services.ErrManagerHasActiveTournament),
		errors.Is(err, services.ErrUserNotManager),
		errors.Is(err, services.ErrNotTournamentManager),
		errors.Is(err, services.ErrUserNotReferee),
		errors.Is(err, services.ErrTeamNotInTournament),
		errors.Is(err, services.ErrRefereeNotInTournament),
		errors.Is(err, services.ErrTournamentNotPending),
		errors.Is(err, services.ErrActionAlreadySet):
		errorResponse(w, r, http.StatusUnprocessableEntity, codeFailedPrecondition, err.Error())

	default:
		serverErrorResponse(w, r, err)
	}
}

// callerID pulls the authenticated user id set by the auth middleware.
func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return "", false
	}
	return uid, true
}
