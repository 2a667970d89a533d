package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying every failure the importer can surface.
// Callers match with errors.Is; the Error wrapper carries the detail.
var (
	ErrConfig          = errors.New("config error")
	ErrAuth            = errors.New("authentication error")
	ErrProfileNotFound = errors.New("profile not found")
	ErrValidation      = errors.New("validation error")
	ErrDatabase        = errors.New("database error")
	ErrScraper         = errors.New("scraper error")
)

// Error is a tagged import error. Kind is one of the sentinel errors
// above and is what Unwrap exposes, so errors.Is(err, ErrDatabase)
// works across the whole pipeline.
type Error struct {
	Kind    error
	Message string
	Details string
	Err     error
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind.Error(), e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Message)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Cause returns the underlying error, if any.
func (e *Error) Cause() error {
	return e.Err
}

// New builds a tagged error.
func New(kind error, msg, details string, err error) *Error {
	if err != nil && details == "" {
		details = err.Error()
	}
	return &Error{Kind: kind, Message: msg, Details: details, Err: err}
}

// NewConfig reports missing or self-contradictory configuration,
// detected before any fetch or database mutation.
func NewConfig(details string) *Error {
	return New(ErrConfig, "invalid configuration", details, nil)
}

// NewAuth reports that the profile source rejected our credentials.
func NewAuth(details string, err error) *Error {
	return New(ErrAuth, "authentication failed", details, err)
}

// NewProfileNotFound reports that the source found no matching profile.
func NewProfileNotFound(ref string) *Error {
	return New(ErrProfileNotFound, "profile not found", fmt.Sprintf("no profile matches %q", ref), nil)
}

// NewValidation reports profile data that cannot be mapped.
func NewValidation(details string) *Error {
	return New(ErrValidation, "profile validation failed", details, nil)
}

// NewDatabase reports a persistence failure, either a connection
// problem or a constraint violation. Both are ErrDatabase so callers
// can distinguish bad data (ErrValidation) from a bad store.
func NewDatabase(msg string, err error) *Error {
	return New(ErrDatabase, msg, "", err)
}

// NewScraper reports a browser-level failure that is neither an auth
// rejection nor a missing profile.
func NewScraper(msg string, err error) *Error {
	return New(ErrScraper, msg, "", err)
}

// Stage names the pipeline stage a tagged error belongs to, for
// user-facing reporting.
func Stage(err error) string {
	switch {
	case errors.Is(err, ErrConfig):
		return "config"
	case errors.Is(err, ErrAuth), errors.Is(err, ErrProfileNotFound), errors.Is(err, ErrScraper):
		return "fetch"
	case errors.Is(err, ErrValidation):
		return "mapping"
	case errors.Is(err, ErrDatabase):
		return "persistence"
	default:
		return "unknown"
	}
}
