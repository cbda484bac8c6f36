package client

import "errors"

var (
	ErrUnavailable     = errors.New("server unavailable")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
	ErrNoContent       = errors.New("no content")
	ErrInvalidResponse = errors.New("invalid response")
	ErrBadCredentials  = errors.New("bad credentials")
)

// SessionExpiredMessage is shown whenever the server rejects the credential.
const SessionExpiredMessage = "session expired, please log in again"

// RemoteError is any failed call to the server. Message is the server's own
// message when it sent one, otherwise a fixed text for the operation. Err
// classifies the failure (ErrUnauthorized, ErrNotFound, ErrUnavailable, ...)
// and may be nil for plain server errors.
type RemoteError struct {
	Status  int
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	return e.Message
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
