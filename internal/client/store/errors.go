package store

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/secretkey/internal/client/client"
	"github.com/dmitrijs2005/secretkey/internal/client/models"
)

var (
	// ErrSuperseded is returned by a page load whose result was discarded
	// because a newer load started after it.
	ErrSuperseded = errors.New("superseded by a newer load")
	// ErrPageOutOfRange is returned by bounded navigation.
	ErrPageOutOfRange = errors.New("page out of range")
)

// Kind is the class of an error returned by the Store.
type Kind int

const (
	KindNone Kind = iota
	KindValidation
	KindUnauthorized
	KindNotFound
	KindRemote
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not found"
	case KindCanceled:
		return "canceled"
	default:
		return "remote"
	}
}

// Classify maps err to its Kind. Any error that is not local validation,
// credential rejection, a missing resource or a cancellation is remote.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, models.ErrValidation), errors.Is(err, ErrPageOutOfRange):
		return KindValidation
	case errors.Is(err, client.ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, client.ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrSuperseded), errors.Is(err, context.Canceled):
		return KindCanceled
	default:
		return KindRemote
	}
}

// Message is the human-readable text of err as shown to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if Classify(err) == KindUnauthorized {
		return client.SessionExpiredMessage
	}
	var re *client.RemoteError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return err.Error()
}
