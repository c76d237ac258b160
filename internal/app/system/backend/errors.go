package backend

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnavailable wraps transport failures: connection errors, timeouts
	// and unreadable responses.
	ErrUnavailable = errors.New("backend unavailable")
	// ErrMalformed is returned when a 2xx response body cannot be decoded.
	ErrMalformed = errors.New("backend response malformed")
)

// StatusError is a non-2xx response from the backend.
type StatusError struct {
	Op     string // logical operation, e.g. "units.list"
	Status int
	Body   []byte
	Detail string // human-readable message extracted from the body, if any
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend %s: status %d: %s", e.Op, e.Status, e.Detail)
	}
	return fmt.Sprintf("backend %s: status %d", e.Op, e.Status)
}

// Kind is the error taxonomy handlers translate into responses.
type Kind int

const (
	KindNone Kind = iota
	KindUnauthenticated
	KindNotFound
	KindInvalid
	KindUnavailable
	KindMalformed
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindNotFound:
		return "not_found"
	case KindInvalid:
		return "invalid"
	case KindUnavailable:
		return "unavailable"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Classify maps err onto the error taxonomy.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	var se *StatusError
	if errors.As(err, &se) {
		switch {
		case se.Status == http.StatusUnauthorized || se.Status == http.StatusForbidden:
			return KindUnauthenticated
		case se.Status == http.StatusNotFound:
			return KindNotFound
		case se.Status >= 500:
			return KindUnavailable
		default:
			return KindInvalid
		}
	}
	switch {
	case errors.Is(err, ErrUnavailable):
		return KindUnavailable
	case errors.Is(err, ErrMalformed):
		return KindMalformed
	}
	return KindUnknown
}

// AsStatus returns the StatusError in err's chain, if any.
func AsStatus(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

func wrapMalformed(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrMalformed, op, err)
}
