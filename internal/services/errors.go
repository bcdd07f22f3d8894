package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPrecondition marks failures raised locally before any remote call.
	ErrPrecondition = errors.New("precondition error")
	// ErrAuth marks a rejected credential or an invalid verification result.
	ErrAuth = errors.New("authentication error")
	// ErrRemote marks a failure payload returned by the remote service.
	ErrRemote = errors.New("remote error")
	// ErrTransport marks calls that produced no response at all.
	ErrTransport = errors.New("transport error")
)

const fallbackMessage = "request failed; please try again"

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransport
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsPrecondition reports whether err was raised without contacting the gateway.
func IsPrecondition(err error) bool { return errors.Is(err, ErrPrecondition) }

// IsAuth reports whether err must force session invalidation.
func IsAuth(err error) bool { return errors.Is(err, ErrAuth) }

// Message resolves err to the single user-facing string callers surface.
// Remote payload text is preserved as given; transport failures collapse to a
// generic message so connection details never reach the user verbatim.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var remote *RemoteMessageError
	if errors.As(err, &remote) && strings.TrimSpace(remote.Message) != "" {
		return strings.TrimSpace(remote.Message)
	}
	switch {
	case errors.Is(err, ErrPrecondition), errors.Is(err, ErrAuth):
		msg := err.Error()
		if idx := strings.Index(msg, ": "); idx >= 0 {
			return msg[idx+2:]
		}
		return msg
	default:
		return fallbackMessage
	}
}

// RemoteMessageError carries the human-readable failure text from a remote
// error payload. It is always wrapped under ErrRemote or ErrAuth.
type RemoteMessageError struct {
	Message string
}

func (e *RemoteMessageError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return "remote failure"
	}
	return e.Message
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
