package batch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// FailureKind is the closed classification for a failed operation.
type FailureKind int

const (
	KindUnknown FailureKind = iota
	KindRateLimited
	KindTimeout
	KindNetwork
)

func (k FailureKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// ClassifiedError lets collaborators that already know their failure class
// carry it through the executor.
type ClassifiedError struct {
	Kind FailureKind
	Err  error
}

func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ClassifiedError) Unwrap() error { return e.Err }

// Classified wraps err with an explicit failure kind.
func Classified(kind FailureKind, err error) error {
	return &ClassifiedError{Kind: kind, Err: err}
}

// Classify maps an operation error to a failure kind. Explicit wrapping wins;
// otherwise context and net errors are recognized, with a message-based
// fallback for collaborators that only return strings.
func Classify(err error) FailureKind {
	if err == nil {
		return KindUnknown
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "too many requests"),
		strings.Contains(msg, "429"):
		return KindRateLimited
	case strings.Contains(msg, "timeout"),
		strings.Contains(msg, "deadline"):
		return KindTimeout
	case strings.Contains(msg, "connection"),
		strings.Contains(msg, "network"),
		strings.Contains(msg, "unreachable"):
		return KindNetwork
	default:
		return KindUnknown
	}
}
