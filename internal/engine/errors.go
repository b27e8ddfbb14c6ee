// Package engine implements the agent orchestration core: the conversation
// loop, the tool registry, retry with backoff and the error taxonomy shared
// by all gateway implementations.
package engine

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a gateway failure. Only KindTransient is retried;
// KindMalformedCall is recovered in-loop with a corrective turn; everything
// else propagates to the caller.
type ErrorKind int

const (
	// KindTransient means the backend reported temporary overload
	// ("model is overloaded", HTTP 503 and friends). Retried with backoff.
	KindTransient ErrorKind = iota
	// KindMalformedCall means the backend could not form a valid tool
	// call. Never retried; the loop injects a corrective turn instead.
	KindMalformedCall
	// KindQuota means the usage quota or billing limit is exhausted.
	// Failing fast here avoids wasting retry attempts.
	KindQuota
	// KindFatalConfig covers catalog/handler drift and missing
	// credentials. Aborts the invocation immediately.
	KindFatalConfig
	// KindProvider is any other backend-reported failure. Non-retryable.
	KindProvider
)

// String returns the wire-stable name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindMalformedCall:
		return "malformed_call"
	case KindQuota:
		return "quota"
	case KindFatalConfig:
		return "fatal_config"
	case KindProvider:
		return "provider"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// GatewayError wraps a backend failure with its classification.
type GatewayError struct {
	Kind    ErrorKind
	Status  int // HTTP status if applicable
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gateway error (%s): %s", e.Kind, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("gateway error (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("gateway error (%s): status %d", e.Kind, e.Status)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// NewGatewayError builds a classified gateway error.
func NewGatewayError(kind ErrorKind, err error, message string) *GatewayError {
	return &GatewayError{Kind: kind, Err: err, Message: message}
}

// KindOf returns the classification of err, defaulting to KindProvider for
// anything that is not a GatewayError.
func KindOf(err error) ErrorKind {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindProvider
}

// IsKind reports whether err carries the given classification.
func IsKind(err error, kind ErrorKind) bool {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Kind == kind
	}
	return false
}

// IsTransient reports whether err is the transient-overload marker.
func IsTransient(err error) bool { return IsKind(err, KindTransient) }

// IsMalformedCall reports whether the backend failed to form a valid tool call.
func IsMalformedCall(err error) bool { return IsKind(err, KindMalformedCall) }

// IsFatalConfig reports whether err is a configuration failure.
func IsFatalConfig(err error) bool { return IsKind(err, KindFatalConfig) }

// IsQuota reports whether err is a quota exhaustion failure.
func IsQuota(err error) bool { return IsKind(err, KindQuota) }

// Registry sentinels.
var (
	// ErrDuplicateTool is returned by Registry.Declare for an already
	// registered name.
	ErrDuplicateTool = errors.New("tool already declared")

	// ErrUnknownTool is returned by Registry.Resolve for an unregistered
	// name. A resolve failure for a model-originated call means the
	// catalog and the handlers drifted apart, which is a configuration
	// defect, not something to retry.
	ErrUnknownTool = errors.New("unknown tool")
)

// Loop sentinels.
var (
	// ErrCorrectionsExhausted means the per-invocation budget of
	// corrective turns (malformed calls plus policy rejections) ran out
	// against a persistently confused model.
	ErrCorrectionsExhausted = errors.New("correction attempts exhausted")

	// ErrMaxSteps means the loop hit its iteration guard without the
	// model producing a final text answer.
	ErrMaxSteps = errors.New("maximum loop steps exceeded")
)

// RetriesExhaustedError wraps the last failure after MaxAttempts transient
// retries.
type RetriesExhaustedError struct {
	Err      error
	Attempts int
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetriesExhaustedError) Unwrap() error { return e.Err }

// IsRetriesExhausted checks if err is a RetriesExhaustedError.
func IsRetriesExhausted(err error) bool {
	var re *RetriesExhaustedError
	return errors.As(err, &re)
}

// ToolValidationError indicates tool arguments failed JSON schema validation.
type ToolValidationError struct {
	ToolName string
	Problems []string
}

func (e *ToolValidationError) Error() string {
	return fmt.Sprintf("tool %s validation failed: %v", e.ToolName, e.Problems)
}
