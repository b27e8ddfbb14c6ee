package server

import (
	"errors"
	"net/http"

	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/engine"
)

// userMessage maps loop and gateway failures to an HTTP status and a
// message safe to show end users. Internal detail stays in the logs.
func userMessage(err error) (int, string) {
	switch {
	case engine.IsRetriesExhausted(err), engine.IsTransient(err):
		return http.StatusServiceUnavailable, "The model is overloaded, please try again shortly."
	case errors.Is(err, engine.ErrCorrectionsExhausted), errors.Is(err, engine.ErrMaxSteps):
		return http.StatusUnprocessableEntity, "I couldn't complete that request. Please rephrase it and try again."
	case engine.IsKind(err, engine.KindQuota):
		return http.StatusTooManyRequests, "Usage limit reached, please try again later."
	case engine.IsFatalConfig(err):
		return http.StatusInternalServerError, "The service is misconfigured. Please contact support."
	default:
		return http.StatusInternalServerError, "Something went wrong, please try again."
	}
}
