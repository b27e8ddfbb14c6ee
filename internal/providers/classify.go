// Package providers implements the ModelGateway contract against the
// supported generative backends. Each client converts the engine's turn
// model to the provider wire format and classifies failures into the
// engine's error taxonomy.
package providers

import (
	"net/http"
	"strings"

	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/engine"
)

// anthropicOverloaded is Anthropic's dedicated overload status.
const anthropicOverloaded = 529

// classifyStatus maps an HTTP status plus the raw error into the engine's
// taxonomy. Only overload conditions become the transient marker; quota
// and auth problems fail fast.
func classifyStatus(status int, err error) *engine.GatewayError {
	msg := strings.ToLower(err.Error())

	kind := engine.KindProvider
	switch {
	case status == http.StatusServiceUnavailable,
		status == anthropicOverloaded,
		strings.Contains(msg, "overloaded"),
		strings.Contains(msg, "service unavailable"):
		kind = engine.KindTransient
	case status == http.StatusTooManyRequests,
		status == http.StatusPaymentRequired,
		strings.Contains(msg, "resource_exhausted"),
		strings.Contains(msg, "quota"),
		strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "billing"):
		kind = engine.KindQuota
	case status == http.StatusUnauthorized,
		status == http.StatusForbidden,
		strings.Contains(msg, "api key"),
		strings.Contains(msg, "unauthorized"),
		strings.Contains(msg, "permission denied"):
		kind = engine.KindFatalConfig
	}

	return &engine.GatewayError{Kind: kind, Status: status, Err: err}
}

// extractHTTPStatus recovers the status code from an SDK error message
// when the SDK does not expose it structurally.
func extractHTTPStatus(err error) int {
	if err == nil {
		return 0
	}
	msg := err.Error()
	for _, probe := range []struct {
		needle string
		status int
	}{
		{"529", anthropicOverloaded},
		{"503", http.StatusServiceUnavailable},
		{"500", http.StatusInternalServerError},
		{"502", http.StatusBadGateway},
		{"504", http.StatusGatewayTimeout},
		{"429", http.StatusTooManyRequests},
		{"402", http.StatusPaymentRequired},
		{"401", http.StatusUnauthorized},
		{"403", http.StatusForbidden},
		{"400", http.StatusBadRequest},
	} {
		if strings.Contains(msg, probe.needle) {
			return probe.status
		}
	}
	return 0
}
