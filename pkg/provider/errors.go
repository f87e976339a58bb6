package provider

import (
	"context"
	"net/http"
	"strconv"

	"github.com/loomware/agentcore/pkg/aierrors"
)

// MapHTTPError implements §7's HTTP-status-to-taxonomy mapping, shared by
// every provider client: 401/403->Authentication, 429->RateLimit (honoring a
// Retry-After header when present), 5xx/408->Service(recoverable),
// other 4xx->Service(non-recoverable).
func MapHTTPError(providerName string, statusCode int, body []byte, headers http.Header) *aierrors.Error {
	message := string(body)

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return aierrors.NewAuthentication(providerName, message)

	case statusCode == http.StatusTooManyRequests:
		var retryAfter *int
		if raw := headers.Get("Retry-After"); raw != "" {
			if seconds, err := strconv.Atoi(raw); err == nil {
				retryAfter = &seconds
			}
		}
		return aierrors.NewRateLimit(providerName, message, retryAfter)

	default:
		requestID := headers.Get("x-request-id")
		if requestID == "" {
			requestID = headers.Get("request-id")
		}
		return aierrors.NewService(providerName, statusCode, message, requestID)
	}
}

// MapNetworkError wraps a transport-level failure (connection refused,
// timeout, DNS) as a recoverable Network error.
func MapNetworkError(message string, cause error) *aierrors.Error {
	return aierrors.NewNetwork(message, cause, false)
}

// MapDecodeError wraps a malformed-response-body failure as Unknown, since
// it indicates an unexpected provider wire format rather than a classified
// failure mode.
func MapDecodeError(message string, cause error) *aierrors.Error {
	return aierrors.NewUnknown(message, cause)
}

// MapStreamError classifies a mid-stream read failure. If ctx was
// cancelled or timed out, the read failure is a symptom rather than the
// cause: it's reported as the terminal, non-recoverable Cancelled error
// per §5 instead of a transient Network one, so callers don't retry a
// stream the caller itself gave up on.
func MapStreamError(ctx context.Context, message string, cause error) *aierrors.Error {
	if err := ctx.Err(); err != nil {
		return aierrors.NewCancelled(message)
	}
	return MapNetworkError(message, cause)
}
