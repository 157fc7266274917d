package dashboard

import "errors"

// Sentinel kinds for dashboard client errors.
var (
	// ErrAuthExpired marks a 401 from the dashboard: the session cookies
	// are no longer valid. Never retried; callers should prompt for
	// re-authentication.
	ErrAuthExpired = errors.New("session expired")

	// ErrFetch marks a fetch that failed after exhausting retries.
	ErrFetch = errors.New("fetch failed")
)
