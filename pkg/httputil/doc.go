// Package httputil fetches remote source files with retries.
//
// # Retry
//
// [Retry] runs an operation with exponential backoff. Only errors wrapped in
// [RetryableError] are retried; everything else is returned at once.
//
// # Fetch
//
// [Fetch] downloads a URL with a per-request timeout and classifies the
// outcome:
//
//   - network failures and 5xx responses are retried
//   - 404 becomes a NOT_FOUND error
//   - any other non-2xx status becomes a NETWORK_ERROR
//
//	body, err := httputil.Fetch(ctx, "https://example.com/hello.py", httputil.FetchOptions{})
package httputil
