package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/visast/pkg/errors"
)

// Defaults used by [Fetch] when the corresponding option is zero.
const (
	DefaultTimeout  = 10 * time.Second
	DefaultAttempts = 3
	DefaultDelay    = 500 * time.Millisecond
	DefaultMaxBytes = 16 << 20
)

// FetchOptions tunes [Fetch]. The zero value uses the defaults above.
type FetchOptions struct {
	Client   *http.Client
	Timeout  time.Duration // per attempt
	Attempts int
	Delay    time.Duration // before the first retry
	MaxBytes int64
}

func (o FetchOptions) withDefaults() FetchOptions {
	if o.Client == nil {
		o.Client = http.DefaultClient
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Attempts <= 0 {
		o.Attempts = DefaultAttempts
	}
	if o.Delay <= 0 {
		o.Delay = DefaultDelay
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = DefaultMaxBytes
	}
	return o
}

// Fetch downloads url and returns the response body.
func Fetch(ctx context.Context, url string, opts FetchOptions) ([]byte, error) {
	opts = opts.withDefaults()

	var body []byte
	err := Retry(ctx, opts.Attempts, opts.Delay, func() error {
		var err error
		body, err = fetchOnce(ctx, url, opts)
		return err
	})
	if err == nil {
		return body, nil
	}
	if errors.GetCode(err) != "" {
		return nil, err
	}
	return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", url)
}

func fetchOnce(ctx context.Context, url string, opts FetchOptions) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid URL %q", url)
	}
	resp, err := opts.Client.Do(req)
	if err != nil {
		return nil, &RetryableError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.New(errors.ErrCodeNotFound, "%s: %s", url, resp.Status)
	case resp.StatusCode >= 500:
		return nil, &RetryableError{Err: fmt.Errorf("%s: %s", url, resp.Status)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, errors.New(errors.ErrCodeNetwork, "%s: %s", url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, opts.MaxBytes+1))
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > opts.MaxBytes {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s: response larger than %d bytes", url, opts.MaxBytes)
	}
	return body, nil
}
