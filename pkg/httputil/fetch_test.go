package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/visast/pkg/errors"
)

func fastOpts() FetchOptions {
	return FetchOptions{Delay: time.Millisecond, Timeout: time.Second}
}

func TestFetch_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("print('hi')\n"))
	}))
	defer srv.Close()

	body, err := Fetch(context.Background(), srv.URL, fastOpts())
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if string(body) != "print('hi')\n" {
		t.Errorf("body = %q", body)
	}
}

func TestFetch_Status(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   errors.Code
		calls  int32
	}{
		{"not found", http.StatusNotFound, errors.ErrCodeNotFound, 1},
		{"forbidden", http.StatusForbidden, errors.ErrCodeNetwork, 1},
		{"server error retried", http.StatusBadGateway, errors.ErrCodeNetwork, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := Fetch(context.Background(), srv.URL, fastOpts())
			if !errors.Is(err, tt.want) {
				t.Errorf("Fetch() error = %v, want %s", err, tt.want)
			}
			if got := calls.Load(); got != tt.calls {
				t.Errorf("calls = %d, want %d", got, tt.calls)
			}
		})
	}
}

func TestFetch_RecoversFromServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("x = 1"))
	}))
	defer srv.Close()

	body, err := Fetch(context.Background(), srv.URL, fastOpts())
	if err != nil || string(body) != "x = 1" {
		t.Errorf("Fetch() = %q, %v", body, err)
	}
}

func TestFetch_TooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("0123456789"))
	}))
	defer srv.Close()

	opts := fastOpts()
	opts.MaxBytes = 4
	if _, err := Fetch(context.Background(), srv.URL, opts); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Fetch() error = %v, want INVALID_INPUT", err)
	}
}
