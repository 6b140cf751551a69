// Package cache stores byte blobs under string keys with optional expiry.
//
// visast caches two things: sources fetched from URLs (so re-rendering a
// remote file does not hit the network) and artifacts rendered by the HTTP
// server (so identical requests are answered without re-rendering).
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache is a key-value store for rendered and fetched data.
type Cache interface {
	// Get returns the data stored under key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Key namespaces.
const (
	NamespaceSource   = "source"
	NamespaceArtifact = "artifact"
)

// Key builds a cache key from a namespace and the parts that identify the
// entry, e.g. Key(NamespaceArtifact, "static", title, src).
func Key(namespace string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		// Length-prefix each part so ("ab","c") and ("a","bc") differ.
		h.Write([]byte{byte(len(p) >> 24), byte(len(p) >> 16), byte(len(p) >> 8), byte(len(p))})
		h.Write([]byte(p))
	}
	return namespace + ":" + hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Namespace returns the namespace part of a key built with [Key].
func Namespace(key string) string {
	ns, _, _ := strings.Cut(key, ":")
	return ns
}
