package scrape

import (
	"context"
	"time"
)

// Fetcher retrieves a URL and returns the body plus metadata. Retry,
// rate limiting, and headless promotion are layered on as decorators.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// RecordSink consumes the stream of extracted profile records. Writers are
// not required to be safe for concurrent use; the runner serializes writes.
type RecordSink interface {
	Write(ctx context.Context, record ProfileRecord) error
	Close() error
}

// BlobStore archives raw page snapshots and returns a URI for the stored
// object.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// Clock returns the current time (swappable for tests).
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

// Now returns the wall-clock time in UTC.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
