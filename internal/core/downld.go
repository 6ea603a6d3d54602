package core

import "context"

// ProgressFunc receives the cumulative number of bytes read so far.
type ProgressFunc func(received uint64)

// Downloader is the network side of a document run.
type Downloader interface {
	// Page returns the body of a listing page.
	Page(ctx context.Context, url string) (string, error)
	// Probe learns the byte length of url without transferring its body.
	Probe(ctx context.Context, url string) (uint64, error)
	// Fetch streams url into memory, reporting progress per chunk.
	Fetch(ctx context.Context, url string, expected uint64, onProgress ProgressFunc) ([]byte, error)
}
