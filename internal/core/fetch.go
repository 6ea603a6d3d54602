package core

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/edward-yakop/go-pubdoc/internal/misc"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

const (
	DefaultTimeout   = 5 * time.Minute
	DefaultUserAgent = "go-pubdoc/1.0"

	chunkSize = 32 << 10
	// Upper bound for the up-front buffer; larger documents still download,
	// the buffer just grows past it.
	maxPrealloc = 256 << 20
)

var (
	log = misc.NewLogger("Core")
)

// Options configures the HTTP client.
type Options struct {
	// Timeout bounds a whole exchange, body included. Zero means DefaultTimeout,
	// a negative value disables it.
	Timeout time.Duration

	// UserAgent defaults to DefaultUserAgent.
	UserAgent string
}

// HTTPDownload talks to the document host. Every method performs exactly one
// request and never retries.
type HTTPDownload struct {
	client *resty.Client
}

var _ Downloader = (*HTTPDownload)(nil)

func NewDownloader(opts Options) *HTTPDownload {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if timeout < 0 {
		timeout = 0
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		IdleConnTimeout:     90 * time.Second,
		// Content-Length must describe the bytes we store, not a gzip envelope.
		DisableCompression: true,
	}

	client := resty.New().
		SetTransport(transport).
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetRetryCount(0).
		SetLogger(log)

	return &HTTPDownload{
		client: client,
	}
}

// Timeout reports the limit applied to each exchange; zero means none.
func (h *HTTPDownload) Timeout() time.Duration {
	return h.client.GetClient().Timeout
}

// Page GETs url and returns its body as text.
func (h *HTTPDownload) Page(ctx context.Context, url string) (string, error) {
	resp, err := h.client.R().SetContext(ctx).Get(url)
	if err != nil {
		log.Warnf("Fetch page %s failed: %v.", url, err)
		return "", &NetworkError{URL: url, Err: err}
	}
	if !resp.IsSuccess() {
		log.Warnf("Fetch page %s failed %d:%s.", url, resp.StatusCode(), resp.Status())
		return "", &NetworkError{URL: url, Err: &StatusError{Code: resp.StatusCode(), Status: resp.Status()}}
	}

	log.Debugf("Fetched page %s (%d bytes).", url, len(resp.Body()))
	return string(resp.Body()), nil
}

// Probe opens a GET exchange, reads the headers and closes the body unread.
// Responses without a definite length (chunked, close-delimited) yield
// ErrMissingLength.
func (h *HTTPDownload) Probe(ctx context.Context, url string) (uint64, error) {
	resp, err := h.open(ctx, url)
	if err != nil {
		return 0, err
	}
	closeBody(resp.RawBody())

	length := resp.RawResponse.ContentLength
	if length < 0 {
		return 0, errors.WithMessagef(ErrMissingLength, "probe [%s]", url)
	}

	log.Debugf("Probed %s: %d bytes.", url, length)
	return uint64(length), nil
}

// Fetch streams the body of url into a buffer sized for expected bytes and
// calls onProgress after every chunk. The received size is not checked
// against expected.
func (h *HTTPDownload) Fetch(ctx context.Context, url string, expected uint64, onProgress ProgressFunc) ([]byte, error) {
	resp, err := h.open(ctx, url)
	if err != nil {
		return nil, err
	}
	body := resp.RawBody()
	defer closeBody(body)

	buf, err := readChunks(body, expected, onProgress)
	if err != nil {
		log.Errorf("Download %s interrupted after %d bytes: %v.", url, len(buf), err)
		return nil, &TransferInterruptedError{URL: url, Received: uint64(len(buf)), Err: err}
	}

	if uint64(len(buf)) != expected {
		log.Warnf("Download %s returned %d bytes, expected %d.", url, len(buf), expected)
	}
	return buf, nil
}

// open starts a streaming GET. On success the caller owns resp.RawBody().
func (h *HTTPDownload) open(ctx context.Context, url string) (*resty.Response, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		if resp != nil {
			closeBody(resp.RawBody())
		}
		log.Warnf("Request %s failed: %v.", url, err)
		return nil, &NetworkError{URL: url, Err: err}
	}

	if !resp.IsSuccess() {
		closeBody(resp.RawBody())
		log.Warnf("Request %s failed %d:%s.", url, resp.StatusCode(), resp.Status())
		return nil, &NetworkError{URL: url, Err: &StatusError{Code: resp.StatusCode(), Status: resp.Status()}}
	}

	return resp, nil
}

func readChunks(body io.Reader, expected uint64, onProgress ProgressFunc) ([]byte, error) {
	buf := make([]byte, 0, min(expected, maxPrealloc))
	chunk := make([]byte, chunkSize)

	var received uint64
	for {
		n, err := body.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			received += uint64(n)
			if onProgress != nil {
				onProgress(received)
			}
		}
		if err == io.EOF {
			return buf, nil
		}
		if err != nil {
			return buf, err
		}
	}
}

func closeBody(body io.ReadCloser) {
	if body != nil {
		_ = body.Close()
	}
}
