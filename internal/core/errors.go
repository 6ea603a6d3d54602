package core

import (
	"strconv"

	"github.com/pkg/errors"
)

var ErrMissingLength = errors.New("response does not advertise a content length")

// NetworkError reports a request that could not be completed: DNS, connect,
// TLS or a non-success status.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return "request [" + e.URL + "] failed: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Cause() error { return e.Err }

// StatusError is the cause of a NetworkError raised for a non-2xx response.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	if e.Status == "" {
		return "unexpected status " + strconv.Itoa(e.Code)
	}
	return "unexpected status " + e.Status
}

// TransferInterruptedError reports a body stream that ended before the server
// signalled completion.
type TransferInterruptedError struct {
	URL      string
	Received uint64
	Err      error
}

func (e *TransferInterruptedError) Error() string {
	return "transfer of [" + e.URL + "] interrupted after " +
		strconv.FormatUint(e.Received, 10) + " bytes: " + e.Err.Error()
}

func (e *TransferInterruptedError) Unwrap() error { return e.Err }

func (e *TransferInterruptedError) Cause() error { return e.Err }
