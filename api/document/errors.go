package document

import (
	"github.com/edward-yakop/go-pubdoc/internal/cache"
	"github.com/edward-yakop/go-pubdoc/internal/core"
	"github.com/edward-yakop/go-pubdoc/internal/link"
	"github.com/pkg/errors"
)

var (
	ErrLinkNotFound   = link.ErrLinkNotFound
	ErrInvalidPattern = link.ErrInvalidPattern
	ErrMissingLength  = core.ErrMissingLength
)

type (
	NetworkError             = core.NetworkError
	StatusError              = core.StatusError
	TransferInterruptedError = core.TransferInterruptedError
	CacheIOError             = cache.IOError
)

// Kind classifies a run failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindLinkNotFound
	KindInvalidPattern
	KindMissingLength
	KindNetwork
	KindTransferInterrupted
	KindCacheIO
)

func (k Kind) String() string {
	switch k {
	case KindLinkNotFound:
		return "LinkNotFound"
	case KindInvalidPattern:
		return "InvalidPattern"
	case KindMissingLength:
		return "MissingLength"
	case KindNetwork:
		return "NetworkError"
	case KindTransferInterrupted:
		return "TransferInterrupted"
	case KindCacheIO:
		return "CacheIOError"
	default:
		return "Unknown"
	}
}

// KindOf maps err to its failure kind. Errors from outside the pipeline, and
// nil, are KindUnknown.
func KindOf(err error) Kind {
	var (
		interrupted *TransferInterruptedError
		netErr      *NetworkError
		ioErr       *CacheIOError
	)
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrLinkNotFound):
		return KindLinkNotFound
	case errors.Is(err, ErrInvalidPattern):
		return KindInvalidPattern
	case errors.Is(err, ErrMissingLength):
		return KindMissingLength
	case errors.As(err, &interrupted):
		return KindTransferInterrupted
	case errors.As(err, &netErr):
		return KindNetwork
	case errors.As(err, &ioErr):
		return KindCacheIO
	default:
		return KindUnknown
	}
}

// StageError is returned by Run and names the state that failed.
type StageError struct {
	Stage State
	Err   error
}

func (e *StageError) Error() string {
	return e.Stage.String() + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error { return e.Err }

func (e *StageError) Cause() error { return e.Err }

// Kind is shorthand for KindOf(e.Err).
func (e *StageError) Kind() Kind {
	return KindOf(e.Err)
}
