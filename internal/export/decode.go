package export

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

// Format is a container a document may be published in.
type Format int

const (
	Plain Format = iota
	XZ
	LZMA
	Gzip
	Zstd
)

func (f Format) String() string {
	switch f {
	case XZ:
		return "xz"
	case LZMA:
		return "lzma"
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	default:
		return "plain"
	}
}

var (
	magicXZ   = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}
	magicGzip = []byte{0x1F, 0x8B}
	magicZstd = []byte{0x28, 0xB5, 0x2F, 0xFD}
)

// Detect sniffs the container format from the leading bytes of data.
func Detect(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, magicXZ):
		return XZ
	case bytes.HasPrefix(data, magicZstd):
		return Zstd
	case bytes.HasPrefix(data, magicGzip):
		return Gzip
	case isLZMAHeader(data):
		return LZMA
	default:
		return Plain
	}
}

// lzma "alone" streams have no magic. Accept the common encoder header:
// properties byte 0x5D followed by a power of two dictionary size.
func isLZMAHeader(data []byte) bool {
	if len(data) < lzma.HeaderLen || data[0] != 0x5D {
		return false
	}
	dict := uint32(data[1]) | uint32(data[2])<<8 | uint32(data[3])<<16 | uint32(data[4])<<24
	return dict >= 1<<12 && dict&(dict-1) == 0
}

// Decode returns the payload of data, unwrapping one layer of compression.
// Plain data is returned as is.
func Decode(data []byte) ([]byte, Format, error) {
	format := Detect(data)

	var (
		r   io.Reader
		err error
	)
	src := bytes.NewReader(data)
	switch format {
	case XZ:
		r, err = xz.NewReader(src)
	case LZMA:
		r, err = lzma.NewReader(src)
	case Gzip:
		var gz *gzip.Reader
		if gz, err = gzip.NewReader(src); err == nil {
			defer gz.Close()
			r = gz
		}
	case Zstd:
		var zr *zstd.Decoder
		if zr, err = zstd.NewReader(src); err == nil {
			defer zr.Close()
			r = zr
		}
	default:
		return data, Plain, nil
	}
	if err != nil {
		return nil, format, errors.Wrap(err, "Open "+format.String()+" stream failed")
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, format, errors.Wrap(err, "Decode "+format.String()+" stream failed")
	}
	return out, format, nil
}
