// Package export hands the document bytes to the user: a file on disk or
// standard output, optionally decompressed first.
package export

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/edward-yakop/go-pubdoc/internal/misc"
	"github.com/pkg/errors"
)

// Stdout is the output name that writes to the process standard output.
const Stdout = "-"

var log = misc.NewLogger("Export")

// Options controls where and how a document is written.
type Options struct {
	// Path of the output file, or Stdout.
	Path string

	// Decompress unwraps xz, lzma, gzip or zstd documents.
	Decompress bool

	// Stdout is used when Path is Stdout. Default: os.Stdout
	Stdout io.Writer
}

// Write stores data according to opts and returns the number of bytes
// written.
func Write(data []byte, opts Options) (int64, error) {
	if opts.Decompress {
		decoded, format, err := Decode(data)
		if err != nil {
			return 0, err
		}
		if format != Plain {
			log.Debugf("Decoded %s document: %d -> %d bytes.", format, len(data), len(decoded))
		}
		data = decoded
	}

	if opts.Path == Stdout {
		w := opts.Stdout
		if w == nil {
			w = os.Stdout
		}
		n, err := w.Write(data)
		if err != nil {
			return int64(n), errors.Wrap(err, "Write document to stdout failed")
		}
		return int64(n), nil
	}

	return saveToDisk(bytes.NewReader(data), opts.Path)
}

func saveToDisk(body io.Reader, path string) (filesize int64, err error) {
	// Create dir if not exists
	dir := filepath.Dir(path)
	if err = misc.EnsureDir(dir); err != nil {
		return
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		err = errors.Wrap(err, "Create file ["+path+"] failed")
		return
	}

	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "Close file ["+path+"] failed")
		}
	}()
	filesize, err = io.Copy(f, body)
	if err != nil {
		err = errors.Wrap(err, "Saving document ["+path+"] failed")
		return
	}

	return
}
