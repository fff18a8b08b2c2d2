// Package source loads extractor input from stdin, local (maybe compressed)
// files, http(s) urls, s3 and sftp.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kjk/kvpairs/minioutil"
	"github.com/kjk/kvpairs/u"
)

var ErrInputTooLarge = errors.New("input too large")

const defaultTimeout = 2 * time.Minute

type Options struct {
	// 0 means no limit
	MaxSize int64
	// http(s) proxy url for http sources, e.g. http://localhost:8080
	Proxy string
	// credentials for s3:// sources. If nil, read from env variables
	S3 *minioutil.Config
	// private key for sftp:// sources. If empty, $KVP_SSH_KEY
	// and then ssh agent is used
	SSHKeyPath string
	// connect / read timeout for remote sources
	Timeout time.Duration
	// convert \r\n and \r to \n
	NormalizeNewlines bool

	// for tests, defaults to os.Stdin
	Stdin io.Reader
}

func (o *Options) timeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return defaultTimeout
}

// Kind returns a short name of a source: stdin, http, s3, sftp or file
func Kind(uri string) string {
	switch {
	case uri == "-":
		return "stdin"
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		return "http"
	case strings.HasPrefix(uri, "s3://"):
		return "s3"
	case strings.HasPrefix(uri, "sftp://"):
		return "sftp"
	}
	return "file"
}

// Load reads the whole input described by uri:
//   - "-" is stdin
//   - http:// and https:// urls
//   - s3://bucket/key
//   - sftp://user@host[:port]/path
//   - anything else is a local file path
//
// Files and objects whose names end with .gz, .bz2, .zst, .zstd or .br
// are decompressed.
func Load(ctx context.Context, uri string, opts *Options) ([]byte, error) {
	if opts == nil {
		opts = &Options{}
	}
	var d []byte
	var err error
	switch Kind(uri) {
	case "stdin":
		r := opts.Stdin
		if r == nil {
			r = os.Stdin
		}
		d, err = readAll(r, opts.MaxSize)
	case "http":
		d, err = loadHTTP(ctx, uri, opts)
	case "s3":
		d, err = loadS3(ctx, uri, opts)
	case "sftp":
		d, err = loadSFTP(ctx, uri, opts)
	default:
		d, err = loadFile(u.ExpandTildeInPath(uri), opts)
	}
	if err != nil {
		return nil, fmt.Errorf("loading '%s': %w", uri, err)
	}
	if opts.NormalizeNewlines {
		d = u.NormalizeNewlinesInPlace(d)
	}
	return d, nil
}

func loadFile(path string, opts *Options) ([]byte, error) {
	r, err := u.OpenFileMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	defer u.CloseNoError(r)
	return readAll(r, opts.MaxSize)
}

// readDecompressed reads r, decompressing based on name's extension. Closes r
func readDecompressed(r io.ReadCloser, name string, maxSize int64) ([]byte, error) {
	dr, err := u.NewDecompressingReader(r, u.CompressionFromName(name))
	if err != nil {
		return nil, err
	}
	defer dr.Close()
	return readAll(dr, maxSize)
}

// readAll is io.ReadAll that fails with ErrInputTooLarge if
// r has more than maxSize bytes
func readAll(r io.Reader, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		return io.ReadAll(r)
	}
	d, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(d)) > maxSize {
		return nil, fmt.Errorf("%w: more than %s", ErrInputTooLarge, u.FormatSize(maxSize))
	}
	return d, nil
}

func isCompressed(name string) bool {
	return u.CompressionFromName(name) != u.CompressionNone
}
