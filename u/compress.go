package u

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionBzip2
	CompressionZstd
	CompressionBrotli
)

var ErrUnsupportedCompression = errors.New("unsupported compression")

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionBzip2:
		return "bzip2"
	case CompressionZstd:
		return "zstd"
	case CompressionBrotli:
		return "br"
	}
	return fmt.Sprintf("Compression(%d)", int(c))
}

// CompressionFromName detects compression from file extension
// of a path, url or object name
// TODO: could sniff file content instead of checking file extension
func CompressionFromName(name string) Compression {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		return CompressionGzip
	case ".bz2":
		return CompressionBzip2
	case ".zst", ".zstd":
		return CompressionZstd
	case ".br":
		return CompressionBrotli
	}
	return CompressionNone
}

// CompressionFromEncoding maps http Content-Encoding value to Compression
func CompressionFromEncoding(enc string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(enc)) {
	case "", "identity":
		return CompressionNone, nil
	case "gzip", "x-gzip":
		return CompressionGzip, nil
	case "zstd":
		return CompressionZstd, nil
	case "br":
		return CompressionBrotli, nil
	}
	return CompressionNone, fmt.Errorf("%w: '%s'", ErrUnsupportedCompression, enc)
}

// implement io.ReadCloser over underlying io.Closer wrapped with io.Reader.
// Close() closes the decompressor (if it needs closing) and the underlying closer
type readerWrapped struct {
	r      io.Reader
	closer io.Closer
}

func (rc *readerWrapped) Read(p []byte) (int, error) {
	return rc.r.Read(p)
}

func (rc *readerWrapped) Close() error {
	var err error
	switch r := rc.r.(type) {
	case *zstd.Decoder:
		r.Close()
	case io.Closer:
		err = r.Close()
	}
	if rc.closer != nil {
		err = FirstErr(err, rc.closer.Close())
	}
	return err
}

// NewDecompressingReader returns a reader that decompresses r.
// Closing it closes r if r is an io.Closer
func NewDecompressingReader(r io.Reader, c Compression) (io.ReadCloser, error) {
	closer, _ := r.(io.Closer)
	var dr io.Reader
	var err error
	switch c {
	case CompressionNone:
		if closer != nil {
			return r.(io.ReadCloser), nil
		}
		return io.NopCloser(r), nil
	case CompressionGzip:
		dr, err = gzip.NewReader(r)
	case CompressionBzip2:
		dr = bzip2.NewReader(r)
	case CompressionZstd:
		dr, err = zstd.NewReader(r)
	case CompressionBrotli:
		dr = brotli.NewReader(r)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedCompression, c)
	}
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}
	return &readerWrapped{r: dr, closer: closer}, nil
}

// OpenFileMaybeCompressed opens a file that might be compressed with gzip
// or bzip2 or zstd or brotli
func OpenFileMaybeCompressed(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return NewDecompressingReader(f, CompressionFromName(path))
}

func zstdNewWriter(dst io.Writer) (*zstd.Encoder, error) {
	// in my tests:
	// - zstd.SpeedBestCompression is much slower and not much better
	// - default concurrency is GONUMPROCS() but adding concurrency of any value
	//   doesn't consistently speed things up
	return zstd.NewWriter(dst, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}

// NewCompressingWriter returns a writer that compresses to w.
// Close() flushes compressed data but doesn't close w.
// There is no bzip2 compressor
func NewCompressingWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionGzip:
		return gzip.NewWriterLevel(w, gzip.BestCompression)
	case CompressionZstd:
		return zstdNewWriter(w)
	case CompressionBrotli:
		return brotli.NewWriterLevel(w, brotli.DefaultCompression), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedCompression, c)
}

func CompressData(d []byte, c Compression) ([]byte, error) {
	var dst bytes.Buffer
	w, err := NewCompressingWriter(&dst, c)
	if err != nil {
		return nil, err
	}
	_, err = w.Write(d)
	err2 := w.Close()
	if err = FirstErr(err, err2); err != nil {
		return nil, err
	}
	return dst.Bytes(), nil
}

func DecompressData(d []byte, c Compression) ([]byte, error) {
	r, err := NewDecompressingReader(bytes.NewReader(d), c)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
