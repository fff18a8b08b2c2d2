package httplogger

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kjk/kvpairs/atomicfile"
	"github.com/kjk/kvpairs/filerotate"
	"github.com/kjk/kvpairs/siser"
	"github.com/kjk/kvpairs/u"
)

// Logger writes a siser record for each http request
// to hourly rotated files httplog-YYYY-MM-DD_HH.txt in a directory
type Logger struct {
	rec   siser.Record // re-usable for performance
	siser *siser.Writer
	file  *filerotate.File
	mu    sync.Mutex

	dir string
}

type Options struct {
	// if true, rotated files are compressed with brotli
	// to httplog-YYYY-MM-DD_HH.txt.br and the uncompressed file is deleted
	CompressRotated bool
	// called with path of the rotated file (compressed, if CompressRotated)
	DidRotate func(path string)
	// for tests
	Now func() time.Time
}

func New(dir string, opts *Options) (*Logger, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &Options{}
	}
	res := &Logger{
		dir: absDir,
	}

	didClose := func(path string, didRotate bool) {
		if !didRotate {
			return
		}
		if opts.CompressRotated {
			// TODO: compress in background, it blocks a request on rotation
			dst := path + ".br"
			if err := compressFile(dst, path, u.CompressionBrotli); err != nil {
				return
			}
			path = dst
		}
		if opts.DidRotate != nil {
			opts.DidRotate(path)
		}
	}

	res.file, err = filerotate.New(&filerotate.Config{
		DidClose:           didClose,
		PathIfShouldRotate: filerotate.MakeHourlyRotateInDir(absDir, "httplog-"),
		Now:                opts.Now,
	})
	if err != nil {
		return nil, err
	}
	res.siser = siser.NewWriter(res.file)
	return res, nil
}

func compressFile(dst, src string, c u.Compression) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()
	err = atomicfile.WriteFile(dst, func(w io.Writer) error {
		cw, err := u.NewCompressingWriter(w, c)
		if err != nil {
			return err
		}
		_, err = io.Copy(cw, f)
		return u.FirstErr(err, cw.Close())
	})
	if err != nil {
		return err
	}
	return os.Remove(src)
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.siser = nil
	return err
}

// some headers and not worth logging
var hdrsToNotLog = map[string]bool{
	"connection":                true,
	"sec-ch-ua-mobile":          true,
	"sec-fetch-dest":            true,
	"sec-ch-ua-platform":        true,
	"dnt":                       true,
	"upgrade-insecure-requests": true,
	"sec-fetch-site":            true,
	"sec-fetch-mode":            true,
	"sec-fetch-user":            true,
	"accept-language":           true,
	"cf-ray":                    true,
	"cf-visitor":                true,
	"x-request-start":           true,
	"cdn-loop":                  true,
	"x-forwarded-proto":         true,
	"authorization":             true,
	"cookie":                    true,
}

func shouldLogHeader(s string) bool {
	return !hdrsToNotLog[strings.ToLower(s)]
}

func (l *Logger) appendNonEmpty(k, v string) {
	if v != "" {
		_ = l.rec.Append(k, v)
	}
}

// LogReq logs a request. extra are additional key/value pairs
// e.g. number of extracted pairs
func (l *Logger) LogReq(r *http.Request, code int, size int64, dur time.Duration, extra ...any) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.siser == nil {
		return nil
	}

	rec := &l.rec
	rec.Reset()
	rec.Name = "httplog"
	_ = rec.Append("req", fmt.Sprintf("%s %s %d", r.Method, r.RequestURI, code))
	l.appendNonEmpty("host", r.Host)
	l.appendNonEmpty("ipaddr", RequestRemoteAddress(r))
	_ = rec.Write("size", size, "durmicro", dur.Microseconds())
	if len(extra) > 0 {
		if err := rec.Write(extra...); err != nil {
			return err
		}
	}
	for k, v := range r.Header {
		if shouldLogHeader(k) && len(v) > 0 {
			l.appendNonEmpty(k, v[0])
		}
	}
	_, err := l.siser.WriteRecord(rec)
	return err
}

// RequestRemoteAddress returns ip address of the client making the request,
// taking into account http proxies
func RequestRemoteAddress(r *http.Request) string {
	hdr := r.Header
	if fwd := hdr.Get("x-forwarded-for"); fwd != "" {
		// X-Forwarded-For is potentially a list of addresses separated with ","
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if ip := hdr.Get("x-real-ip"); ip != "" {
		return ip
	}
	// Request.RemoteAddr contains port, which we want to remove i.e.:
	// "[::1]:58292" => "[::1]"
	s := r.RemoteAddr
	if idx := strings.LastIndex(s, ":"); idx != -1 {
		return s[:idx]
	}
	return s
}
