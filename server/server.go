// Package server implements http api for extracting key-value pairs.
package server

import (
	"bytes"
	"embed"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/kjk/kvpairs/httplogger"
	"github.com/kjk/kvpairs/httputil"
	"github.com/kjk/kvpairs/kvp"
	"github.com/kjk/kvpairs/log"
	"github.com/kjk/kvpairs/u"
)

//go:embed static/*
var staticFS embed.FS

// DefaultMaxBodySize is the limit of a request body, after decompression
const DefaultMaxBodySize = 8 * 1024 * 1024

type Options struct {
	// 0 means DefaultMaxBodySize
	MaxBodySize int64
	// if not nil, every request is logged
	Logger *httplogger.Logger
}

// Server serves the extraction api
type Server struct {
	ext         *kvp.Extractor
	maxBodySize int64
	logger      *httplogger.Logger
	// maps url to its content
	static  map[string][]byte
	modTime time.Time
}

type HandlerFunc = func(w http.ResponseWriter, r *http.Request)

func New(ext *kvp.Extractor, opts *Options) *Server {
	u.PanicIf(ext == nil, "must provide extractor")
	if opts == nil {
		opts = &Options{}
	}
	s := &Server{
		ext:         ext,
		maxBodySize: opts.MaxBodySize,
		logger:      opts.Logger,
		static:      map[string][]byte{},
		modTime:     time.Now(),
	}
	if s.maxBodySize <= 0 {
		s.maxBodySize = DefaultMaxBodySize
	}
	d, err := fs.ReadFile(staticFS, "static/index.txt")
	u.Must(err)
	s.static["/"] = d
	s.static["/index.txt"] = d
	return s
}

func (s *Server) serveStatic(uri string) HandlerFunc {
	d, ok := s.static[uri]
	if !ok {
		return nil
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		http.ServeContent(w, r, uri, s.modTime, bytes.NewReader(d))
	}
}

// FindHandler returns a handler for uri or nil if there is none
func (s *Server) FindHandler(uri string) HandlerFunc {
	switch strings.ToLower(strings.TrimSuffix(uri, "/")) {
	case "/api/v1/extract":
		return s.handleExtract
	case "/api/v1/config":
		return s.handleConfig
	}
	return s.serveStatic(uri)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	timeStart := time.Now()
	cw := &httputil.CapturingResponseWriter{ResponseWriter: w}
	var extra []any
	// handlers add to extra things worth logging
	r = r.WithContext(withLogValues(r.Context(), &extra))

	if TryServeBadClient(cw, r) {
		log.Verbosef("bad client: %s %s\n", r.Method, r.URL.Path)
	} else if h := s.FindHandler(r.URL.Path); h != nil {
		h(cw, r)
	} else {
		httputil.ServeError(cw, "not found", http.StatusNotFound)
	}

	if s.logger != nil {
		err := s.logger.LogReq(r, cw.Code(), cw.Size, time.Since(timeStart), extra...)
		log.IfErrf(err)
	}
}
