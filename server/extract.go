package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/kjk/kvpairs/format"
	"github.com/kjk/kvpairs/httputil"
	"github.com/kjk/kvpairs/kvp"
	"github.com/kjk/kvpairs/log"
	"github.com/kjk/kvpairs/u"
)

type logValuesKey struct{}

func withLogValues(ctx context.Context, vals *[]any) context.Context {
	return context.WithValue(ctx, logValuesKey{}, vals)
}

// addLogValues adds key/value pairs to request log entry of r
func addLogValues(r *http.Request, vals ...any) {
	if p, ok := r.Context().Value(logValuesKey{}).(*[]any); ok {
		*p = append(*p, vals...)
	}
}

func queryBool(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}

var errBodyTooLarge = errors.New("request body too large")

// readBody reads request body, decompressing it according to Content-Encoding.
// Both compressed and decompressed size must be <= maxSize
func readBody(w http.ResponseWriter, r *http.Request, maxSize int64) ([]byte, error) {
	c, err := u.CompressionFromEncoding(r.Header.Get("Content-Encoding"))
	if err != nil {
		return nil, err
	}
	body := http.MaxBytesReader(w, r.Body, maxSize)
	dr, err := u.NewDecompressingReader(body, c)
	if err != nil {
		return nil, err
	}
	defer dr.Close()
	d, err := io.ReadAll(io.LimitReader(dr, maxSize+1))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errBodyTooLarge
		}
		return nil, err
	}
	if int64(len(d)) > maxSize {
		return nil, errBodyTooLarge
	}
	return d, nil
}

func statusForBodyError(err error) int {
	switch {
	case errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, u.ErrUnsupportedCompression):
		return http.StatusUnsupportedMediaType
	}
	return http.StatusBadRequest
}

// POST /api/v1/extract?format=json&pretty=1&lines=1
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		httputil.ServeError(w, "method not allowed, use POST", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	kindStr := q.Get("format")
	if kindStr == "" {
		kindStr = "json"
	}
	kind, err := format.ParseKind(kindStr)
	if err != nil {
		httputil.ServeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	d, err := readBody(w, r, s.maxBodySize)
	if err != nil {
		httputil.ServeError(w, err.Error(), statusForBodyError(err))
		return
	}
	addLogValues(r, "insize", len(d))

	cfg := s.ext.Config()
	opts := &format.Options{
		Pretty: queryBool(r, "pretty"),
		Config: &cfg,
	}
	var buf bytes.Buffer
	nPairs := 0
	if queryBool(r, "lines") {
		err = s.ext.ExtractLines(string(d), func(line int, m map[string]string) error {
			nPairs += len(m)
			opts.Name = fmt.Sprintf("line %d", line)
			return format.Write(&buf, kind, kvp.SortedPairs(m), opts)
		})
	} else {
		var pairs []kvp.Pair
		pairs, err = s.ext.ExtractPairs(string(d))
		if err == nil {
			nPairs = len(pairs)
			err = format.Write(&buf, kind, pairs, opts)
		}
	}
	if err != nil {
		code := http.StatusInternalServerError
		var limitErr *kvp.LimitError
		if errors.As(err, &limitErr) {
			code = http.StatusUnprocessableEntity
		} else if errors.Is(err, kvp.ErrNotEncodable) {
			code = http.StatusBadRequest
		}
		log.ErrorEventFromRequest(r, err, "extract", "insize", len(d))
		httputil.ServeError(w, err.Error(), code)
		return
	}
	addLogValues(r, "pairs", nPairs)
	log.EventFromRequest(r, "extract", "insize", len(d), "pairs", nPairs, "format", kind.String())

	w.Header().Set("Content-Type", kind.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// ConfigView is json representation of kvp.Config
type ConfigView struct {
	KeyValueDelimiter string `json:"key_value_delimiter"`
	ItemDelimiters    string `json:"item_delimiters"`
	QuoteChar         string `json:"quote_char,omitempty"`
	EscapeChar        string `json:"escape_char,omitempty"`
	ValueAllowList    string `json:"value_allow_list,omitempty"`
	MaxPairs          uint64 `json:"max_pairs"`
}

func NewConfigView(c kvp.Config) *ConfigView {
	res := &ConfigView{
		KeyValueDelimiter: string(c.KeyValueDelimiter),
		ItemDelimiters:    string(c.ItemDelimiters),
		ValueAllowList:    string(c.ValueAllowList),
		MaxPairs:          c.MaxPairs,
	}
	if c.HasQuote {
		res.QuoteChar = string(c.QuoteChar)
	}
	if c.Escaping {
		res.EscapeChar = string(c.EscapeChar)
	}
	return res
}

// GET /api/v1/config
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		httputil.ServeError(w, "method not allowed, use GET", http.StatusMethodNotAllowed)
		return
	}
	httputil.ServeJSON(w, NewConfigView(s.ext.Config()), http.StatusOK)
}
