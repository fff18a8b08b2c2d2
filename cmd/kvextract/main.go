// kvextract extracts key-value pairs from text.
//
//	kvextract -i 'name:neymar, age:31'
//	kvextract -f https://example.com/app.log.gz -lines -format json
//	kvextract -serve :8080 -log-dir logs
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kjk/kvpairs/atomicfile"
	"github.com/kjk/kvpairs/format"
	"github.com/kjk/kvpairs/kvp"
	"github.com/kjk/kvpairs/log"
	"github.com/kjk/kvpairs/minioutil"
	"github.com/kjk/kvpairs/source"
	"github.com/kjk/kvpairs/u"
	"golang.org/x/term"
)

const (
	exitOK         = 0
	exitUsage      = 1
	exitExtraction = 2

	defaultMaxInput = 64 * 1024 * 1024
)

type options struct {
	input         string
	file          string
	lines         bool
	kvDelim       string
	items         string
	quote         string
	escape        bool
	escapeChar    string
	allow         string
	maxPairs      uint64
	maxPairsSet   bool
	maxInput      int64
	format        string
	pretty        bool
	noColor       bool
	out           string
	decodeEscapes bool
	proxy         string
	timeout       time.Duration
	serve         string
	logDir        string
	verbose       bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("kvextract", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.input, "i", "", "input text")
	fs.StringVar(&o.input, "input", "", "input text")
	fs.StringVar(&o.file, "f", "", "input file: path (maybe .gz, .bz2, .zst, .br), - for stdin, http(s)://, s3://bucket/key or sftp://user@host/path")
	fs.StringVar(&o.file, "file", "", "same as -f")
	fs.BoolVar(&o.lines, "lines", false, "extract each line separately")
	fs.StringVar(&o.kvDelim, "kv", "", "key-value delimiter (default ':')")
	fs.StringVar(&o.items, "items", "", `item delimiters, e.g. ",; " or "\t" (default ", ")`)
	fs.StringVar(&o.quote, "quote", "", "quoting character, e.g. '\"'")
	fs.BoolVar(&o.escape, "escape", false, `enable escaping with '\'`)
	fs.StringVar(&o.escapeChar, "escape-char", "", "escape character, implies -escape")
	fs.StringVar(&o.allow, "allow", "", "additional characters allowed in unquoted values, e.g. '.-/'")
	fs.Uint64Var(&o.maxPairs, "max-pairs", 0, "fail if there are more pairs than this (default 1048576)")
	fs.Int64Var(&o.maxInput, "max-input", defaultMaxInput, "max size of input in bytes")
	fs.StringVar(&o.format, "format", "kv", "output format: "+strings.Join(format.Names(), ", "))
	fs.BoolVar(&o.pretty, "pretty", false, "pretty-print json (colored in terminal)")
	fs.BoolVar(&o.noColor, "no-color", false, "don't color the output")
	fs.StringVar(&o.out, "o", "", "output file (compressed if ends with .gz, .zst or .br) or s3://bucket/key")
	fs.BoolVar(&o.decodeEscapes, "decode-escapes", false, `decode \n, \t, \xHH etc. in values`)
	fs.StringVar(&o.proxy, "proxy", "", "proxy for http(s) input")
	fs.DurationVar(&o.timeout, "timeout", 0, "timeout for remote input (default 2m)")
	fs.StringVar(&o.serve, "serve", "", "run http server on this address, e.g. :8080")
	fs.StringVar(&o.logDir, "log-dir", "", "directory for logs")
	fs.BoolVar(&o.verbose, "v", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	// -max-pairs 0 is a valid limit, different from not given
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "max-pairs" {
			o.maxPairsSet = true
		}
	})
	rest := fs.Args()
	if len(rest) > 1 || (len(rest) == 1 && o.file != "") {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " "))
	}
	if len(rest) == 1 {
		o.file = rest[0]
	}
	if o.input != "" && o.file != "" {
		return nil, errors.New("-i and -f are mutually exclusive")
	}
	return o, nil
}

func buildExtractor(o *options) (*kvp.Extractor, error) {
	b := kvp.NewBuilder()
	if o.kvDelim != "" {
		c, err := u.ParseChar(o.kvDelim)
		if err != nil {
			return nil, fmt.Errorf("-kv: %w", err)
		}
		b.WithKeyValueDelimiter(c)
	}
	if o.items != "" {
		cs, err := u.ParseChars(o.items)
		if err != nil {
			return nil, fmt.Errorf("-items: %w", err)
		}
		b.WithItemDelimiters(cs...)
	}
	if o.quote != "" {
		c, err := u.ParseChar(o.quote)
		if err != nil {
			return nil, fmt.Errorf("-quote: %w", err)
		}
		b.WithQuotingCharacter(c)
	}
	if o.escape {
		b.WithEscaping()
	}
	if o.escapeChar != "" {
		c, err := u.ParseChar(o.escapeChar)
		if err != nil {
			return nil, fmt.Errorf("-escape-char: %w", err)
		}
		b.WithEscapeCharacter(c)
	}
	if o.allow != "" {
		cs, err := u.ParseChars(o.allow)
		if err != nil {
			return nil, fmt.Errorf("-allow: %w", err)
		}
		b.WithValueSpecialCharacterAllowList(cs...)
	}
	if o.maxPairsSet {
		b.WithMaxNumberOfPairs(o.maxPairs)
	}
	return b.Build()
}

// isTerminal accepts stdin or stdout
func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func decodeValues(pairs []kvp.Pair) error {
	for i, p := range pairs {
		v, err := u.DecodeEscapes(p.Value)
		if err != nil {
			return fmt.Errorf("value of '%s': %w", p.Key, err)
		}
		pairs[i].Value = v
	}
	return nil
}

type extraction struct {
	ext   *kvp.Extractor
	o     *options
	kind  format.Kind
	color bool

	nPairs int
}

func (e *extraction) writePairs(w io.Writer, pairs []kvp.Pair, name string) error {
	if e.o.decodeEscapes {
		if err := decodeValues(pairs); err != nil {
			return err
		}
	}
	e.nPairs += len(pairs)
	cfg := e.ext.Config()
	opts := &format.Options{
		Pretty: e.o.pretty,
		Color:  e.color,
		Config: &cfg,
		Name:   name,
	}
	return format.Write(w, e.kind, pairs, opts)
}

func (e *extraction) render(w io.Writer, text string) error {
	if e.o.lines {
		return e.ext.ExtractLines(text, func(line int, m map[string]string) error {
			return e.writePairs(w, kvp.SortedPairs(m), fmt.Sprintf("line %d", line))
		})
	}
	pairs, err := e.ext.ExtractPairs(text)
	if err != nil {
		return err
	}
	return e.writePairs(w, pairs, "")
}

func writeOutput(ctx context.Context, path string, render func(w io.Writer) error) error {
	c := u.CompressionFromName(path)
	if strings.HasPrefix(path, "s3://") {
		bucket, key, err := minioutil.ParseURL(path)
		if err != nil {
			return err
		}
		cfg := minioutil.ConfigFromEnv()
		if cfg == nil {
			return errors.New("s3 credentials not set, need KVP_S3_ACCESS and KVP_S3_SECRET env variables")
		}
		var buf bytes.Buffer
		if err = render(&buf); err != nil {
			return err
		}
		d, err := u.CompressData(buf.Bytes(), c)
		if err != nil {
			return err
		}
		mc, err := minioutil.New(cfg)
		if err != nil {
			return err
		}
		_, err = mc.UploadData(ctx, bucket, key, d)
		return err
	}
	return atomicfile.WriteFile(u.ExpandTildeInPath(path), func(w io.Writer) error {
		cw, err := u.NewCompressingWriter(w, c)
		if err != nil {
			return err
		}
		err = render(cw)
		return u.FirstErr(err, cw.Close())
	})
}

func loadInput(ctx context.Context, o *options, stdin io.Reader) (string, string, error) {
	if o.input != "" {
		return o.input, "inline", nil
	}
	uri := o.file
	if uri == "" {
		if isTerminal(stdin) {
			return "", "", errors.New("no input, use -i, -f or pipe to stdin")
		}
		uri = "-"
	}
	opts := &source.Options{
		MaxSize: o.maxInput,
		Proxy:   o.proxy,
		Timeout: o.timeout,
		Stdin:   stdin,
		// \r would otherwise end up in values of the last pair in a line
		NormalizeNewlines: o.lines,
	}
	d, err := source.Load(ctx, uri, opts)
	if err != nil {
		return "", "", err
	}
	return string(d), source.Kind(uri), nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "%s\n", err)
		return exitUsage
	}
	log.Init(&log.Config{Dir: o.logDir, Out: stderr})
	defer log.Close()
	log.Verbose = o.verbose

	ext, err := buildExtractor(o)
	if err != nil {
		log.Logf("%s\n", err)
		return exitUsage
	}
	if o.serve != "" {
		if err = serve(ctx, ext, o); err != nil {
			log.Logf("%s\n", err)
			return exitUsage
		}
		return exitOK
	}

	kind, err := format.ParseKind(o.format)
	if err != nil {
		log.Logf("%s\n", err)
		return exitUsage
	}

	timeStart := time.Now()
	text, srcKind, err := loadInput(ctx, o, stdin)
	if err != nil {
		log.Logf("%s\n", err)
		return exitUsage
	}
	log.Verbosef("loaded %s from %s in %s\n", u.FormatSize(int64(len(text))), srcKind, u.FormatDuration(time.Since(timeStart)))

	e := &extraction{
		ext:   ext,
		o:     o,
		kind:  kind,
		color: o.out == "" && kind == format.KindJSON && o.pretty && !o.noColor && isTerminal(stdout),
	}
	render := func(w io.Writer) error {
		return e.render(w, text)
	}
	if o.out != "" {
		err = writeOutput(ctx, o.out, render)
	} else {
		err = render(stdout)
	}
	dur := time.Since(timeStart)
	if err != nil {
		log.Logf("%s\n", err)
		var limitErr *kvp.LimitError
		if errors.As(err, &limitErr) {
			log.Event("extract_failed", "source", srcKind, "insize", len(text), "error", err.Error())
			return exitExtraction
		}
		return exitUsage
	}
	log.EventWithDuration("extract", dur, "source", srcKind, "insize", len(text), "pairs", e.nPairs, "format", kind.String())
	log.Verbosef("extracted %d pairs in %s\n", e.nPairs, u.FormatDuration(dur))
	return exitOK
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
