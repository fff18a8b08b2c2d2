// Package format renders extracted key-value pairs as text, json, toon,
// yaml, msgpack, bson or siser records.
package format

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kjk/kvpairs/kvp"
	"github.com/kjk/kvpairs/siser"
	"github.com/tidwall/pretty"
	"github.com/toon-format/toon-go"
	"github.com/vmihailenco/msgpack/v5"
	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v3"
)

type Kind int

const (
	// key:value, one pair per line
	KindKV Kind = iota
	// pairs re-encoded as a single line using extractor's config
	KindLine
	KindJSON
	KindTOON
	KindYAML
	KindMsgpack
	KindBSON
	KindSiser
)

var ErrUnknownFormat = errors.New("unknown format")

var kindNames = []string{"kv", "line", "json", "toon", "yaml", "msgpack", "bson", "siser"}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Names returns names of all formats, for usage messages
func Names() []string {
	return append([]string(nil), kindNames...)
}

// ParseKind returns format by its name, "" is kv
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "text", "txt":
		return KindKV, nil
	case "yml":
		return KindYAML, nil
	case "mpk":
		return KindMsgpack, nil
	}
	for i, name := range kindNames {
		if s == name {
			return Kind(i), nil
		}
	}
	return KindKV, fmt.Errorf("%w: '%s'", ErrUnknownFormat, s)
}

// IsBinary returns true for formats that shouldn't be printed to a terminal
func (k Kind) IsBinary() bool {
	return k == KindMsgpack || k == KindBSON
}

func (k Kind) ContentType() string {
	switch k {
	case KindJSON:
		return "application/json; charset=utf-8"
	case KindYAML:
		return "application/yaml; charset=utf-8"
	case KindMsgpack:
		return "application/msgpack"
	case KindBSON:
		return "application/bson"
	}
	return "text/plain; charset=utf-8"
}

type Options struct {
	// indent json
	Pretty bool
	// colorize json for terminal output
	Color bool
	// used by KindLine, kvp.DefaultConfig() if nil
	Config *kvp.Config
	// name and timestamp of siser records.
	// Name defaults to "kvpairs". If Timestamp is zero, it's not written
	Name      string
	Timestamp time.Time
}

// Write writes pairs to w in a given format.
// For text formats the output ends with a newline
func Write(w io.Writer, kind Kind, pairs []kvp.Pair, opts *Options) error {
	d, err := Marshal(kind, pairs, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(d)
	return err
}

func Marshal(kind Kind, pairs []kvp.Pair, opts *Options) ([]byte, error) {
	if opts == nil {
		opts = &Options{}
	}
	switch kind {
	case KindKV:
		return marshalKV(pairs), nil
	case KindLine:
		return marshalLine(pairs, opts)
	case KindJSON:
		return marshalJSON(pairs, opts)
	case KindTOON:
		return marshalTOON(pairs)
	case KindYAML:
		return marshalYAML(pairs)
	case KindMsgpack:
		return marshalMsgpack(pairs)
	case KindBSON:
		return marshalBSON(pairs)
	case KindSiser:
		return marshalSiser(pairs, opts)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, kind)
}

func marshalKV(pairs []kvp.Pair) []byte {
	var buf bytes.Buffer
	for _, p := range pairs {
		buf.WriteString(p.Key)
		buf.WriteByte(':')
		buf.WriteString(p.Value)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func marshalLine(pairs []kvp.Pair, opts *Options) ([]byte, error) {
	cfg := kvp.DefaultConfig()
	if opts.Config != nil {
		cfg = *opts.Config
	}
	s, err := kvp.EncodePairs(pairs, cfg)
	if err != nil {
		return nil, err
	}
	return []byte(s + "\n"), nil
}

func pairsToMap(pairs []kvp.Pair) map[string]string {
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		m[p.Key] = p.Value
	}
	return m
}

func marshalJSON(pairs []kvp.Pair, opts *Options) ([]byte, error) {
	// encoding/json writes map keys sorted
	d, err := json.Marshal(pairsToMap(pairs))
	if err != nil {
		return nil, err
	}
	if opts.Pretty || opts.Color {
		d = pretty.Pretty(d)
	} else {
		d = append(d, '\n')
	}
	if opts.Color {
		d = pretty.Color(d, nil)
	}
	return d, nil
}

func marshalTOON(pairs []kvp.Pair) ([]byte, error) {
	m := make(map[string]any, len(pairs))
	for _, p := range pairs {
		m[p.Key] = p.Value
	}
	d, err := toon.Marshal(m)
	if err != nil {
		return nil, err
	}
	if len(d) > 0 && d[len(d)-1] != '\n' {
		d = append(d, '\n')
	}
	return d, nil
}

func marshalYAML(pairs []kvp.Pair) ([]byte, error) {
	if len(pairs) == 0 {
		return []byte("{}\n"), nil
	}
	// a mapping node preserves the order of pairs
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, p := range pairs {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p.Value},
		)
	}
	return yaml.Marshal(node)
}

func marshalMsgpack(pairs []kvp.Pair) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(pairsToMap(pairs)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalBSON(pairs []kvp.Pair) ([]byte, error) {
	doc := make(bson.D, 0, len(pairs))
	for _, p := range pairs {
		doc = append(doc, bson.E{Key: p.Key, Value: p.Value})
	}
	return bson.Marshal(doc)
}

func marshalSiser(pairs []kvp.Pair, opts *Options) ([]byte, error) {
	rec := siser.Record{
		Name:      opts.Name,
		Timestamp: opts.Timestamp,
	}
	// header needs a name or a timestamp to be readable by siser.Reader
	if rec.Name == "" {
		rec.Name = "kvpairs"
	}
	for _, p := range pairs {
		if err := rec.Append(p.Key, p.Value); err != nil {
			return nil, err
		}
	}
	var buf bytes.Buffer
	w := siser.NewWriter(&buf)
	w.NoTimestamp = opts.Timestamp.IsZero()
	if _, err := w.WriteRecord(&rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
