package format

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/kjk/kvpairs/assert"
	"github.com/kjk/kvpairs/kvp"
	"github.com/kjk/kvpairs/require"
	"github.com/kjk/kvpairs/siser"
	"github.com/vmihailenco/msgpack/v5"
	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v3"
)

var testPairs = []kvp.Pair{
	{Key: "age", Value: "31"},
	{Key: "name", Value: "neymar"},
	{Key: "team", Value: "psg fc"},
}

func marshalMust(t *testing.T, kind Kind, opts *Options) string {
	t.Helper()
	var buf bytes.Buffer
	err := Write(&buf, kind, testPairs, opts)
	require.NoError(t, err, kind.String())
	return buf.String()
}

func TestParseKind(t *testing.T) {
	for i, name := range Names() {
		k, err := ParseKind(name)
		assert.NoError(t, err)
		assert.Equal(t, Kind(i), k)
		assert.Equal(t, name, k.String())
	}
	k, err := ParseKind("")
	assert.NoError(t, err)
	assert.Equal(t, KindKV, k)
	k, err = ParseKind(" YML ")
	assert.NoError(t, err)
	assert.Equal(t, KindYAML, k)

	_, err = ParseKind("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.Equal(t, "Kind(42)", Kind(42).String())
	_, err = Marshal(Kind(42), testPairs, nil)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestKV(t *testing.T) {
	got := marshalMust(t, KindKV, nil)
	assert.Equal(t, "age:31\nname:neymar\nteam:psg fc\n", got)
	d, err := Marshal(KindKV, nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(d))
}

func TestLine(t *testing.T) {
	// default config has no quoting or escaping, space can't be encoded
	_, err := Marshal(KindLine, testPairs, nil)
	assert.ErrorIs(t, err, kvp.ErrNotEncodable)

	d, err := Marshal(KindLine, testPairs[:2], nil)
	assert.NoError(t, err)
	assert.Equal(t, "age:31,name:neymar\n", string(d))
}

func TestLineWithConfig(t *testing.T) {
	cfg := kvp.DefaultConfig()
	cfg.HasQuote = true
	cfg.QuoteChar = '"'
	got := marshalMust(t, KindLine, &Options{Config: &cfg})
	assert.Equal(t, "age:31,name:neymar,team:\"psg fc\"\n", got)

	e, err := kvp.New(cfg)
	require.NoError(t, err)
	m, err := e.ExtractString(strings.TrimSpace(got))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"age": "31", "name": "neymar", "team": "psg fc"}, m)
}

func TestJSON(t *testing.T) {
	got := marshalMust(t, KindJSON, nil)
	assert.Equal(t, `{"age":"31","name":"neymar","team":"psg fc"}`+"\n", got)

	got = marshalMust(t, KindJSON, &Options{Pretty: true})
	exp := `{
  "age": "31",
  "name": "neymar",
  "team": "psg fc"
}
`
	assert.Equal(t, exp, got)

	got = marshalMust(t, KindJSON, &Options{Color: true})
	assert.True(t, strings.Contains(got, "\x1b["), got)
}

func TestTOON(t *testing.T) {
	got := marshalMust(t, KindTOON, nil)
	assert.True(t, strings.HasSuffix(got, "\n"))
	for _, p := range testPairs {
		assert.True(t, strings.Contains(got, p.Key), got)
		assert.True(t, strings.Contains(got, p.Value), got)
	}
}

func TestYAML(t *testing.T) {
	got := marshalMust(t, KindYAML, nil)
	assert.Equal(t, "age: \"31\"\nname: neymar\nteam: psg fc\n", got)

	var m map[string]string
	require.NoError(t, yaml.Unmarshal([]byte(got), &m))
	assert.Equal(t, map[string]string{"age": "31", "name": "neymar", "team": "psg fc"}, m)

	d, err := Marshal(KindYAML, nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, "{}\n", string(d))
}

func TestMsgpack(t *testing.T) {
	d, err := Marshal(KindMsgpack, testPairs, nil)
	require.NoError(t, err)
	var m map[string]string
	require.NoError(t, msgpack.Unmarshal(d, &m))
	assert.Equal(t, map[string]string{"age": "31", "name": "neymar", "team": "psg fc"}, m)

	// sorted keys make the output stable
	d2, err := Marshal(KindMsgpack, testPairs, nil)
	require.NoError(t, err)
	assert.Equal(t, d, d2)
	assert.True(t, KindMsgpack.IsBinary())
}

func TestBSON(t *testing.T) {
	d, err := Marshal(KindBSON, testPairs, nil)
	require.NoError(t, err)
	var doc bson.D
	require.NoError(t, bson.Unmarshal(d, &doc))
	require.Len(t, doc, 3)
	for i, p := range testPairs {
		assert.Equal(t, p.Key, doc[i].Key)
		assert.Equal(t, p.Value, doc[i].Value)
	}
	assert.Equal(t, "application/bson", KindBSON.ContentType())
}

func TestSiser(t *testing.T) {
	got := marshalMust(t, KindSiser, &Options{Name: "line1"})
	assert.Equal(t, "--- 34 line1\nage: 31\nname: neymar\nteam: psg fc\n", got)

	ts := time.Date(2024, 1, 15, 10, 30, 45, 0, time.UTC)
	got = marshalMust(t, KindSiser, &Options{Name: "line2", Timestamp: ts})
	r := siser.NewReader(bufio.NewReader(strings.NewReader(got)))
	require.True(t, r.ReadNextRecord())
	assert.Equal(t, "line2", r.Record.Name)
	assert.True(t, ts.Equal(r.Record.Timestamp))
	assert.Equal(t, map[string]string{"age": "31", "name": "neymar", "team": "psg fc"}, r.Record.Map())

	// no name and no timestamp
	d, err := Marshal(KindSiser, []kvp.Pair{{Key: "age", Value: ""}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "--- 7 kvpairs\nage:+0\n", string(d))
	r = siser.NewReader(bufio.NewReader(bytes.NewReader(d)))
	require.True(t, r.ReadNextRecord())
	assert.Equal(t, "kvpairs", r.Record.Name)
	assert.Equal(t, map[string]string{"age": ""}, r.Record.Map())

	_, err = Marshal(KindSiser, []kvp.Pair{{Key: "a:b", Value: "c"}}, nil)
	assert.ErrorIs(t, err, siser.ErrInvalidKey)
}
