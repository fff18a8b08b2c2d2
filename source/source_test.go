package source

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/elazarl/goproxy"
	"github.com/kjk/kvpairs/assert"
	"github.com/kjk/kvpairs/require"
	"github.com/kjk/kvpairs/u"
	"github.com/pkg/sftp"
)

const input = "name:neymar, age:31\r\nteam:psg\r\n"

func TestKind(t *testing.T) {
	tests := [][2]string{
		{"-", "stdin"},
		{"http://example.com/a.log", "http"},
		{"https://example.com/a.log", "http"},
		{"s3://bucket/a.log", "s3"},
		{"sftp://me@host/a.log", "sftp"},
		{"a.log", "file"},
		{"/var/log/http.log.br", "file"},
	}
	for _, test := range tests {
		assert.Equal(t, test[1], Kind(test[0]), test[0])
	}
}

func TestLoadStdin(t *testing.T) {
	ctx := context.Background()
	d, err := Load(ctx, "-", &Options{Stdin: strings.NewReader(input)})
	require.NoError(t, err)
	assert.Equal(t, input, string(d))

	d, err = Load(ctx, "-", &Options{Stdin: strings.NewReader(input), NormalizeNewlines: true})
	require.NoError(t, err)
	assert.Equal(t, "name:neymar, age:31\nteam:psg\n", string(d))
}

func TestLoadFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	for _, c := range []u.Compression{u.CompressionNone, u.CompressionGzip, u.CompressionZstd, u.CompressionBrotli} {
		name := "in.txt"
		switch c {
		case u.CompressionGzip:
			name += ".gz"
		case u.CompressionZstd:
			name += ".zst"
		case u.CompressionBrotli:
			name += ".br"
		}
		path := filepath.Join(dir, name)
		d, err := u.CompressData([]byte(input), c)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(path, d, 0644))

		got, err := Load(ctx, path, nil)
		require.NoError(t, err, name)
		assert.Equal(t, input, string(got), name)
	}

	_, err := Load(ctx, filepath.Join(dir, "missing.txt"), nil)
	assert.Error(t, err)
}

func TestLoadTooLarge(t *testing.T) {
	ctx := context.Background()
	opts := &Options{Stdin: strings.NewReader(input), MaxSize: int64(len(input))}
	d, err := Load(ctx, "-", opts)
	require.NoError(t, err)
	assert.Equal(t, input, string(d))

	opts = &Options{Stdin: strings.NewReader(input), MaxSize: 10}
	_, err = Load(ctx, "-", opts)
	assert.ErrorIs(t, err, ErrInputTooLarge)

	// limit applies to decompressed size
	path := filepath.Join(t.TempDir(), "big.txt.br")
	d, err = u.CompressData([]byte(strings.Repeat("a:b ", 1000)), u.CompressionBrotli)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, d, 0644))
	_, err = Load(ctx, path, &Options{MaxSize: 1000})
	assert.ErrorIs(t, err, ErrInputTooLarge)
}

func newInputServer(t *testing.T) *httptest.Server {
	gz, err := u.CompressData([]byte(input), u.CompressionGzip)
	require.NoError(t, err)
	mux := http.NewServeMux()
	mux.HandleFunc("/in.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(input))
	})
	mux.HandleFunc("/in.txt.gz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(gz)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoadHTTP(t *testing.T) {
	ctx := context.Background()
	srv := newInputServer(t)

	d, err := Load(ctx, srv.URL+"/in.txt", nil)
	require.NoError(t, err)
	assert.Equal(t, input, string(d))

	d, err = Load(ctx, srv.URL+"/in.txt.gz", nil)
	require.NoError(t, err)
	assert.Equal(t, input, string(d))

	_, err = Load(ctx, srv.URL+"/missing.txt", nil)
	assert.Error(t, err)

	_, err = Load(ctx, srv.URL+"/in.txt", &Options{MaxSize: 5})
	assert.ErrorIs(t, err, ErrInputTooLarge)
}

func TestLoadHTTPViaProxy(t *testing.T) {
	ctx := context.Background()
	srv := newInputServer(t)

	var nProxied atomic.Int32
	proxy := goproxy.NewProxyHttpServer()
	proxy.OnRequest().DoFunc(func(r *http.Request, pctx *goproxy.ProxyCtx) (*http.Request, *http.Response) {
		nProxied.Add(1)
		return r, nil
	})
	proxySrv := httptest.NewServer(proxy)
	defer proxySrv.Close()

	d, err := Load(ctx, srv.URL+"/in.txt", &Options{Proxy: proxySrv.URL})
	require.NoError(t, err)
	assert.Equal(t, input, string(d))
	assert.Equal(t, int32(1), nProxied.Load())

	_, err = Load(ctx, srv.URL+"/in.txt", &Options{Proxy: "://bad"})
	assert.Error(t, err)
}

func TestParseSFTPURL(t *testing.T) {
	loc, err := parseSFTPURL("sftp://kjk@example.com:2222/var/log/app.log")
	require.NoError(t, err)
	assert.Equal(t, "kjk", loc.user)
	assert.Equal(t, "example.com", loc.host)
	assert.Equal(t, uint(2222), loc.port)
	assert.Equal(t, "/var/log/app.log", loc.path)

	loc, err = parseSFTPURL("sftp://root@10.0.0.1/a.txt")
	require.NoError(t, err)
	assert.Equal(t, uint(22), loc.port)

	for _, s := range []string{"sftp://host", "sftp://host/", "sftp:///a.txt", "sftp://h:99999/a.txt"} {
		_, err = parseSFTPURL(s)
		assert.Error(t, err, s)
	}
}

// newMemSFTP returns a client talking to an in-memory sftp server
func newMemSFTP(t *testing.T) *sftp.Client {
	c1, c2 := net.Pipe()
	srv := sftp.NewRequestServer(c1, sftp.InMemHandler())
	go srv.Serve()
	sc, err := sftp.NewClientPipe(c2, c2)
	require.NoError(t, err)
	t.Cleanup(func() {
		sc.Close()
		srv.Close()
	})
	return sc
}

func sftpWriteFile(t *testing.T, sc *sftp.Client, path string, d []byte) {
	f, err := sc.Create(path)
	require.NoError(t, err)
	_, err = f.Write(d)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestReadSFTPFile(t *testing.T) {
	sc := newMemSFTP(t)
	sftpWriteFile(t, sc, "/in.txt", []byte(input))
	gz, err := u.CompressData([]byte(input), u.CompressionGzip)
	require.NoError(t, err)
	sftpWriteFile(t, sc, "/in.txt.gz", gz)

	d, err := readSFTPFile(sc, "/in.txt", 0)
	require.NoError(t, err)
	assert.Equal(t, input, string(d))

	d, err = readSFTPFile(sc, "/in.txt.gz", 0)
	require.NoError(t, err)
	assert.Equal(t, input, string(d))

	_, err = readSFTPFile(sc, "/in.txt", 5)
	assert.ErrorIs(t, err, ErrInputTooLarge)

	_, err = readSFTPFile(sc, "/missing.txt", 0)
	assert.Error(t, err)
}

func TestLoadS3NoCredentials(t *testing.T) {
	t.Setenv("KVP_S3_ACCESS", "")
	t.Setenv("KVP_S3_SECRET", "")
	_, err := Load(context.Background(), "s3://bucket/in.txt", nil)
	assert.Error(t, err)

	_, err = Load(context.Background(), "s3://bucket", nil)
	assert.Error(t, err)
}
