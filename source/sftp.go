package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/kjk/kvpairs/u"
	"github.com/melbahja/goph"
	"github.com/pkg/sftp"
)

type sftpLocation struct {
	user string
	host string
	port uint
	path string
}

// "sftp://user@host:2222/var/log/app.log"
func parseSFTPURL(uri string) (*sftpLocation, error) {
	pu, err := url.Parse(uri)
	if err != nil {
		return nil, err
	}
	if pu.Scheme != "sftp" || pu.Hostname() == "" || pu.Path == "" || pu.Path == "/" {
		return nil, fmt.Errorf("'%s' must be in format sftp://user@host[:port]/path", uri)
	}
	loc := &sftpLocation{
		host: pu.Hostname(),
		port: 22,
		path: pu.Path,
	}
	if pu.User != nil {
		loc.user = pu.User.Username()
	}
	if loc.user == "" {
		loc.user = os.Getenv("USER")
	}
	if s := pu.Port(); s != "" {
		port, err := strconv.ParseUint(s, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid port in '%s'", uri)
		}
		loc.port = uint(port)
	}
	return loc, nil
}

func sshAuth(keyPath string) (goph.Auth, error) {
	if keyPath == "" {
		keyPath = os.Getenv("KVP_SSH_KEY")
	}
	if keyPath == "" {
		return goph.UseAgent()
	}
	keyPath = u.ExpandTildeInPath(keyPath)
	if u.FileSize(keyPath) < 0 {
		return nil, fmt.Errorf("key file '%s' doesn't exist", keyPath)
	}
	return goph.Key(keyPath, "")
}

func loadSFTP(ctx context.Context, uri string, opts *Options) ([]byte, error) {
	loc, err := parseSFTPURL(uri)
	if err != nil {
		return nil, err
	}
	auth, err := sshAuth(opts.SSHKeyPath)
	if err != nil {
		return nil, err
	}
	hostKeyCallback, err := goph.DefaultKnownHosts()
	if err != nil {
		return nil, err
	}
	client, err := goph.NewConn(&goph.Config{
		User:     loc.user,
		Addr:     loc.host,
		Port:     loc.port,
		Auth:     auth,
		Timeout:  opts.timeout(),
		Callback: hostKeyCallback,
	})
	if err != nil {
		return nil, err
	}
	defer u.CloseNoError(client)

	sc, err := client.NewSftp()
	if err != nil {
		return nil, err
	}
	defer u.CloseNoError(sc)

	// sftp calls don't take a context, at least stop before the download
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return readSFTPFile(sc, loc.path, opts.MaxSize)
}

func readSFTPFile(sc *sftp.Client, path string, maxSize int64) ([]byte, error) {
	st, err := sc.Stat(path)
	if err != nil {
		return nil, err
	}
	if st.IsDir() {
		return nil, errors.New("is a directory")
	}
	if maxSize > 0 && st.Size() > maxSize && !isCompressed(path) {
		return nil, fmt.Errorf("%w: file is %d bytes", ErrInputTooLarge, st.Size())
	}
	f, err := sc.Open(path)
	if err != nil {
		return nil, err
	}
	return readDecompressed(f, path, maxSize)
}
