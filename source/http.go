package source

import (
	"context"
	"net/http"
	"net/url"

	"github.com/carlmjohnson/requests"
	"github.com/kjk/kvpairs/httputil"
)

const userAgent = "kvextract/1.0"

func loadHTTP(ctx context.Context, uri string, opts *Options) ([]byte, error) {
	var proxy *url.URL
	if opts.Proxy != "" {
		var err error
		proxy, err = url.Parse(opts.Proxy)
		if err != nil {
			return nil, err
		}
	}
	timeout := opts.timeout()
	client := httputil.NewTimeoutClient(timeout, timeout, proxy)

	var res []byte
	err := requests.
		URL(uri).
		Client(client).
		Header("User-Agent", userAgent).
		Handle(func(resp *http.Response) error {
			var err error
			res, err = readDecompressed(resp.Body, resp.Request.URL.Path, opts.MaxSize)
			return err
		}).
		Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return res, nil
}
