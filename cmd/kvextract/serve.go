package main

import (
	"context"
	"path/filepath"

	"github.com/kjk/kvpairs/httplogger"
	"github.com/kjk/kvpairs/httputil"
	"github.com/kjk/kvpairs/kvp"
	"github.com/kjk/kvpairs/log"
	"github.com/kjk/kvpairs/server"
)

func serve(ctx context.Context, ext *kvp.Extractor, o *options) error {
	opts := &server.Options{
		MaxBodySize: o.maxInput,
	}
	if o.logDir != "" {
		logger, err := httplogger.New(filepath.Join(o.logDir, "httplog"), &httplogger.Options{
			CompressRotated: true,
			DidRotate: func(path string) {
				log.Verbosef("rotated request log to '%s'\n", path)
			},
		})
		if err != nil {
			return err
		}
		defer logger.Close()
		opts.Logger = logger
	}
	srv := httputil.NewServer(o.serve, server.New(ext, opts))
	ready := func(addr string) {
		log.Logf("listening on http://%s\n", addr)
	}
	err := httputil.ListenAndServe(ctx, srv, ready)
	log.Logf("server stopped\n")
	return err
}
