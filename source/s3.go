package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/kjk/kvpairs/minioutil"
)

func loadS3(ctx context.Context, uri string, opts *Options) ([]byte, error) {
	bucket, key, err := minioutil.ParseURL(uri)
	if err != nil {
		return nil, err
	}
	cfg := opts.S3
	if cfg == nil {
		cfg = minioutil.ConfigFromEnv()
	}
	if cfg == nil {
		return nil, errors.New("s3 credentials not set, need KVP_S3_ACCESS and KVP_S3_SECRET env variables")
	}
	mc, err := minioutil.New(cfg)
	if err != nil {
		return nil, err
	}
	r, size, err := mc.Open(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	// fail early without downloading
	if opts.MaxSize > 0 && size > opts.MaxSize && !isCompressed(key) {
		r.Close()
		return nil, fmt.Errorf("%w: object is %d bytes", ErrInputTooLarge, size)
	}
	return readDecompressed(r, key, opts.MaxSize)
}
