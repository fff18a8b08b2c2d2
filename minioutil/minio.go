package minioutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config for an S3-compatible storage (s3, r2, backblaze, minio)
type Config struct {
	Access   string
	Secret   string
	Endpoint string
	Region   string
	// if true, uses http instead of https (e.g. local minio)
	Insecure     bool
	RequestTrace io.Writer
}

// ConfigFromEnv reads config from KVP_S3_ACCESS, KVP_S3_SECRET,
// KVP_S3_ENDPOINT and KVP_S3_REGION env variables.
// Returns nil if access or secret is not set
func ConfigFromEnv() *Config {
	c := &Config{
		Access:   os.Getenv("KVP_S3_ACCESS"),
		Secret:   os.Getenv("KVP_S3_SECRET"),
		Endpoint: os.Getenv("KVP_S3_ENDPOINT"),
		Region:   os.Getenv("KVP_S3_REGION"),
	}
	if c.Access == "" || c.Secret == "" {
		return nil
	}
	if c.Endpoint == "" {
		c.Endpoint = "s3.amazonaws.com"
	}
	c.Endpoint, c.Insecure = trimScheme(c.Endpoint)
	return c
}

// "http://localhost:9000" => "localhost:9000", true
func trimScheme(endpoint string) (string, bool) {
	if s, ok := strings.CutPrefix(endpoint, "http://"); ok {
		return s, true
	}
	return strings.TrimPrefix(endpoint, "https://"), false
}

type Client struct {
	Client *minio.Client
	config *Config
}

func New(config *Config) (*Client, error) {
	if config == nil {
		return nil, errors.New("must provide config")
	}
	c := config
	if c.Access == "" || c.Secret == "" || c.Endpoint == "" {
		return nil, errors.New("must provide Access, Secret and Endpoint in config")
	}
	mc, err := minio.New(c.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.Access, c.Secret, ""),
		Region: c.Region,
		Secure: !c.Insecure,
	})
	if err != nil {
		return nil, err
	}
	if c.RequestTrace != nil {
		mc.TraceOn(c.RequestTrace)
	}
	return &Client{
		Client: mc,
		config: config,
	}, nil
}

// ParseURL parses "s3://bucket/path/to/key" into bucket and key
func ParseURL(uri string) (bucket string, key string, err error) {
	s, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("'%s' is not s3:// url", uri)
	}
	bucket, key, _ = strings.Cut(s, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("'%s' must be in format s3://bucket/key", uri)
	}
	return bucket, key, nil
}

// Open returns a reader for the object and its size
func (c *Client) Open(ctx context.Context, bucket, key string) (io.ReadCloser, int64, error) {
	obj, err := c.Client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, err
	}
	// GetObject is lazy, Stat() does the request and reports missing objects
	st, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, 0, err
	}
	return obj, st.Size, nil
}

func (c *Client) Exists(ctx context.Context, bucket, key string) bool {
	_, err := c.Client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	return err == nil
}

func (c *Client) UploadData(ctx context.Context, bucket, key string, data []byte) (minio.UploadInfo, error) {
	opts := minio.PutObjectOptions{
		ContentType: contentTypeForKey(key),
	}
	r := bytes.NewReader(data)
	return c.Client.PutObject(ctx, bucket, key, r, int64(len(data)), opts)
}

// "out.json.br" => application/json with ContentEncoding br
func contentTypeForKey(key string) string {
	ext := strings.ToLower(filepath.Ext(key))
	switch ext {
	case ".gz", ".br", ".zst", ".zstd", ".bz2":
		ext = strings.ToLower(filepath.Ext(strings.TrimSuffix(key, filepath.Ext(key))))
	}
	ct := mime.TypeByExtension(ext)
	if ct == "" {
		ct = "application/octet-stream"
	}
	return ct
}
