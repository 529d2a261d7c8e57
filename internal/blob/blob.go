// Package blob writes exported objects to a local directory or an
// S3-compatible bucket.
package blob

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

// Store writes objects by key. Put overwrites an existing key.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
}

// S3Config configures the S3 sink. Bucket and key prefix come from the
// destination URL.
type S3Config struct {
	Region string `yaml:"region" env:"WELLS_S3_REGION"`
	// Endpoint overrides the AWS endpoint, e.g. for MinIO.
	Endpoint  string `yaml:"endpoint" env:"WELLS_S3_ENDPOINT"`
	PathStyle bool   `yaml:"path_style" env:"WELLS_S3_PATH_STYLE"`
}

// Open returns the store for dest: "s3://bucket/prefix" selects S3,
// anything else is a local directory created on demand.
func Open(ctx context.Context, dest string, cfg S3Config) (Store, error) {
	if rest, ok := strings.CutPrefix(dest, "s3://"); ok {
		bucket, prefix, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return nil, fmt.Errorf("s3 destination %q has no bucket", dest)
		}
		s, err := NewS3(ctx, bucket, cfg)
		if err != nil {
			return nil, err
		}
		return WithPrefix(s, prefix), nil
	}
	if dest == "" {
		return nil, fmt.Errorf("empty export destination")
	}
	return NewFS(dest)
}

type prefixed struct {
	store  Store
	prefix string
}

// WithPrefix returns a Store that joins prefix onto every key.
func WithPrefix(s Store, prefix string) Store {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return s
	}
	return &prefixed{store: s, prefix: prefix}
}

func (p *prefixed) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	return p.store.Put(ctx, path.Join(p.prefix, key), r, contentType)
}
