package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	gcs "cloud.google.com/go/storage"

	"github.com/oksasatya/suraksha-api/internal/domain/storage"
	"github.com/oksasatya/suraksha-api/pkg/helpers"
)

// GCS stores blobs in a Google Cloud Storage bucket. URLs are either the
// public object URL or, when signing is enabled, a V4 signed GET URL.
type GCS struct {
	client    *gcs.Client
	bucket    string
	signed    bool
	signedTTL time.Duration
}

func NewGCS(client *gcs.Client, bucket string, signed bool, signedTTL time.Duration) (*GCS, error) {
	if client == nil || bucket == "" {
		return nil, errors.New("gcs not configured")
	}
	return &GCS{client: client, bucket: bucket, signed: signed, signedTTL: signedTTL}, nil
}

func (g *GCS) Put(ctx context.Context, path string, r io.Reader, contentType string) error {
	_, err := helpers.UploadObject(ctx, g.client, g.bucket, path, contentType, r)
	return err
}

func (g *GCS) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	rc, err := g.client.Bucket(g.bucket).Object(path).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, storage.ErrObjectNotFound
	}
	return rc, err
}

func (g *GCS) URL(path string) (string, error) {
	if !g.signed {
		return helpers.PublicURL(g.bucket, path), nil
	}
	u, err := g.client.Bucket(g.bucket).SignedURL(path, &gcs.SignedURLOptions{
		Scheme:  gcs.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(g.signedTTL),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", storage.ErrURLUnavailable, err)
	}
	return u, nil
}

// URLsExpire is true in signed mode.
func (g *GCS) URLsExpire() bool { return g.signed }

func (g *GCS) Delete(ctx context.Context, path string) error {
	err := g.client.Bucket(g.bucket).Object(path).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return storage.ErrObjectNotFound
	}
	return err
}

var (
	_ storage.Gateway  = (*GCS)(nil)
	_ storage.Expiring = (*GCS)(nil)
)
