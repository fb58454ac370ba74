// Google Cloud Storage Store backend, SPEC_FULL.md §12. Grounded on the
// cloud.google.com/go/storage dependency present in the pack's broader
// corpus for object-store access, extending the "gs://bucket/prefix" scheme.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package objstore

import (
	"context"
	"io"
	"net/url"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/GenomicDataInfrastructure/gdi-mini-node/config"
)

type gcsStore struct {
	client *gcs.Client
	bucket string
	prefix string
}

func newGCSStore(ctx context.Context, u *url.URL, _ *config.ObjectStoreSync) (Store, error) {
	bucket := u.Host
	prefix := u.Path
	if len(prefix) > 0 && prefix[0] == '/' {
		prefix = prefix[1:]
	}
	if prefix != "" && prefix[len(prefix)-1] != '/' {
		prefix += "/"
	}

	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, err
	}

	return &gcsStore{client: client, bucket: bucket, prefix: prefix}, nil
}

func (g *gcsStore) Prefix() string { return g.prefix }

func (g *gcsStore) List(ctx context.Context) ([]Object, error) {
	var out []Object
	it := g.client.Bucket(g.bucket).Objects(ctx, &gcs.Query{Prefix: g.prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, Object{Key: attrs.Name, Size: attrs.Size, ETag: attrs.Etag})
	}
	return out, nil
}

func (g *gcsStore) Download(ctx context.Context, key string, w io.WriterAt) error {
	r, err := g.client.Bucket(g.bucket).Object(key).NewReader(ctx)
	if err != nil {
		return err
	}
	defer r.Close()
	_, err = io.Copy(&sequentialWriter{w: w}, r)
	return err
}
