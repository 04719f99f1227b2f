package resource

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// openS3 fetches s3://bucket/key using ambient AWS configuration
// (environment, shared config, instance metadata).
func (a *Accessor) openS3(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("s3 uri must be s3://bucket/key, got %s", u)
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	out, err := s3.NewFromConfig(cfg).GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching s3://%s/%s: %w", bucket, key, err)
	}
	return out.Body, nil
}

// openAzure fetches azblob://account/container/blob. Authentication is
// anonymous; private containers need a SAS token in the URI query.
func (a *Accessor) openAzure(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	account := u.Host
	container, blob, ok := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	if !ok || account == "" || container == "" || blob == "" {
		return nil, fmt.Errorf("azblob uri must be azblob://account/container/blob, got %s", u)
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", account)
	if u.RawQuery != "" {
		serviceURL += "?" + u.RawQuery
	}
	client, err := azblob.NewClientWithNoCredential(serviceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating azure client for %s: %w", account, err)
	}
	resp, err := client.DownloadStream(ctx, container, blob, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", u, err)
	}
	return resp.Body, nil
}
