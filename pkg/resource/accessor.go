// Package resource resolves rule-file URIs. Local paths, http(s), s3
// and azblob schemes are supported, with transparent decompression of
// gzip, xz and bzip2 payloads based on the resource name.
package resource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// Accessor opens rule resources. The zero value is not usable; construct
// with NewAccessor.
type Accessor struct {
	client *http.Client
	log    zerolog.Logger
}

// NewAccessor returns an Accessor using a dedicated HTTP client.
func NewAccessor(log zerolog.Logger) *Accessor {
	return &Accessor{
		client: &http.Client{Timeout: 60 * time.Second},
		log:    log,
	}
}

// Open resolves uri and returns its (decompressed) contents as a
// stream. Closing the returned reader releases every resource the open
// acquired; abandoning a scan therefore leaks nothing.
//
// Recognized forms:
//
//	/path/to/rules.yar            local file
//	file:///path/to/rules.yar     local file
//	https://host/rules.yar.gz     HTTP(S) fetch
//	s3://bucket/key               S3 object (ambient AWS config)
//	azblob://account/container/b  Azure blob (anonymous or SAS in URI)
func (a *Accessor) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parsing resource uri %q: %w", uri, err)
	}
	// single-letter schemes are Windows drive prefixes, not schemes
	if len(u.Scheme) == 1 {
		u.Scheme = ""
	}

	var rc io.ReadCloser
	switch u.Scheme {
	case "":
		rc, err = a.openFile(uri)
	case "file":
		rc, err = a.openFile(u.Path)
	case "http", "https":
		rc, err = a.openHTTP(ctx, uri)
	case "s3":
		rc, err = a.openS3(ctx, u)
	case "azblob":
		rc, err = a.openAzure(ctx, u)
	default:
		return nil, fmt.Errorf("unsupported resource scheme %q", u.Scheme)
	}
	if err != nil {
		return nil, err
	}

	a.log.Debug().Str("uri", uri).Msg("opened resource")
	return decompress(u.Path, uri, rc)
}

func (a *Accessor) openHTTP(ctx context.Context, uri string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", uri, err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", uri, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetching %s: unexpected status %s", uri, resp.Status)
	}
	return resp.Body, nil
}
