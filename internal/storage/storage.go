// Package storage abstracts the blob store behind the narrow surface the
// media pipeline needs: put, delete and durable download URLs.
package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// BlobStore is the durable object store for uploaded media.
type BlobStore interface {
	Put(ctx context.Context, path string, data []byte, contentType string) error
	Delete(ctx context.Context, path string) error
	// DownloadURL returns the durable public URL for a stored object. The
	// format is invertible via PathFromURL.
	DownloadURL(path string) string
}

// Durable URLs look like {base}/{bucket-encoded}/o/{path-encoded}?alt=media.
// The object path is recoverable from the segment between "/o/" and the
// first "?".
const (
	objectMarker = "/o/"
	urlQuery     = "alt=media"
)

// BuildDownloadURL renders the durable URL for path in bucket.
func BuildDownloadURL(base, bucket, path string) string {
	return fmt.Sprintf("%s/%s%s%s?%s",
		strings.TrimRight(base, "/"),
		url.PathEscape(bucket),
		objectMarker,
		url.PathEscape(path),
		urlQuery,
	)
}

// PathFromURL inverts BuildDownloadURL: it URL-decodes the segment between
// "/o/" and the first "?". Used by the orphan reconciler to map a stored
// URL back onto the blob path it must delete.
func PathFromURL(rawURL string) (string, error) {
	idx := strings.Index(rawURL, objectMarker)
	if idx < 0 {
		return "", fmt.Errorf("storage: url %q has no object marker", rawURL)
	}
	encoded := rawURL[idx+len(objectMarker):]
	if q := strings.IndexByte(encoded, '?'); q >= 0 {
		encoded = encoded[:q]
	}
	path, err := url.PathUnescape(encoded)
	if err != nil {
		return "", fmt.Errorf("storage: decode object path: %w", err)
	}
	if path == "" {
		return "", fmt.Errorf("storage: url %q has an empty object path", rawURL)
	}
	return path, nil
}
