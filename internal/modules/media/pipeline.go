package media

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/santiyer/core/internal/storage"
)

// File is a single upload as it arrives from the admin form.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

var videoExtensions = map[string]bool{
	".mp4":  true,
	".webm": true,
	".mov":  true,
	".m4v":  true,
}

// IsVideo reports whether a file should bypass image compression.
func (f File) IsVideo() bool {
	if strings.HasPrefix(f.ContentType, "video/") {
		return true
	}
	return videoExtensions[strings.ToLower(path.Ext(f.Name))]
}

// IsVideoURL classifies a stored download URL by its object extension.
// Undecodable URLs count as non-video.
func IsVideoURL(rawURL string) bool {
	p, err := storage.PathFromURL(rawURL)
	if err != nil {
		return false
	}
	return videoExtensions[strings.ToLower(path.Ext(p))]
}

// Pipeline compresses and stores an ordered batch of files under one
// creation-scoped directory.
type Pipeline struct {
	blobs  storage.BlobStore
	opts   CompressOptions
	logger *zap.Logger
	now    func() time.Time
}

func NewPipeline(blobs storage.BlobStore, opts CompressOptions, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		blobs:  blobs,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

// Upload stores files sequentially under {kind}/{slug}-{timestamp}/{n}.{ext}
// and returns one download URL per input, in input order. Images are
// compressed first; videos pass through untouched. Any failure aborts the
// batch, so a partial batch never reaches the caller.
func (p *Pipeline) Upload(ctx context.Context, kind, slug string, files []File) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}

	dir := fmt.Sprintf("%s/%s-%d", kind, slug, p.now().Unix())
	urls := make([]string, 0, len(files))
	for i, f := range files {
		data := f.Data
		if !f.IsVideo() {
			compressed, err := Compress(f.Data, p.opts)
			if err != nil {
				return nil, fmt.Errorf("media: file %q: %w", f.Name, err)
			}
			data = compressed
		}

		objectPath := fmt.Sprintf("%s/%d%s", dir, i+1, extension(f.Name))
		if err := p.blobs.Put(ctx, objectPath, data, f.ContentType); err != nil {
			return nil, fmt.Errorf("media: upload %q: %w", f.Name, err)
		}

		p.logger.Debug("media uploaded",
			zap.String("path", objectPath),
			zap.Int("bytes", len(data)),
		)
		urls = append(urls, p.blobs.DownloadURL(objectPath))
	}
	return urls, nil
}

func extension(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		return ".bin"
	}
	return ext
}
