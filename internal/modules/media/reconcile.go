package media

import (
	"context"

	"go.uber.org/zap"

	"github.com/santiyer/core/internal/storage"
)

// Outcome records one attempted blob delete during reconciliation.
type Outcome struct {
	URL  string
	Path string
	Err  error
}

// Reconciler removes blobs that an entity update or delete has orphaned.
// Deletes are best effort: failures are logged and collected, never
// propagated, because the document write has already committed.
type Reconciler struct {
	blobs  storage.BlobStore
	logger *zap.Logger
}

func NewReconciler(blobs storage.BlobStore, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{blobs: blobs, logger: logger}
}

// OnUpdate deletes exactly the URLs present in prev but absent from next.
func (r *Reconciler) OnUpdate(ctx context.Context, prev, next []string) []Outcome {
	keep := make(map[string]bool, len(next))
	for _, u := range next {
		keep[u] = true
	}

	removed := make([]string, 0, len(prev))
	seen := make(map[string]bool, len(prev))
	for _, u := range prev {
		if u == "" || keep[u] || seen[u] {
			continue
		}
		seen[u] = true
		removed = append(removed, u)
	}
	return r.deleteAll(ctx, removed)
}

// OnDelete deletes every URL the removed entity referenced.
func (r *Reconciler) OnDelete(ctx context.Context, urls []string) []Outcome {
	seen := make(map[string]bool, len(urls))
	unique := make([]string, 0, len(urls))
	for _, u := range urls {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		unique = append(unique, u)
	}
	return r.deleteAll(ctx, unique)
}

func (r *Reconciler) deleteAll(ctx context.Context, urls []string) []Outcome {
	if len(urls) == 0 {
		return nil
	}

	outcomes := make([]Outcome, 0, len(urls))
	for _, u := range urls {
		p, err := storage.PathFromURL(u)
		if err != nil {
			r.logger.Warn("orphan media url undecodable", zap.String("url", u), zap.Error(err))
			outcomes = append(outcomes, Outcome{URL: u, Err: err})
			continue
		}
		if err := r.blobs.Delete(ctx, p); err != nil {
			r.logger.Warn("orphan media delete failed", zap.String("path", p), zap.Error(err))
			outcomes = append(outcomes, Outcome{URL: u, Path: p, Err: err})
			continue
		}
		outcomes = append(outcomes, Outcome{URL: u, Path: p})
	}
	return outcomes
}
