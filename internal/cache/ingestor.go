package cache

import (
	"context"
	"log/slog"

	"github.com/forPelevin/supercut/internal/ports"
	"github.com/forPelevin/supercut/internal/types"
)

// Ingestor wraps another ingestor with the store. The locate function maps a
// media path to the transcript file actually fingerprinted, so cache entries
// follow the subtitle file's content rather than the (large) media file's.
type Ingestor struct {
	store  *Store
	inner  ports.Ingestor
	locate func(mediaPath string) (string, error)
}

var _ ports.Ingestor = (*Ingestor)(nil)

func NewIngestor(store *Store, inner ports.Ingestor, locate func(string) (string, error)) *Ingestor {
	return &Ingestor{store: store, inner: inner, locate: locate}
}

func (c *Ingestor) Ingest(ctx context.Context, sourcePath string) (types.Transcript, error) {
	subPath, err := c.locate(sourcePath)
	if err != nil {
		// nothing to fingerprint; let the inner ingestor report the miss
		return c.inner.Ingest(ctx, sourcePath)
	}
	fp, err := Fingerprint(subPath)
	if err != nil {
		return c.inner.Ingest(ctx, sourcePath)
	}

	if tr, ok, err := c.store.Get(sourcePath, fp); err == nil && ok {
		return tr, nil
	}

	tr, err := c.inner.Ingest(ctx, sourcePath)
	if err != nil {
		return types.Transcript{}, err
	}
	if err := c.store.Put(sourcePath, fp, tr); err != nil {
		// a failed cache write never fails the run
		slog.Warn("cache write failed", slog.String("source", sourcePath), slog.String("error", err.Error()))
	}
	return tr, nil
}
