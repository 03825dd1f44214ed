package catalog

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Reindex calls Index immediately and then every d until ctx is done. Only
// the first Index error is returned; later failures are logged and the
// previous index is served until the next tick.
func (c *Catalog) Reindex(ctx context.Context, l logrus.FieldLogger, d time.Duration) error {
	if err := c.Index(ctx); err != nil {
		return err
	}

	t := time.NewTicker(d)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if err := c.Index(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				l.WithError(err).Error("reindexing")
			}
		}
	}
}
