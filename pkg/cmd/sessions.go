package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukex/trainflow/pkg/sessions"
)

// NewSessionStore returns a Redis store for redis:// and rediss:// URLs and an
// in-memory store otherwise.
func NewSessionStore(ctx context.Context, logger *slog.Logger, storeURL string, ttl time.Duration) (sessions.Store, error) {
	if strings.HasPrefix(storeURL, "redis://") || strings.HasPrefix(storeURL, "rediss://") {
		store, err := sessions.NewRedisStore(ctx, logger.With("module", "sessions"), storeURL, ttl)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis session store: %w", err)
		}

		return store, nil
	}

	store, err := sessions.NewMemoryStore(logger.With("module", "sessions"), sessions.WithTTL(ttl))
	if err != nil {
		return nil, fmt.Errorf("failed to create memory session store: %w", err)
	}

	return store, nil
}
