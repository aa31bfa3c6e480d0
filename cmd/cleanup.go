package cmd

import (
	"context"
	"time"

	"marketplace/internal/data/repository"

	"go.uber.org/zap"
)

// RunTokenCleanup periodically drops revoked and long-expired refresh tokens until ctx is done.
func RunTokenCleanup(ctx context.Context, tokens repository.RefreshTokenRepository, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := tokens.DeleteExpired(ctx)
			if err != nil {
				logger.Warn("Refresh token cleanup failed", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info("Stale refresh tokens removed", zap.Int64("count", n))
			}
		}
	}
}
