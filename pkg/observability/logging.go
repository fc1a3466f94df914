package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/stepper/pkg/domain"
)

// LoggingHooks logs every lifecycle event at info level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNavigate: func(ctx context.Context, e *domain.NavigationEvent) {
			logger.InfoContext(ctx, "navigate",
				"sequence", e.Sequence,
				"action", e.Action,
				"from", e.From,
				"to", e.To,
			)
		},
		OnCommit: func(ctx context.Context, e *domain.CommitEvent) {
			logger.InfoContext(ctx, "commit",
				"sequence", e.Sequence,
				"transaction", e.Transaction,
				"rows", e.Rows,
			)
		},
		OnCommitSkip: func(ctx context.Context, e *domain.CommitEvent) {
			logger.InfoContext(ctx, "commit_skip",
				"sequence", e.Sequence,
				"hash", e.Hash,
				"reason", e.Reason,
			)
		},
	}
}
