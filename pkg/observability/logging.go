package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/pagecraft/pkg/domain"
)

// LogHooks returns callbacks that log every lifecycle event on logger.
// Commits are logged at debug level; failed saves at error level.
func LogHooks(logger *slog.Logger) domain.Hooks {
	if logger == nil {
		return domain.Hooks{}
	}
	history := func(ctx context.Context, e *domain.CommitEvent) {
		logger.DebugContext(ctx, string(e.Type),
			"project_id", e.ProjectID,
			"page_id", e.PageID,
		)
	}
	return domain.Hooks{
		OnCommit: func(ctx context.Context, e *domain.CommitEvent) {
			logger.DebugContext(ctx, "commit",
				"project_id", e.ProjectID,
				"page_id", e.PageID,
				"op", e.Op,
			)
		},
		OnUndo: history,
		OnRedo: history,
		OnSave: func(ctx context.Context, e *domain.SaveEvent) {
			logger.InfoContext(ctx, "project saved",
				"project_id", e.ProjectID,
				"duration", e.Duration,
			)
		},
		OnSaveError: func(ctx context.Context, e *domain.SaveEvent) {
			logger.ErrorContext(ctx, "save failed",
				"project_id", e.ProjectID,
				"duration", e.Duration,
				"err", e.Err,
			)
		},
	}
}
