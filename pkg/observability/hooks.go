package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/gmboard/pkg/domain"
)

// Combine merges hook sets; each callback fans out in order.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, set := range sets {
		out.OnStepEnter = chain(out.OnStepEnter, set.OnStepEnter)
		out.OnRequestStart = chain(out.OnRequestStart, set.OnRequestStart)
		out.OnRequestComplete = chain(out.OnRequestComplete, set.OnRequestComplete)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}

// LoggingHooks writes every lifecycle event to logger.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			logger.InfoContext(ctx, "step_enter", "run_id", e.RunID, "step", e.Step)
		},
		OnRequestStart: func(ctx context.Context, e *domain.RequestEvent) {
			logger.DebugContext(ctx, "request_start", "run_id", e.RunID, "intent", e.Intent, "hidden", e.Hidden)
		},
		OnRequestComplete: func(ctx context.Context, e *domain.RequestEvent) {
			logger.InfoContext(ctx, "request_complete",
				"run_id", e.RunID,
				"intent", e.Intent,
				"hidden", e.Hidden,
				"category", e.Category,
				"failed", e.Failed,
				"duration", e.Duration,
			)
		},
	}
}
