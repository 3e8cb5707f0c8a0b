package executor

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	apperrors "github.com/kbukum/dagkit/errors"
)

// backoffFor returns the delay before resubmitting a node. attempt counts
// the attempts already made, so the first retry passes 1.
func backoffFor(attempt int, cfg BackoffConfig) time.Duration {
	d := float64(cfg.Initial) * math.Pow(cfg.Factor, float64(attempt-1))

	if cfg.Jitter > 0 {
		spread := d * cfg.Jitter
		d += (rand.Float64()*2 - 1) * spread
	}

	if d > float64(cfg.Max) {
		d = float64(cfg.Max)
	}
	if d < 0 {
		d = float64(cfg.Initial)
	}
	return time.Duration(d)
}

// retryable reports whether a failed attempt may be resubmitted. Context
// errors never retry. Classified errors follow their code; anything else is
// treated as transient.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Retryable
	}
	return true
}
