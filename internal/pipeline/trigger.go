// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// RunFunc starts or resumes one pipeline run.
type RunFunc func(ctx context.Context, runID string) (string, error)

// Trigger starts a content run at a fixed interval. Runs are sequential:
// a tick that arrives while a run is in progress is dropped. A failed run
// is attempted again with the same run id, which resumes it from its
// checkpoints, up to the configured number of attempts.
//
// Separate processes each running a Trigger against the same database are
// not coordinated and may pick the same category.
type Trigger struct {
	run      RunFunc
	interval time.Duration
	attempts int
	newRunID func() string
}

// NewTrigger creates a trigger that calls run every interval. attempts
// below one is treated as one.
func NewTrigger(run RunFunc, interval time.Duration, attempts int) *Trigger {
	if attempts < 1 {
		attempts = 1
	}
	return &Trigger{
		run:      run,
		interval: interval,
		attempts: attempts,
		newRunID: NewRunID,
	}
}

// Start blocks, firing runs until ctx is cancelled. It returns nil on
// cancellation. A non-positive interval disables the trigger.
func (t *Trigger) Start(ctx context.Context) error {
	if t.interval <= 0 {
		slog.Info("post schedule disabled")
		return nil
	}

	slog.Info("post schedule started", "interval", t.interval, "attempts", t.attempts)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("post schedule stopped")
			return nil
		case <-ticker.C:
			t.Fire(ctx)
		}
	}
}

// Fire performs one scheduled run, including re-attempts, and returns the
// run's result.
func (t *Trigger) Fire(ctx context.Context) (string, error) {
	runID := t.newRunID()

	var (
		result string
		err    error
	)
	for attempt := 1; attempt <= t.attempts; attempt++ {
		result, err = t.run(ctx, runID)
		if err == nil {
			slog.Info("scheduled run finished", "run_id", runID, "attempt", attempt, "result", result)
			return result, nil
		}
		slog.Error("scheduled run failed", "run_id", runID, "attempt", attempt, "error", err)
		if ctx.Err() != nil {
			break
		}
	}
	return "", err
}
