package services

import (
	"context"

	"github.com/dmitrijs2005/eventdrop/internal/logging"
)

// Saga step names. They appear in logs, metrics and response warnings.
const (
	StepDeactivatePrevious = "deactivate-previous"
	StepDeleteFolder       = "delete-folder"
	StepCountUploads       = "count-uploads"
)

const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Metrics receives counters from the services. See internal/server/metrics.
type Metrics interface {
	Compensation(step, outcome string)
	FileUploaded(size int64)
	FileSkipped(reason string)
}

type nopMetrics struct{}

func (nopMetrics) Compensation(string, string) {}
func (nopMetrics) FileUploaded(int64)          {}
func (nopMetrics) FileSkipped(string)          {}

// Warning is a best-effort step that failed without failing the operation.
type Warning struct {
	Step    string
	Subject string
	Err     error
}

// StepError is a failed operation together with the warnings collected
// before it failed (for instance a compensation that could not run).
type StepError struct {
	Err      error
	Warnings []Warning
}

func (e *StepError) Error() string { return e.Err.Error() }
func (e *StepError) Unwrap() error { return e.Err }

// saga tracks the best-effort steps of a multi-step operation.
type saga struct {
	logger   logging.Logger
	metrics  Metrics
	warnings []Warning
}

func newSaga(logger logging.Logger, metrics Metrics) *saga {
	return &saga{logger: logger, metrics: metrics}
}

// warn records a failed best-effort step and carries on.
func (s *saga) warn(ctx context.Context, step, subject string, err error) {
	s.logger.Warn(ctx, "step failed, continuing", "step", step, "subject", subject, "error", err)
	s.metrics.Compensation(step, OutcomeFailed)
	s.warnings = append(s.warnings, Warning{Step: step, Subject: subject, Err: err})
}

// compensate runs fn and records its outcome. The error is never returned.
func (s *saga) compensate(ctx context.Context, step, subject string, fn func(context.Context) error) {
	// the request may already be cancelled; the cleanup should still run
	ctx = context.WithoutCancel(ctx)

	if err := fn(ctx); err != nil {
		s.warn(ctx, step, subject, err)
		return
	}
	s.logger.Info(ctx, "compensation done", "step", step, "subject", subject)
	s.metrics.Compensation(step, OutcomeOK)
}

// fail wraps err with the collected warnings, if any.
func (s *saga) fail(err error) error {
	if len(s.warnings) == 0 {
		return err
	}
	return &StepError{Err: err, Warnings: s.warnings}
}
