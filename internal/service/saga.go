package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// SagaStep is one unit of a multi-step privileged operation: an action plus
// the compensation that undoes it.
type SagaStep struct {
	Name       string
	Run        func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// RunSaga executes steps in order. On failure it runs the compensations of
// every completed step in reverse, logging each one, and returns the
// original error. Compensation failures are logged, never swallowed silently.
func RunSaga(ctx context.Context, logger *zap.Logger, steps []SagaStep) error {
	completed := make([]SagaStep, 0, len(steps))
	for _, step := range steps {
		if err := step.Run(ctx); err != nil {
			compensate(ctx, logger, completed)
			return fmt.Errorf("saga step %s: %w", step.Name, err)
		}
		completed = append(completed, step)
	}
	return nil
}

func compensate(ctx context.Context, logger *zap.Logger, completed []SagaStep) {
	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			logger.Error("saga compensation failed",
				zap.String("step", step.Name), zap.Error(err))
			continue
		}
		logger.Info("saga step compensated", zap.String("step", step.Name))
	}
}
