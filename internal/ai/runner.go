// Package ai runs queued directives through an external code-execution agent.
//
// The agent is a black box: it receives the directive, runs in the daemon's
// working directory with the daemon's terminal, and reports success or
// failure through its exit status.
//
// IMPORTANT: This package may import internal/constants, internal/errors,
// internal/config, and internal/domain. It MUST NOT import internal/task,
// internal/daemon, or internal/cli.
package ai

import (
	"context"

	"github.com/mrz1836/faster/internal/domain"
)

// Runner executes one directive and blocks until the agent exits.
//
// On failure Run returns an error wrapping errors.ErrExecution together with
// a result whose Error field holds the message to record on the task.
type Runner interface {
	Run(ctx context.Context, req *domain.AIRequest) (*domain.AIResult, error)
}

// FailureMessage returns the message to persist for a failed run.
func FailureMessage(result *domain.AIResult, err error) string {
	if result != nil && result.Error != "" {
		return result.Error
	}
	if err != nil {
		return err.Error()
	}
	return "executor failed"
}
