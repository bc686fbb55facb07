package adapters

import (
	"bytes"
	"context"
	"fmt"
	"nettune/internal/domain/errors"
	"nettune/internal/domain/interfaces"
	"os/exec"
	"strings"
	"time"
)

// RealCommandExecutor is a CommandExecutor implementation that executes actual system commands
type RealCommandExecutor struct {
	defaultTimeout time.Duration
}

// NewRealCommandExecutor creates a new RealCommandExecutor.
// Execute applies defaultTimeout when it is positive.
func NewRealCommandExecutor(defaultTimeout time.Duration) interfaces.CommandExecutor {
	return &RealCommandExecutor{defaultTimeout: defaultTimeout}
}

// Execute executes a command and returns the result
func (e *RealCommandExecutor) Execute(ctx context.Context, command string, args ...string) ([]byte, error) {
	if e.defaultTimeout > 0 {
		return e.ExecuteWithTimeout(ctx, e.defaultTimeout, command, args...)
	}
	return e.run(ctx, command, args...)
}

// ExecuteWithTimeout executes a command with timeout
func (e *RealCommandExecutor) ExecuteWithTimeout(ctx context.Context, timeout time.Duration, command string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	output, err := e.run(ctx, command, args...)
	if err != nil {
		// Convert to timeout error when context deadline exceeded
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewTimeoutError(
				fmt.Sprintf("command execution timeout: %s %v (timeout: %v)", command, args, timeout),
			)
		}
		return nil, err
	}

	return output, nil
}

func (e *RealCommandExecutor) run(ctx context.Context, command string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, command, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, errors.NewSystemError(
			fmt.Sprintf("command execution failed: %s %s", command, strings.Join(args, " ")),
			fmt.Errorf("%w, stderr: %s", err, strings.TrimSpace(stderr.String())),
		)
	}

	return stdout.Bytes(), nil
}
