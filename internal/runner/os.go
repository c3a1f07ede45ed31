package runner

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// OSRunner implements Runner with os/exec.
type OSRunner struct {
	logger *zap.Logger
	env    []string
}

// NewOSRunner creates a runner. extraEnv entries ("KEY=value") are appended
// to the inherited environment.
func NewOSRunner(logger *zap.Logger, extraEnv ...string) *OSRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OSRunner{logger: logger, env: extraEnv}
}

func (r *OSRunner) Run(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if len(r.env) > 0 {
		cmd.Env = append(cmd.Environ(), r.env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log := r.logger.With(zap.String("cmd", name), zap.Strings("args", args), zap.String("dir", dir))
	log.Debug("running command")
	started := time.Now()

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w (%v)", ctxErr, err)
		}
		log.Debug("command failed", zap.Duration("took", time.Since(started)), zap.Error(err))
		return &CommandError{Dir: dir, Name: name, Args: args, Err: err, Stderr: stderr.String()}
	}

	log.Debug("command finished", zap.Duration("took", time.Since(started)), zap.Int("stdout_bytes", stdout.Len()))
	return nil
}

func (r *OSRunner) Version(ctx context.Context, name string) (string, error) {
	if _, err := exec.LookPath(name); err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, name, "--version")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &CommandError{Name: name, Args: []string{"--version"}, Err: err, Stderr: stderr.String()}
	}
	return strings.TrimSpace(stdout.String()), nil
}
