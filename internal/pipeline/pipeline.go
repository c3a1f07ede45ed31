// Package pipeline runs the ordered workspace mutations that turn a
// Turborepo starter into the requested monorepo.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakoblorz/create-devhub/internal/models"
)

// Step is one named mutation of the workspace.
type Step struct {
	// Name is the stable identifier used in logs and errors.
	Name string

	// Title is shown while the step runs, Done once it succeeded.
	Title string
	Done  string

	// Enabled gates the step on the options. Nil means always.
	Enabled func(models.Options) bool

	Run func(ctx context.Context, env *Env) error
}

// Reporter is notified about step progress.
type Reporter interface {
	StepStarted(step Step)
	StepSucceeded(step Step)
	StepSkipped(step Step)
	StepFailed(step Step, err error)
}

// StepError wraps the failure of a single step.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Result lists the steps that ran and those that were disabled.
type Result struct {
	Completed []string
	Skipped   []string
}

// Pipeline drives steps in order and stops at the first failure. Nothing is
// rolled back.
type Pipeline struct {
	steps    []Step
	reporter Reporter
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithReporter sets the progress reporter.
func WithReporter(r Reporter) Option {
	return func(p *Pipeline) {
		p.reporter = r
	}
}

// New creates a pipeline over steps.
func New(steps []Step, options ...Option) *Pipeline {
	p := &Pipeline{steps: steps, reporter: nopReporter{}}
	for _, option := range options {
		option(p)
	}
	return p
}

// Steps returns the steps in execution order.
func (p *Pipeline) Steps() []Step {
	return p.steps
}

// Run executes every enabled step against env.
func (p *Pipeline) Run(ctx context.Context, env *Env) (*Result, error) {
	if env.Logger == nil {
		env.Logger = zap.NewNop()
	}
	res := &Result{}

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return res, &StepError{Step: step.Name, Err: err}
		}

		if step.Enabled != nil && !step.Enabled(env.Options) {
			env.Logger.Debug("step skipped", zap.String("step", step.Name))
			p.reporter.StepSkipped(step)
			res.Skipped = append(res.Skipped, step.Name)
			continue
		}

		p.reporter.StepStarted(step)
		stepEnv := env.withLogger(env.Logger.With(zap.String("step", step.Name)))
		started := time.Now()

		if err := step.Run(ctx, stepEnv); err != nil {
			stepEnv.Logger.Debug("step failed", zap.Duration("took", time.Since(started)), zap.Error(err))
			p.reporter.StepFailed(step, err)
			var stepErr *StepError
			if errors.As(err, &stepErr) {
				return res, err
			}
			return res, &StepError{Step: step.Name, Err: err}
		}

		stepEnv.Logger.Debug("step finished", zap.Duration("took", time.Since(started)))
		p.reporter.StepSucceeded(step)
		res.Completed = append(res.Completed, step.Name)
	}

	return res, nil
}

type nopReporter struct{}

func (nopReporter) StepStarted(Step)       {}
func (nopReporter) StepSucceeded(Step)     {}
func (nopReporter) StepSkipped(Step)       {}
func (nopReporter) StepFailed(Step, error) {}
