package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/jakoblorz/create-devhub/internal/filesystem"
	"github.com/jakoblorz/create-devhub/internal/models"
	"github.com/jakoblorz/create-devhub/internal/runner"
	"github.com/jakoblorz/create-devhub/internal/templates"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingReporter struct {
	events []string
}

func (r *recordingReporter) StepStarted(s Step)   { r.events = append(r.events, "start "+s.Name) }
func (r *recordingReporter) StepSucceeded(s Step) { r.events = append(r.events, "ok "+s.Name) }
func (r *recordingReporter) StepSkipped(s Step)   { r.events = append(r.events, "skip "+s.Name) }
func (r *recordingReporter) StepFailed(s Step, err error) {
	r.events = append(r.events, fmt.Sprintf("fail %s: %v", s.Name, err))
}

func bareEnv(t *testing.T) *Env {
	return &Env{
		Options:   models.DefaultOptions(),
		Root:      "/work/hub",
		FS:        filesystem.NewMockFileSystem(),
		Runner:    runner.NewMockRunner(),
		Templates: templates.New(),
		Logger:    zaptest.NewLogger(t),
	}
}

func TestPipeline_RunsStepsInOrder(t *testing.T) {
	var ran []string
	step := func(name string) Step {
		return Step{Name: name, Run: func(context.Context, *Env) error {
			ran = append(ran, name)
			return nil
		}}
	}

	rep := &recordingReporter{}
	skipped := step("never")
	skipped.Enabled = func(models.Options) bool { return false }

	p := New([]Step{step("one"), skipped, step("two")}, WithReporter(rep))
	res, err := p.Run(context.Background(), bareEnv(t))
	require.NoError(t, err)

	require.Equal(t, []string{"one", "two"}, ran)
	require.Equal(t, []string{"one", "two"}, res.Completed)
	require.Equal(t, []string{"never"}, res.Skipped)
	require.Equal(t, []string{"start one", "ok one", "skip never", "start two", "ok two"}, rep.events)
}

func TestPipeline_StopsAtFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	var ran []string

	steps := []Step{
		{Name: "first", Run: func(context.Context, *Env) error { ran = append(ran, "first"); return nil }},
		{Name: "second", Run: func(context.Context, *Env) error { return boom }},
		{Name: "third", Run: func(context.Context, *Env) error { ran = append(ran, "third"); return nil }},
	}

	rep := &recordingReporter{}
	res, err := New(steps, WithReporter(rep)).Run(context.Background(), bareEnv(t))
	require.Error(t, err)
	require.ErrorIs(t, err, boom)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	require.Equal(t, "second", stepErr.Step)
	require.Equal(t, "step second failed: boom", err.Error())

	require.Equal(t, []string{"first"}, ran)
	require.Equal(t, []string{"first"}, res.Completed)
	require.Equal(t, "fail second: boom", rep.events[len(rep.events)-1])
}

func TestPipeline_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	steps := []Step{{Name: "only", Run: func(context.Context, *Env) error { called = true; return nil }}}

	_, err := New(steps).Run(ctx, bareEnv(t))
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, called)
}

func TestPipeline_NilLogger(t *testing.T) {
	env := bareEnv(t)
	env.Logger = nil

	steps := []Step{{Name: "only", Run: func(_ context.Context, e *Env) error {
		e.Logger.Debug("still works")
		return nil
	}}}
	_, err := New(steps).Run(context.Background(), env)
	require.NoError(t, err)
}

func TestSteps_Order(t *testing.T) {
	opts := models.DefaultOptions()
	opts.PackageManager = models.PackageManagerPNPM

	var names []string
	for _, s := range Steps(opts) {
		names = append(names, s.Name)
	}
	require.Equal(t, []string{
		StepBootstrap,
		StepCustomizeApps,
		StepAddServerApps,
		StepConfigurePorts,
		StepUpdateTurboConfig,
		StepUpdateRootManifest,
		StepFixTypeScript,
		StepSetupStyling,
		StepLandingPages,
		StepInstall,
	}, names)

	last := Steps(opts)[len(names)-1]
	require.Equal(t, "Installing dependencies with pnpm (7 workspaces)", last.Title)
}

func TestEnv_Path(t *testing.T) {
	env := bareEnv(t)
	require.Equal(t, "/work/hub/apps/web/src/index.css", env.Path("apps/web", "src/index.css"))
	require.Equal(t, "/work/hub/apps/docs/package.json", env.AppPath(models.AppDocs, "package.json"))
	require.Equal(t, "apps/docs", env.rel("/work/hub/apps/docs"))
}
