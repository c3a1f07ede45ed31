package runner

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrNotInstalled is returned by MockRunner.Version for unknown tools.
var ErrNotInstalled = errors.New("executable file not found in $PATH")

// Call is one recorded Run invocation.
type Call struct {
	Dir  string
	Name string
	Args []string
}

// String renders the call as a command line.
func (c Call) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// MockRunner implements Runner for testing. Hooks simulate the side effects
// of external generators on a mock filesystem.
type MockRunner struct {
	mu       sync.Mutex
	calls    []Call
	hooks    map[string]func(Call) error
	versions map[string]string
}

// NewMockRunner creates a runner where every command succeeds and no tool
// reports a version.
func NewMockRunner() *MockRunner {
	return &MockRunner{
		hooks:    make(map[string]func(Call) error),
		versions: make(map[string]string),
	}
}

// On registers fn for every call whose command line starts with prefix
// (matched on word boundaries). The longest matching prefix wins.
func (m *MockRunner) On(prefix string, fn func(Call) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks[prefix] = fn
}

// Fail makes every call matching prefix return err.
func (m *MockRunner) Fail(prefix string, err error) {
	m.On(prefix, func(c Call) error {
		return &CommandError{Dir: c.Dir, Name: c.Name, Args: c.Args, Err: err}
	})
}

// SetVersion makes Version(name) succeed with v.
func (m *MockRunner) SetVersion(name, v string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions[name] = v
}

// Calls returns the recorded calls in order.
func (m *MockRunner) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CommandLines returns Calls rendered as strings.
func (m *MockRunner) CommandLines() []string {
	var out []string
	for _, c := range m.Calls() {
		out = append(out, c.String())
	}
	return out
}

func (m *MockRunner) Run(ctx context.Context, dir, name string, args ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	call := Call{Dir: dir, Name: name, Args: append([]string(nil), args...)}

	m.mu.Lock()
	m.calls = append(m.calls, call)
	hook := m.match(call.String())
	m.mu.Unlock()

	if hook != nil {
		return hook(call)
	}
	return nil
}

func (m *MockRunner) Version(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.versions[name]
	if !ok {
		return "", ErrNotInstalled
	}
	return v, nil
}

func (m *MockRunner) match(line string) func(Call) error {
	var best string
	var fn func(Call) error
	for prefix, hook := range m.hooks {
		if line != prefix && !strings.HasPrefix(line, prefix+" ") {
			continue
		}
		if fn == nil || len(prefix) > len(best) {
			best, fn = prefix, hook
		}
	}
	return fn
}
