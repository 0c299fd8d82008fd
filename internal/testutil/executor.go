package testutil

import (
	"context"
	"os/exec"
	"strings"
	"sync"

	"github.com/mrz1836/faster/internal/process"
)

// Result is the canned outcome of one command.
type Result struct {
	Stdout []byte
	Stderr []byte
	Err    error
}

// MockExecutor returns canned results and records every command it was
// given. No real process is ever started.
//
// Results are matched on the full command line ("name arg1 arg2") first,
// then on the command name alone, then fall back to Default.
type MockExecutor struct {
	mu sync.Mutex

	// Paths maps an executable to its LookPath result. Missing entries
	// return exec.ErrNotFound.
	Paths map[string]string

	// Results holds canned outcomes keyed by command line or name.
	Results map[string]Result

	// Default is returned when nothing in Results matches.
	Default Result

	calls   []*exec.Cmd
	started []*exec.Cmd
}

// NewMockExecutor returns an empty mock.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{
		Paths:   make(map[string]string),
		Results: make(map[string]Result),
	}
}

// SetPath makes LookPath(file) succeed with path.
func (m *MockExecutor) SetPath(file, path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Paths[file] = path
}

// SetResult registers the outcome for a command line or command name.
func (m *MockExecutor) SetResult(key string, r Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Results[key] = r
}

// LookPath implements process.Executor.
func (m *MockExecutor) LookPath(file string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if path, ok := m.Paths[file]; ok {
		return path, nil
	}
	return "", &exec.Error{Name: file, Err: exec.ErrNotFound}
}

// Execute implements process.Executor. Canned stdout is also written to an
// attached cmd.Stdout so streaming callers see it.
func (m *MockExecutor) Execute(_ context.Context, cmd *exec.Cmd) ([]byte, []byte, error) {
	m.mu.Lock()
	m.calls = append(m.calls, cmd)
	r := m.lookup(cmd)
	m.mu.Unlock()

	if cmd.Stdout != nil && len(r.Stdout) > 0 {
		_, _ = cmd.Stdout.Write(r.Stdout)
		return nil, r.Stderr, r.Err
	}
	return r.Stdout, r.Stderr, r.Err
}

// Start implements process.Executor. Only the error of the matching result
// is used.
func (m *MockExecutor) Start(cmd *exec.Cmd) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = append(m.started, cmd)
	return m.lookup(cmd).Err
}

// Calls returns the commands passed to Execute, in order.
func (m *MockExecutor) Calls() []*exec.Cmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*exec.Cmd(nil), m.calls...)
}

// Started returns the commands passed to Start, in order.
func (m *MockExecutor) Started() []*exec.Cmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*exec.Cmd(nil), m.started...)
}

// LastCall returns the most recent Execute command, or nil.
func (m *MockExecutor) LastCall() *exec.Cmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	return m.calls[len(m.calls)-1]
}

func (m *MockExecutor) lookup(cmd *exec.Cmd) Result {
	if r, ok := m.Results[strings.Join(cmd.Args, " ")]; ok {
		return r
	}
	if len(cmd.Args) > 0 {
		if r, ok := m.Results[cmd.Args[0]]; ok {
			return r
		}
	}
	return m.Default
}

var _ process.Executor = (*MockExecutor)(nil)
