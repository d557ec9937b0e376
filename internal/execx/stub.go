package execx

import (
	"context"
	"sync"
)

// StubRunner is a Runner for tests. It records every command it receives and
// delegates the outcome to Script, or succeeds with empty output when Script
// is nil.
type StubRunner struct {
	mu    sync.Mutex
	calls []Command

	// Script decides the outcome of each call.
	Script func(cmd Command) (string, error)
}

func (s *StubRunner) Run(ctx context.Context, cmd Command) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, cmd)
	s.mu.Unlock()

	if s.Script == nil {
		return "", nil
	}

	return s.Script(cmd)
}

// Calls returns a copy of the commands received so far.
func (s *StubRunner) Calls() []Command {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Command, len(s.calls))
	copy(out, s.calls)

	return out
}

var _ Runner = (*StubRunner)(nil)
