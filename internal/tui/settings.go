package tui

import (
	"context"
	"os/exec"
)

// ExecSettings is the settings surface used while the terminal UI runs. A
// request only marks the surface as wanted; the model then hands the
// terminal to the settings command and resumes when it exits.
type ExecSettings struct {
	Path string
	Args []string

	pending bool
}

// OpenUsageAccess marks the settings surface as wanted.
func (s *ExecSettings) OpenUsageAccess(ctx context.Context) error {
	s.pending = true
	return nil
}

// take returns the command to run for a pending request, if any.
func (s *ExecSettings) take() *exec.Cmd {
	if s == nil || !s.pending {
		return nil
	}
	s.pending = false
	return exec.Command(s.Path, s.Args...)
}
