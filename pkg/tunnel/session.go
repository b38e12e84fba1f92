package tunnel

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Session wires the supervisor, framer, responder and UI together for one
// forwarding run.
type Session struct {
	Spec       TunnelSpec
	TargetName string

	// Rules defaults to DefaultPromptRules when nil.
	Rules []PromptRule
}

// Run builds the ssh command, starts it on a PTY, runs the UI loop until
// the user quits, and then terminates and reaps the child. Terminate and
// Wait run unconditionally — even when the loop exits with an error — so
// the child is never left orphaned.
func (s *Session) Run() error {
	argv, err := BuildForwardCommand(s.Spec)
	if err != nil {
		return err
	}

	rules := s.Rules
	if rules == nil {
		rules = DefaultPromptRules
	}

	sup := NewSupervisor()
	if err := sup.Start(argv); err != nil {
		return err
	}
	defer func() {
		_ = sup.Terminate()
		_, _ = sup.Wait()
	}()

	m := newModel(NewHeaderInfo(s.Spec, s.TargetName), sup, NewResponder(rules))
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
