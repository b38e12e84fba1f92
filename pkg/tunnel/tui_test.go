package tunnel

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func testModel() model {
	spec := TunnelSpec{
		SSHHost:   "miniserver.local",
		Local:     Endpoint{Host: "127.0.0.1", Port: 8080},
		Remote:    Endpoint{Host: "127.0.0.1", Port: 8080},
		Verbosity: "v",
	}
	m := newModel(NewHeaderInfo(spec, "analytics-web"), NewSupervisor(), NewResponder(DefaultPromptRules))
	m.width = 80
	m.height = 12
	return m
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(model)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return nm, cmd
}

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestModel_AppendOrderPreserved(t *testing.T) {
	// One notification or three: scrollback order must be identical.
	one := testModel()
	one, _ = update(t, one, outputMsg([]byte("L1\nL2\nL3\n")))

	three := testModel()
	for _, chunk := range []string{"L1\n", "L2\n", "L3\n"} {
		three, _ = update(t, three, outputMsg([]byte(chunk)))
	}

	for _, m := range []model{one, three} {
		if len(m.lines) != 3 {
			t.Fatalf("expected 3 lines, got %d", len(m.lines))
		}
		for i, want := range []string{"L1", "L2", "L3"} {
			if m.lines[i].Text != want {
				t.Fatalf("line %d: got %q, want %q", i, m.lines[i].Text, want)
			}
		}
	}
}

func TestModel_FocusFollowsNewest(t *testing.T) {
	m := testModel()
	m, _ = update(t, m, outputMsg([]byte("a\nb\nc\n")))
	if m.focus != 2 {
		t.Fatalf("expected focus on newest line, got %d", m.focus)
	}
}

func TestModel_ManualScrollPinsFocus(t *testing.T) {
	m := testModel()
	m, _ = update(t, m, outputMsg([]byte("a\nb\nc\n")))

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.focus != 1 {
		t.Fatalf("expected focus 1 after Up, got %d", m.focus)
	}

	// New output while scrolled away must not steal the focus.
	m, _ = update(t, m, outputMsg([]byte("d\n")))
	if m.focus != 1 {
		t.Fatalf("expected pinned focus 1, got %d", m.focus)
	}

	// End jumps back to the newest line and re-enables following.
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnd})
	if m.focus != 3 {
		t.Fatalf("expected focus 3 after End, got %d", m.focus)
	}
	m, _ = update(t, m, outputMsg([]byte("e\n")))
	if m.focus != 4 {
		t.Fatalf("expected focus to follow again, got %d", m.focus)
	}
}

func TestModel_HomeAndPageKeys(t *testing.T) {
	m := testModel()
	var chunk strings.Builder
	for i := 0; i < 30; i++ {
		chunk.WriteString("line\n")
	}
	m, _ = update(t, m, outputMsg([]byte(chunk.String())))

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyHome})
	if m.focus != 0 {
		t.Fatalf("expected focus 0 after Home, got %d", m.focus)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyPgDown})
	if m.focus != m.pageSize() {
		t.Fatalf("expected focus %d after PageDown, got %d", m.pageSize(), m.focus)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyPgUp})
	if m.focus != 0 {
		t.Fatalf("expected focus 0 after PageUp, got %d", m.focus)
	}
}

func TestModel_QuitBeforeAnyOutput(t *testing.T) {
	// Covers the "no prior focus" edge: q works before any line arrived.
	for _, r := range []rune{'q', 'Q'} {
		m := testModel()
		_, cmd := update(t, m, keyMsg(r))
		if cmd == nil {
			t.Fatalf("expected a quit command for %q", r)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("expected tea.QuitMsg for %q", r)
		}
	}
}

func TestModel_FirstAppendIsSilentNoopAdvance(t *testing.T) {
	m := testModel()
	m, _ = update(t, m, outputMsg([]byte("first\n")))
	if m.focus != 0 {
		t.Fatalf("expected focus 0 after first line, got %d", m.focus)
	}
	if len(m.lines) != 1 || m.lines[0].Text != "first" {
		t.Fatalf("unexpected scrollback: %+v", m.lines)
	}
}

func TestModel_PromptWriteFailureSurfacesDiagnostic(t *testing.T) {
	// The supervisor was never started, so the prompt response write fails;
	// that must surface as a scrollback line, never crash the loop.
	m := testModel()
	m, _ = update(t, m, outputMsg([]byte("Are you sure you want to continue connecting (yes/no)?\n")))

	if len(m.lines) != 2 {
		t.Fatalf("expected prompt line plus diagnostic, got %d lines", len(m.lines))
	}
	if !strings.Contains(m.lines[1].Text, "tunneltui:") {
		t.Fatalf("expected diagnostic line, got %q", m.lines[1].Text)
	}
}

func TestModel_OutputClosedFlushesTail(t *testing.T) {
	m := testModel()
	m, _ = update(t, m, outputMsg([]byte("complete\npartial")))
	if len(m.lines) != 1 {
		t.Fatalf("expected only the terminated line, got %d", len(m.lines))
	}

	m, _ = update(t, m, outputClosedMsg{})
	if len(m.lines) != 2 || m.lines[1].Text != "partial" {
		t.Fatalf("expected flushed tail, got %+v", m.lines)
	}
	if !m.closed {
		t.Fatalf("expected closed flag to be set")
	}
}

func TestModel_ViewContainsHeaderAndFooter(t *testing.T) {
	m := testModel()
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 10})
	m, _ = update(t, m, outputMsg([]byte("debug1: Connecting...\n")))

	view := m.View()
	for _, want := range []string{
		"SSH Forward Tunnel",
		"analytics-web",
		"miniserver.local",
		"debug1: Connecting...",
		"Press `q` or `Q` to quit",
	} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}
