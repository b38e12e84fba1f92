package tunnel

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// outputMsg carries one raw chunk from the supervisor into the UI loop.
type outputMsg []byte

// outputClosedMsg signals that the child closed its output stream.
type outputClosedMsg struct{}

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Quit     key.Binding
}

var defaultKeyMap = keyMap{
	Up:       key.NewBinding(key.WithKeys("up")),
	Down:     key.NewBinding(key.WithKeys("down")),
	PageUp:   key.NewBinding(key.WithKeys("pgup")),
	PageDown: key.NewBinding(key.WithKeys("pgdown")),
	Home:     key.NewBinding(key.WithKeys("home")),
	End:      key.NewBinding(key.WithKeys("end")),
	Quit:     key.NewBinding(key.WithKeys("q", "Q")),
}

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("7"))
	headerParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("9")).
				Background(lipgloss.Color("7")).
				Bold(true)
	footerStyle = lipgloss.NewStyle()
)

const footerHelp = "Navigation `Up`, `Down`, `PageUp`, `PageDown`, `Home`, `End`. Press `q` or `Q` to quit."

// model is the scrollback UI: a static header with the connection summary,
// an append-only list of framed output lines, and a static footer. All
// state here is mutated only from the Bubble Tea update loop; the
// supervisor's goroutines hand chunks over via outputMsg.
type model struct {
	header    HeaderInfo
	sup       *Supervisor
	framer    *LineFramer
	responder *Responder
	keys      keyMap

	lines []OutputLine
	focus int
	// follow is true while the focus sits on the newest line; a manual
	// scroll away from the bottom pins the view until End is pressed or the
	// user scrolls back down.
	follow bool
	closed bool

	width  int
	height int
}

func newModel(header HeaderInfo, sup *Supervisor, responder *Responder) model {
	return model{
		header:    header,
		sup:       sup,
		framer:    NewLineFramer(),
		responder: responder,
		keys:      defaultKeyMap,
		follow:    true,
	}
}

func (m model) Init() tea.Cmd {
	return waitForOutput(m.sup.Output())
}

// waitForOutput suspends until the supervisor delivers the next chunk,
// without ever blocking the update loop itself.
func waitForOutput(ch <-chan []byte) tea.Cmd {
	return func() tea.Msg {
		b, ok := <-ch
		if !ok {
			return outputClosedMsg{}
		}
		return outputMsg(b)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case outputMsg:
		m.appendChunk([]byte(msg))
		return m, waitForOutput(m.sup.Output())

	case outputClosedMsg:
		if line, ok := m.framer.Flush(); ok {
			m.appendLine(line)
		}
		m.closed = true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.moveFocus(-1)
		case key.Matches(msg, m.keys.Down):
			m.moveFocus(1)
		case key.Matches(msg, m.keys.PageUp):
			m.moveFocus(-m.pageSize())
		case key.Matches(msg, m.keys.PageDown):
			m.moveFocus(m.pageSize())
		case key.Matches(msg, m.keys.Home):
			m.setFocus(0)
		case key.Matches(msg, m.keys.End):
			m.setFocus(len(m.lines) - 1)
		}
		return m, nil
	}
	return m, nil
}

// appendChunk frames the chunk and appends the completed lines. A matching
// prompt rule writes its response before the triggering line lands in
// scrollback; a slow response risks the child timing out its own prompt.
func (m *model) appendChunk(chunk []byte) {
	for _, line := range m.framer.Feed(chunk) {
		if resp, ok := m.responder.Inspect(line); ok {
			if err := m.sup.Write(resp); err != nil {
				m.appendLine(line)
				m.appendLine(OutputLine{Text: "tunneltui: " + err.Error()})
				continue
			}
		}
		m.appendLine(line)
	}
}

// appendLine appends in arrival order and auto-advances the focus to the
// newest entry unless the user scrolled away. The first append finds the
// focus already at index 0, so advancing is a silent no-op.
func (m *model) appendLine(line OutputLine) {
	m.lines = append(m.lines, line)
	if m.follow {
		m.focus = len(m.lines) - 1
	}
}

func (m *model) moveFocus(delta int) {
	m.setFocus(m.focus + delta)
}

func (m *model) setFocus(i int) {
	if len(m.lines) == 0 {
		m.focus = 0
		m.follow = true
		return
	}
	if i < 0 {
		i = 0
	}
	if i > len(m.lines)-1 {
		i = len(m.lines) - 1
	}
	m.focus = i
	m.follow = i == len(m.lines)-1
}

func (m model) pageSize() int {
	if h := m.bodyHeight(); h > 1 {
		return h
	}
	return 10
}

func (m model) bodyHeight() int {
	// One row each for header and footer.
	return m.height - 2
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("SSH Forward Tunnel "))
	b.WriteString(headerParamStyle.Render(m.header.LocalLabel))
	b.WriteString(headerStyle.Render("["))
	b.WriteString(headerParamStyle.Render(m.header.LocalName))
	b.WriteString(headerStyle.Render("] => "))
	b.WriteString(headerParamStyle.Render(m.header.RemoteLabel))
	b.WriteString(headerStyle.Render("["))
	b.WriteString(headerParamStyle.Render(m.header.RemoteName))
	b.WriteString(headerStyle.Render("]"))
	b.WriteString("\n")

	body := m.bodyHeight()
	if body < 1 {
		body = 1
	}
	start := 0
	if m.focus >= body {
		start = m.focus - body + 1
	}
	end := start + body
	if end > len(m.lines) {
		end = len(m.lines)
	}
	for i := start; i < end; i++ {
		b.WriteString(m.lines[i].Text)
		b.WriteString("\n")
	}
	for i := end - start; i < body; i++ {
		b.WriteString("\n")
	}

	b.WriteString(footerStyle.Render(footerHelp))
	return b.String()
}
