package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/gridstage/internal/config"
	"github.com/vovakirdan/gridstage/internal/engine"
	"github.com/vovakirdan/gridstage/internal/input"
)

// statusLines is the number of terminal rows used below the engine screen.
const statusLines = 1

// Model is the Bubble Tea model running one engine.
type Model struct {
	engine   *engine.Engine
	keys     KeyMap
	help     help.Model
	held     *heldKeys
	interval time.Duration
	last     time.Time
	embedded bool // engine end returns control instead of quitting
	done     bool
	quitting bool
}

// NewModel creates a model driving e at its configured frame rate.
func NewModel(e *engine.Engine) Model {
	cfg := e.Config()
	h := help.New()
	h.Width = cfg.Screen.Width
	return Model{
		engine:   e,
		keys:     DefaultKeyMap(),
		help:     h,
		held:     newHeldKeys(cfg.Input.ReleaseAfter()),
		interval: cfg.Loop.FrameDuration(),
	}
}

// Init starts the frame loop.
func (m Model) Init() tea.Cmd {
	return frameCmd(m.interval)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.engine.PostEvent(input.Event{
			Type:   input.Resized,
			Width:  msg.Width,
			Height: max(1, msg.Height-statusLines),
		})
		return m, nil

	case FrameMsg:
		return m.handleFrame(time.Time(msg))
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.engine.Quit()
		return m.finish()
	case key.Matches(msg, m.keys.Screenshot):
		m.saveScreenshot()
		return m, nil
	}

	k := Translate(msg)
	if k == input.KeyUnknown {
		return m, nil
	}
	m.held.press(k, time.Now())
	m.engine.PostEvent(input.Press(k))
	return m, nil
}

// handleFrame releases expired keys and runs one engine frame.
func (m Model) handleFrame(now time.Time) (tea.Model, tea.Cmd) {
	if m.done {
		return m, nil
	}
	dt := m.interval
	if !m.last.IsZero() {
		dt = now.Sub(m.last)
	}
	m.last = now

	for _, k := range m.held.expire(now) {
		m.engine.PostEvent(input.Release(k))
	}
	m.engine.Frame(dt)

	if !m.engine.IsRunning() {
		return m.finish()
	}
	return m, frameCmd(m.interval)
}

func (m Model) finish() (tea.Model, tea.Cmd) {
	m.done = true
	for _, k := range m.held.all() {
		m.engine.PostEvent(input.Release(k))
	}
	if m.embedded {
		return m, nil
	}
	m.quitting = true
	return m, tea.Quit
}

// Done reports whether the engine has stopped.
func (m Model) Done() bool { return m.done }

// saveScreenshot saves the current screen to a file.
func (m Model) saveScreenshot() {
	dir := filepath.Join(os.Getenv("HOME"), config.UserDir, "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.txt", m.engine.Config().Title, timestamp)
	path := filepath.Join(dir, filename)

	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(path, []byte(m.engine.Screen().String()), 0o600)
}

// View renders the engine screen and the status line.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return RenderScreen(m.engine.Screen()) + "\n" + renderStatus(m.help.View(m.keys))
}

// Run starts a Bubble Tea program driving e, then shuts e down.
func Run(e *engine.Engine) error {
	p := tea.NewProgram(
		NewModel(e),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	if shutdownErr := e.Shutdown(); err == nil {
		err = shutdownErr
	}
	return err
}
