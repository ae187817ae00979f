// Package app is the live progress dashboard.
package app

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/softswan/softswan/internal/progression"
	"github.com/softswan/softswan/internal/store"
	"github.com/softswan/softswan/internal/ui/components"
	"github.com/softswan/softswan/internal/ui/layout"
	"github.com/softswan/softswan/internal/ui/theme"
)

// ProgressMsg carries a freshly evaluated total into the dashboard.
type ProgressMsg struct {
	Progress progression.Progress
	Latest   *store.CertificateRecord
	Err      error
}

// Loader reads the user's current progress.
type Loader func(ctx context.Context) ProgressMsg

// Dashboard is the root Bubble Tea model for the live view.
type Dashboard struct {
	ctx    context.Context
	user   string
	load   Loader
	keys   keyMap
	width  int
	height int

	loaded   bool
	progress progression.Progress
	latest   *store.CertificateRecord
	err      error
	flash    string
}

// NewDashboard creates a dashboard for user. load is called on start and
// on manual refresh; external changes arrive as ProgressMsg via Send.
func NewDashboard(ctx context.Context, user string, load Loader) Dashboard {
	return Dashboard{
		ctx:  ctx,
		user: user,
		load: load,
		keys: defaultKeyMap(),
	}
}

func (m Dashboard) Init() tea.Cmd {
	return m.refresh()
}

func (m Dashboard) refresh() tea.Cmd {
	if m.load == nil {
		return nil
	}
	ctx, load := m.ctx, m.load
	return func() tea.Msg { return load(ctx) }
}

func (m Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			return m, m.refresh()
		}
		return m, nil

	case ProgressMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		if m.loaded && msg.Progress.Current.Name != m.progress.Current.Name &&
			msg.Progress.Points > m.progress.Points {
			m.flash = fmt.Sprintf("Reached %s!", msg.Progress.Current.Label())
		}
		m.loaded = true
		m.err = nil
		m.progress = msg.Progress
		if msg.Latest != nil {
			m.latest = msg.Latest
		}
		return m, nil
	}

	return m, nil
}

// Render draws the dashboard body at the given width.
func (m Dashboard) Render(width int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n\n", theme.Dim.Render("Learner:"), theme.Body.Render(m.user))

	if !m.loaded && m.err == nil {
		b.WriteString(theme.Hint.Render("Loading…"))
		return b.String()
	}

	if m.loaded {
		b.WriteString(components.TierCard(m.progress, width, false))
		b.WriteString("\n")
	}

	if m.flash != "" {
		b.WriteString("\n")
		b.WriteString(theme.Celebrate.Render(m.flash))
		b.WriteString("\n")
	}

	if m.latest != nil {
		fmt.Fprintf(&b, "\n%s %s %s\n",
			theme.Dim.Render("Latest certificate:"),
			theme.TierName.Render(strings.TrimSpace(m.latest.Icon+" "+m.latest.Tier)),
			theme.Dim.Render(m.latest.AwardedAt.Local().Format("2006-01-02")),
		)
	}

	if m.err != nil {
		fmt.Fprintf(&b, "\n%s\n", theme.Warning.Render("Error: "+m.err.Error()))
	}

	return b.String()
}

func (m Dashboard) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	status := ""
	if m.loaded {
		status = fmt.Sprintf("%d XP", m.progress.Points)
	}
	header := layout.RenderHeader("Progress", status, m.width)
	footer := layout.RenderFooter(m.keys.hints(), m.width)
	body := theme.Card.Render(m.Render(m.width - 8))

	v.SetContent(layout.RenderFrame(header, body, footer, m.width, m.height))
	return v
}

// NewProgram wraps the dashboard in a Bubble Tea program bound to ctx.
func NewProgram(ctx context.Context, m Dashboard, opts ...tea.ProgramOption) *tea.Program {
	return tea.NewProgram(m, append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)...)
}
