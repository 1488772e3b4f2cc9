// Package tui is the terminal front end of the usage screen.
//
// The model translates terminal events into host lifecycle events: the
// first start, regaining terminal focus, returning from ctrl+z and returning
// from the settings command all count as a resume.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/actionsum/appusage/internal/presenter"
)

type resumeMsg struct{}

type settingsClosedMsg struct {
	err error
}

func resume() tea.Msg { return resumeMsg{} }

type model struct {
	screen   *presenter.Screen
	host     *presenter.Host
	settings *ExecSettings
	logger   *zap.Logger

	table  table.Model
	width  int
	height int
}

func newModel(screen *presenter.Screen, host *presenter.Host, settings *ExecSettings, logger *zap.Logger) model {
	if logger == nil {
		logger = zap.NewNop()
	}

	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return model{
		screen:   screen,
		host:     host,
		settings: settings,
		logger:   logger,
		table:    t,
		width:    80,
		height:   24,
	}
}

func (m model) Init() tea.Cmd {
	return resume
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resumeMsg, tea.FocusMsg, tea.ResumeMsg:
		return m.resumed(), nil

	case tea.BlurMsg:
		m.host.Emit(presenter.EventPause)
		return m, nil

	case settingsClosedMsg:
		if msg.err != nil {
			m.logger.Warn("settings command failed", zap.Error(msg.err))
		}
		return m.resumed(), nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetColumns(columns(m.width))
		m.table.SetHeight(max(m.height-8, 3))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "ctrl+z":
			m.host.Emit(presenter.EventPause)
			return m, tea.Suspend
		case "r":
			return m, resume
		case "a", "enter":
			if m.screen.View().State == presenter.AwaitingPermission {
				return m, m.requestAccess()
			}
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}

	return m, nil
}

// resumed emits a resume and syncs the table with the new snapshot.
func (m model) resumed() model {
	m.host.Emit(presenter.EventResume)
	v := m.screen.View()
	m.table.SetRows(rows(v))
	if m.table.Cursor() >= len(v.Report.Records) {
		m.table.SetCursor(0)
	}
	m.logger.Debug("screen resumed", zap.String("status", statusLine(v)))
	return m
}

func (m model) requestAccess() tea.Cmd {
	if err := m.screen.RequestAccess(); err != nil {
		m.logger.Warn("failed to open usage access settings", zap.Error(err))
		return nil
	}
	cmd := m.settings.take()
	if cmd == nil {
		return nil
	}
	m.host.Emit(presenter.EventPause)
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return settingsClosedMsg{err: err}
	})
}

func (m model) View() string {
	v := m.screen.View()
	switch v.State {
	case presenter.AwaitingPermission:
		return renderPermission(v, m.width)
	case presenter.Unsupported:
		return renderUnsupported(v)
	default:
		return renderReport(v, m.table.View())
	}
}

// Run shows the screen until the user quits. The screen must already be
// attached to host.
func Run(ctx context.Context, screen *presenter.Screen, host *presenter.Host, settings *ExecSettings, logger *zap.Logger) error {
	p := tea.NewProgram(
		newModel(screen, host, settings, logger),
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}
