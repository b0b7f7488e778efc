package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/interacthq/jobagent/history"
)

type sessionItem struct {
	summary history.SessionSummary
}

func (s sessionItem) Title() string {
	return fmt.Sprintf("%s (%s)", s.summary.Timestamp.Format("01/02 15:04"), s.summary.ProfileID)
}
func (s sessionItem) Description() string { return s.summary.Summary }
func (s sessionItem) FilterValue() string { return s.summary.Summary + " " + s.summary.ProfileID }

type sessionsModel struct {
	list     list.Model
	selected *history.SessionSummary
	quitting bool
}

func newSessionsModel(sessions []history.SessionSummary) sessionsModel {
	items := make([]list.Item, len(sessions))
	for i, s := range sessions {
		items[i] = sessionItem{summary: s}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Recent Sessions"
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFF")).
		Background(lipgloss.Color("#7D56F4")).
		Padding(0, 1)

	return sessionsModel{list: l}
}

func (m sessionsModel) Init() tea.Cmd {
	return nil
}

func (m sessionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.quitting = true
			return m, tea.Quit
		}
		if msg.String() == "enter" {
			if i, ok := m.list.SelectedItem().(sessionItem); ok {
				m.selected = &i.summary
				return m, tea.Quit
			}
		}
	case tea.WindowSizeMsg:
		h, v := lipgloss.NewStyle().Margin(1, 2).GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m sessionsModel) View() string {
	if m.quitting {
		return ""
	}
	return lipgloss.NewStyle().Margin(1, 2).Render(m.list.View())
}

// browseSessions opens the interactive session browser and prints the
// chosen transcript.
func browseSessions(mgr *history.Manager) error {
	sessions, err := mgr.ListRecentSessions(50)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No stored sessions.")
		return nil
	}

	p := tea.NewProgram(newSessionsModel(sessions), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	m, ok := final.(sessionsModel)
	if !ok || m.selected == nil {
		return nil
	}

	msgs, err := mgr.GetSessionMessages(m.selected.UUID)
	if err != nil {
		return err
	}
	fmt.Printf("Session %s (%s)\n\n", m.selected.UUID, m.selected.Timestamp.Format("2006-01-02 15:04"))
	fmt.Print(plainTranscript(msgs))
	return nil
}
