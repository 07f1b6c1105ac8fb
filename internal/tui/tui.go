// Package tui is the terminal presenter: a single input line where Enter
// submits, a banner for notices and errors, and a card for the student.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aanand-mishra/student-lookup/internal/lookup"
)

// Controller is the part of the lookup controller the terminal UI uses.
type Controller interface {
	SetInput(text string)
	SubmitInput(ctx context.Context) lookup.State
	State() lookup.State
	Observe(fn func(lookup.State))
}

// StateMsg carries a controller snapshot into the update loop.
type StateMsg lookup.State

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	hintStyle   = lipgloss.NewStyle().Faint(true)
	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#856404")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#ffc107")).
			Padding(0, 1)
	errorStyle = noticeStyle.
			Foreground(lipgloss.Color("#b00020")).
			BorderForeground(lipgloss.Color("#b00020"))
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2)
	labelStyle  = lipgloss.NewStyle().Bold(true).Width(9)
	footerStyle = lipgloss.NewStyle().Faint(true).MarginTop(1)
)

// Model is the bubbletea model of the lookup screen.
type Model struct {
	ctrl  Controller
	input textinput.Model
	state lookup.State
	hint  string
}

// New builds the screen around ctrl. hint is an example student ID.
func New(ctrl Controller, hint string) Model {
	ti := textinput.New()
	ti.Placeholder = "Student ID"
	ti.Prompt = "> "
	ti.CharLimit = 64
	ti.Focus()

	return Model{
		ctrl:  ctrl,
		input: ti,
		state: ctrl.State(),
		hint:  hint,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m, m.submit()
		}

	case StateMsg:
		next := lookup.State(msg)
		if next.Supersedes(m.state) {
			m.state = next
		}
		return m, nil
	}

	before := m.input.Value()

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		m.ctrl.SetInput(v)
	}
	return m, cmd
}

// submit runs the lookup off the update loop. Its result arrives as a
// StateMsg; the Loading state before it arrives through the observer.
func (m Model) submit() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return StateMsg(ctrl.SubmitInput(context.Background()))
	}
}

func (m Model) View() string {
	view := lookup.Render(m.state)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Student Records Lookup"))
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("Enter a student ID, for example " + m.hint))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if view.Loading {
		b.WriteString("\nSearching...\n")
	}

	if view.Banner != "" {
		style := noticeStyle
		if view.BannerClass == lookup.BannerError {
			style = errorStyle
		}
		b.WriteString("\n")
		b.WriteString(style.Render(view.Banner))
		b.WriteString("\n")
	}

	if s := view.Student; s != nil {
		rows := []string{
			labelStyle.Render("Name") + s.Name,
			labelStyle.Render("College") + s.College,
			labelStyle.Render("Major") + s.Major,
		}
		b.WriteString("\n")
		b.WriteString(cardStyle.Render(strings.Join(rows, "\n")))
		b.WriteString("\n")
	}

	b.WriteString(footerStyle.Render("enter: search • esc: quit"))
	b.WriteString("\n")
	return b.String()
}

// Run shows the screen until the user quits. Every controller transition,
// including Loading, is forwarded to the screen as it happens.
func Run(ctrl Controller, hint string, opts ...tea.ProgramOption) error {
	p := tea.NewProgram(New(ctrl, hint), opts...)
	ctrl.Observe(func(st lookup.State) {
		p.Send(StateMsg(st))
	})

	_, err := p.Run()
	return err
}
