package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type spinnerDoneMsg struct {
	err error
}

// spinnerStatusMsg replaces the text shown after the label, such as the
// account being checked.
type spinnerStatusMsg string

type spinnerModel struct {
	spinner spinner.Model
	label   string
	status  string
	work    tea.Cmd
	err     error
	done    bool
}

func newSpinnerModel(label string, work tea.Cmd) spinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return spinnerModel{
		spinner: s,
		label:   label,
		work:    work,
	}
}

func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.work)
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case spinnerStatusMsg:
		m.status = string(msg)
		return m, nil
	case spinnerDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}

	if m.status == "" {
		return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
	}

	return fmt.Sprintf("%s %s %s", m.spinner.View(), m.label, statusStyle.Render(m.status))
}

var statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

// runWithSpinner shows label next to a spinner on output while work runs.
// work may call status to update the text shown after the label.
func runWithSpinner(ctx context.Context, output io.Writer, label string, work func(ctx context.Context, status func(string)) error) error {
	var p *tea.Program
	status := func(text string) {
		p.Send(spinnerStatusMsg(text))
	}
	workCmd := func() tea.Msg {
		return spinnerDoneMsg{err: work(ctx, status)}
	}

	p = tea.NewProgram(
		newSpinnerModel(label, workCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(spinnerModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.err
}
