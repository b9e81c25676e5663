package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type phaseMsg struct {
	label string
	at    time.Time
}

type syncDoneMsg struct {
	err error
}

// syncProgressModel shows the current phase of a one-shot fleet sync next to a spinner.
type syncProgressModel struct {
	spinner spinner.Model
	faint   lipgloss.Style
	label   string
	since   time.Time
	now     func() time.Time
	work    tea.Cmd
	err     error
	done    bool
}

func newSyncProgressModel(label string, now func() time.Time, work tea.Cmd) syncProgressModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("214"))),
	)

	return syncProgressModel{
		spinner: s,
		faint:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		label:   label,
		since:   now(),
		now:     now,
		work:    work,
	}
}

func (m syncProgressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.work)
}

func (m syncProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case phaseMsg:
		m.label = msg.label
		m.since = msg.at
		return m, nil
	case syncDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m syncProgressModel) View() string {
	if m.done {
		return ""
	}

	line := fmt.Sprintf("%s %s", m.spinner.View(), m.label)
	if elapsed := m.now().Sub(m.since); elapsed >= time.Second {
		line += " " + m.faint.Render(elapsed.Truncate(time.Second).String())
	}
	return line
}

// runSyncProgress shows label on output while work runs. work may call report to switch the
// label to its next phase. The returned error is work's.
func runSyncProgress(
	ctx context.Context,
	output io.Writer,
	label string,
	work func(ctx context.Context, report func(string)) error,
) error {
	var p *tea.Program
	report := func(phase string) {
		p.Send(phaseMsg{label: phase, at: time.Now()})
	}
	workCmd := func() tea.Msg {
		return syncDoneMsg{err: work(ctx, report)}
	}

	p = tea.NewProgram(
		newSyncProgressModel(label, time.Now, workCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(syncProgressModel)
	if !ok {
		return fmt.Errorf("unexpected final progress model type %T", finalModel)
	}

	return result.err
}
