package status

import (
	"errors"
	"io"

	"github.com/bnema/hamster-clicker-cli/internal/application"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

type renderReadyMsg struct{}

// fleetTotals aggregates the header figures over every account.
type fleetTotals struct {
	accounts int
	balance  float64
	passive  float64
	failing  int
}

func summarize(stats []application.Stats) fleetTotals {
	totals := fleetTotals{accounts: len(stats)}
	for _, st := range stats {
		totals.balance += st.Balance
		totals.passive += st.EarnPassivePerHour
		if st.Errors > 0 {
			totals.failing++
		}
	}
	return totals
}

type model struct {
	stats  []application.Stats
	totals fleetTotals
	opts   RenderOptions
	styles styles
	output string
}

func newModel(stats []application.Stats, opts RenderOptions) model {
	if opts.Title == "" {
		opts.Title = "Hamster Kombat Fleet"
	}

	return model{
		stats:  stats,
		totals: summarize(stats),
		opts:   opts,
		styles: newStyles(),
	}
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg {
		return renderReadyMsg{}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(renderReadyMsg); ok {
		m.output = renderView(m)
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	return m.output
}

// Render lays out the fleet stats once and returns the frame as a string.
func Render(stats []application.Stats, opts RenderOptions) (string, error) {
	p := tea.NewProgram(
		newModel(stats, opts),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}
