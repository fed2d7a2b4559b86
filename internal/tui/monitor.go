// Package tui implements the terminal views of msgslot: the styled output of
// `msgslot stat` and the live `msgslot monitor` screen.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/msgslot/internal/slot"
)

// StatSource supplies device snapshots to the monitor.
type StatSource interface {
	Stat(ctx context.Context) (*slot.DeviceStat, error)
}

type statMsg struct {
	stat *slot.DeviceStat
	err  error
	at   time.Time
}

type tickMsg time.Time

// Model is the monitor screen. It polls a StatSource and shows every channel
// in a scrollable table.
type Model struct {
	source  StatSource
	refresh time.Duration

	table        table.Model
	headerHeight int
	stat         *slot.DeviceStat
	err          error
	updated      time.Time
	width        int
	height       int
}

// NewModel creates a monitor polling source every refresh.
func NewModel(source StatSource, refresh time.Duration) Model {
	if refresh <= 0 {
		refresh = time.Second
	}
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Instance", Width: 8},
			{Title: "Channel", Width: 12},
			{Title: "Length", Width: 8},
			{Title: "Fill", Width: 18},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(TextColor).
		Background(PrimaryColor)
	t.SetStyles(styles)

	return Model{
		source:       source,
		refresh:      refresh,
		table:        t,
		headerHeight: lipgloss.Height(styles.Header.Render("Instance")),
	}
}

// Init starts the first poll.
func (m Model) Init() tea.Cmd {
	return m.fetch()
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, m.fetch()
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		// Leave room for the summary box and help bar. SetHeight counts the
		// header rows, Height reports only the body.
		m.table.SetHeight(max(msg.Height-10, 3) + m.headerHeight)
		return m, nil

	case statMsg:
		m.updated = msg.at
		m.err = msg.err
		if msg.err == nil {
			m.stat = msg.stat
			m.table.SetRows(rowsFor(msg.stat))
		}
		return m, m.tick()

	case tickMsg:
		return m, m.fetch()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the monitor.
func (m Model) View() string {
	if m.stat == nil && m.err == nil {
		return Muted.Render("connecting...") + "\n"
	}

	var sections []string
	if m.stat != nil {
		sections = append(sections, RenderSummary(m.stat), m.table.View())
	}
	if m.err != nil {
		sections = append(sections, Error.Render("error: "+m.err.Error()))
	}
	sections = append(sections, m.help())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) help() string {
	updated := "never"
	if !m.updated.IsZero() {
		updated = m.updated.Format(time.TimeOnly)
	}
	return HelpBar.Render(fmt.Sprintf("%s quit  %s refresh  %s scroll  updated %s",
		HelpKey.Render("q"), HelpKey.Render("r"), HelpKey.Render("↑/↓"), updated))
}

func (m Model) fetch() tea.Cmd {
	source, timeout := m.source, m.refresh
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), max(timeout, time.Second))
		defer cancel()
		stat, err := source.Stat(ctx)
		return statMsg{stat: stat, err: err, at: time.Now()}
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func rowsFor(stat *slot.DeviceStat) []table.Row {
	var rows []table.Row
	for _, in := range stat.Instances {
		for _, ch := range in.Channels {
			rows = append(rows, table.Row{
				fmt.Sprint(in.Instance),
				fmt.Sprint(ch.ID),
				fmt.Sprint(ch.Length),
				fillBar(ch.Length, 16),
			})
		}
	}
	return rows
}

// fillBar draws how full a channel's slot is.
func fillBar(n, width int) string {
	filled := n * width / slot.MaxMessageLen
	if n > 0 && filled == 0 {
		filled = 1
	}
	bar := make([]rune, width)
	for i := range bar {
		if i < filled {
			bar[i] = '█'
		} else {
			bar[i] = '░'
		}
	}
	return string(bar)
}

// Run shows the monitor until the user quits or ctx is cancelled.
func Run(ctx context.Context, source StatSource, refresh time.Duration) error {
	p := tea.NewProgram(
		NewModel(source, refresh),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
