// Package tui renders the dashboard snapshot as a terminal app served over SSH.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"tredia-investing/internal/domain"
	"tredia-investing/internal/job"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type Dashboard interface {
	Snapshot() job.Snapshot
	Refresh(ctx context.Context, category string) (bool, error)
}

const (
	tabPortfolio = iota
	tabIndices
	tabNews
	tabCount
)

var tabNames = [tabCount]string{"Portfolio", "Indices", "News"}

const defaultRefreshEvery = 5 * time.Second

// Styles.
var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	tabStyle     = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245"))
	activeTab    = tabStyle.Bold(true).Foreground(lipgloss.Color("15")).Underline(true)
	gainStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	titleStyle   = lipgloss.NewStyle().Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	impactStyles = map[domain.Impact]lipgloss.Style{
		domain.ImpactHigh:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		domain.ImpactMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		domain.ImpactLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	}
)

// Messages.
type tickMsg time.Time

type refreshDoneMsg struct {
	ran bool
	err error
}

type keyMap struct {
	Next    key.Binding
	Prev    key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Refresh, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Next:    key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "next")),
	Prev:    key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("shift+tab", "prev")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type Model struct {
	dashboard    Dashboard
	username     string
	refreshEvery time.Duration

	snap    job.Snapshot
	tab     int
	quotes  table.Model
	indices table.Model
	help    help.Model
	status  string

	width  int
	height int
}

func NewModel(dashboard Dashboard, username string) Model {
	m := Model{
		dashboard:    dashboard,
		username:     username,
		refreshEvery: defaultRefreshEvery,
		help:         help.New(),
		width:        80,
		height:       24,
		quotes: table.New(
			table.WithColumns([]table.Column{
				{Title: "Symbol", Width: 8},
				{Title: "Price", Width: 11},
				{Title: "Change", Width: 9},
				{Title: "Change %", Width: 9},
				{Title: "Volume", Width: 14},
			}),
			table.WithFocused(true),
		),
		indices: table.New(
			table.WithColumns([]table.Column{
				{Title: "Index", Width: 10},
				{Title: "Symbol", Width: 8},
				{Title: "Level", Width: 11},
				{Title: "Change", Width: 9},
				{Title: "Change %", Width: 9},
			}),
			table.WithFocused(true),
		),
	}
	m.reload()
	m.SetSize(m.width, m.height)
	return m
}

// SetSize fits the tables to a terminal of the given size.
func (m *Model) SetSize(width, height int) {
	if width > 0 {
		m.width = width
	}
	if height > 0 {
		m.height = height
	}
	// header, tabs, metrics line, footer and borders
	rows := m.height - 8
	if rows < 3 {
		rows = 3
	}
	m.quotes.SetHeight(rows)
	m.indices.SetHeight(rows)
	m.help.Width = m.width
}

func (m *Model) reload() {
	m.snap = m.dashboard.Snapshot()
	m.quotes.SetRows(quoteRows(m.snap.Quotes))
	m.indices.SetRows(indexRows(m.snap.Indices))
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refreshEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Next):
			m.tab = (m.tab + 1) % tabCount
			return m, nil
		case key.Matches(msg, keys.Prev):
			m.tab = (m.tab + tabCount - 1) % tabCount
			return m, nil
		case key.Matches(msg, keys.Refresh):
			m.status = "refreshing..."
			dashboard := m.dashboard
			return m, func() tea.Msg {
				ran, err := dashboard.Refresh(context.Background(), job.CategoryAll)
				return refreshDoneMsg{ran: ran, err: err}
			}
		}

	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tickMsg:
		m.reload()
		return m, m.tick()

	case refreshDoneMsg:
		switch {
		case msg.err != nil:
			m.status = "refresh failed: " + msg.err.Error()
		case !msg.ran:
			m.status = "refresh already in progress"
		default:
			m.status = "refreshed " + time.Now().Format("15:04:05")
		}
		m.reload()
		return m, nil
	}

	var cmd tea.Cmd
	switch m.tab {
	case tabPortfolio:
		m.quotes, cmd = m.quotes.Update(msg)
	case tabIndices:
		m.indices, cmd = m.indices.Update(msg)
	}
	return m, cmd
}

func (m Model) View() string {
	var b strings.Builder

	header := fmt.Sprintf(" Tredia Investing  %s ", m.username)
	b.WriteString(headerStyle.Render(padOrTrunc(header, m.width)))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch m.tab {
	case tabPortfolio:
		b.WriteString(m.renderMetrics())
		b.WriteString("\n")
		b.WriteString(m.quotes.View())
	case tabIndices:
		b.WriteString(m.indices.View())
	case tabNews:
		b.WriteString(m.renderNews())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.help.View(keys))
	return b.String()
}

func (m Model) renderTabs() string {
	parts := make([]string, 0, tabCount)
	for i, name := range tabNames {
		if i == m.tab {
			parts = append(parts, activeTab.Render(name))
			continue
		}
		parts = append(parts, tabStyle.Render(name))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) renderMetrics() string {
	pm := m.snap.Metrics
	change := changeStyle(pm.TotalChange).Render(fmt.Sprintf("%+.2f (%s)", pm.TotalChange, percent(pm.TotalChangePercent)))
	return fmt.Sprintf(" %s $%.2f  %s   %s %s  %s %.2f  %s %.2f  %s %.1f%%",
		titleStyle.Render("Value"), pm.TotalValue, change,
		titleStyle.Render("Volatility"), pm.Volatility,
		titleStyle.Render("Beta"), pm.Beta,
		titleStyle.Render("Sharpe"), pm.SharpeRatio,
		titleStyle.Render("Max DD"), pm.MaxDrawdown,
	)
}

func (m Model) renderNews() string {
	var b strings.Builder
	for _, item := range m.snap.News {
		style, ok := impactStyles[item.Impact]
		if !ok {
			style = dimStyle
		}
		b.WriteString(fmt.Sprintf(" %s %s\n", style.Render(fmt.Sprintf("%-6s", item.Impact)), titleStyle.Render(item.Title)))
		b.WriteString(dimStyle.Render("        "+item.Time) + "\n")
		if item.Summary != "" {
			b.WriteString(lipgloss.NewStyle().Width(max(m.width-8, 20)).PaddingLeft(8).Render(item.Summary))
			b.WriteString("\n")
		}
	}
	if len(m.snap.News) == 0 {
		b.WriteString(dimStyle.Render(" No news yet.\n"))
	}
	return b.String()
}

func (m Model) renderStatus() string {
	st := m.snap.Status[job.Categories[m.tab]]

	line := " " + string(st.Provenance)
	if st.UpdatedAt != nil {
		line += "  updated " + st.UpdatedAt.Local().Format("15:04:05")
	}
	if st.Loading {
		line += "  loading"
	}
	if m.status != "" {
		line += "  " + m.status
	}
	if st.Provenance != domain.ProvenanceLive {
		return warnStyle.Render(line)
	}
	return dimStyle.Render(line)
}

func quoteRows(quotes []domain.Quote) []table.Row {
	rows := make([]table.Row, 0, len(quotes))
	for _, q := range quotes {
		rows = append(rows, table.Row{
			q.Symbol,
			fmt.Sprintf("%.2f", q.Price),
			fmt.Sprintf("%+.2f", q.Change),
			fmt.Sprintf("%+.2f%%", q.ChangePercent),
			fmt.Sprintf("%d", q.Volume),
		})
	}
	return rows
}

func indexRows(indices []domain.IndexQuote) []table.Row {
	rows := make([]table.Row, 0, len(indices))
	for _, idx := range indices {
		rows = append(rows, table.Row{
			idx.Name,
			idx.Symbol,
			fmt.Sprintf("%.2f", idx.Price),
			fmt.Sprintf("%+.2f", idx.Change),
			fmt.Sprintf("%+.2f%%", idx.ChangePercent),
		})
	}
	return rows
}

func changeStyle(change float64) lipgloss.Style {
	if change < 0 {
		return lossStyle
	}
	return gainStyle
}

func percent(pct float64) string {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f%%", pct)
}

func padOrTrunc(s string, width int) string {
	if width <= 0 {
		return s
	}
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}
