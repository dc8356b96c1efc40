package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	uvm "github.com/accellera-official/uvm-core"
	"github.com/accellera-official/uvm-core/catchers"
	"github.com/accellera-official/uvm-core/contracts"
	"github.com/accellera-official/uvm-core/internal/trail"
	"github.com/accellera-official/uvm-core/sinks"
)

const (
	// Colors
	primaryColor = lipgloss.Color("#7C3AED")
	healthyColor = lipgloss.Color("#10B981")
	warningColor = lipgloss.Color("#F59E0B")
	errorColor   = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(primaryColor).
			Bold(true).
			Padding(0, 1).
			Margin(0, 0, 1, 0)

	tabStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Padding(0, 2).
			Margin(0, 1, 0, 0)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Background(lipgloss.Color("#374151")).
			Bold(true).
			Padding(0, 2).
			Margin(0, 1, 0, 0)

	statusHealthyStyle = lipgloss.NewStyle().
				Foreground(healthyColor).
				Bold(true)

	statusWarningStyle = lipgloss.NewStyle().
				Foreground(warningColor).
				Bold(true)

	statusErrorStyle = lipgloss.NewStyle().
				Foreground(errorColor).
				Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(1, 2).
			Margin(1, 0)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Margin(1, 0)

	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#374151"))
)

type tab int

const (
	overviewTab tab = iota
	passesTab
	catchersTab
)

type catcherRow struct {
	name    string
	enabled bool
}

type model struct {
	pipe       *uvm.Pipeline
	activeTab  tab
	width      int
	height     int
	lastUpdate time.Time

	// Data
	snap     catchers.StatsSnapshot
	tallies  map[contracts.Severity]uint64
	quit     int
	trailLen int
	passes   []trail.Entry
	catchers []catcherRow

	// UI state
	selectedPass    int
	selectedCatcher int
}

type tickMsg struct{}
type dataMsg struct {
	snap     catchers.StatsSnapshot
	tallies  map[contracts.Severity]uint64
	quit     int
	trailLen int
	passes   []trail.Entry
	catchers []catcherRow
}

func initialModel(pipe *uvm.Pipeline) model {
	return model{
		pipe:       pipe,
		activeTab:  overviewTab,
		tallies:    make(map[contracts.Severity]uint64),
		lastUpdate: time.Now(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.refresh(),
		m.tickCmd(),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "tab", "right":
			m.activeTab = (m.activeTab + 1) % 3
			return m, nil

		case "shift+tab", "left":
			if m.activeTab == 0 {
				m.activeTab = 2
			} else {
				m.activeTab--
			}
			return m, nil

		case "r":
			m.pipe.Stats().Reset()
			return m, m.refresh()

		case " ":
			if m.activeTab == catchersTab && m.selectedCatcher < len(m.catchers) {
				row := m.catchers[m.selectedCatcher]
				if err := m.pipe.Catchers().SetEnabled(nil, row.name, !row.enabled); err == nil {
					return m, m.refresh()
				}
			}
			return m, nil

		case "up":
			switch m.activeTab {
			case passesTab:
				if m.selectedPass > 0 {
					m.selectedPass--
				}
			case catchersTab:
				if m.selectedCatcher > 0 {
					m.selectedCatcher--
				}
			}
			return m, nil

		case "down":
			switch m.activeTab {
			case passesTab:
				if m.selectedPass < len(m.passes)-1 {
					m.selectedPass++
				}
			case catchersTab:
				if m.selectedCatcher < len(m.catchers)-1 {
					m.selectedCatcher++
				}
			}
			return m, nil
		}

	case tickMsg:
		return m, tea.Batch(
			m.refresh(),
			m.tickCmd(),
		)

	case dataMsg:
		m.snap = msg.snap
		m.tallies = msg.tallies
		m.quit = msg.quit
		m.trailLen = msg.trailLen
		m.passes = msg.passes
		m.catchers = msg.catchers
		m.lastUpdate = time.Now()
		if m.selectedPass >= len(m.passes) {
			m.selectedPass = max(len(m.passes)-1, 0)
		}
		if m.selectedCatcher >= len(m.catchers) {
			m.selectedCatcher = max(len(m.catchers)-1, 0)
		}
		return m, nil
	}

	return m, nil
}

func (m model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := headerStyle.Width(m.width - 2).Render("Report Pipeline TUI")

	tabs := m.renderTabs()

	var content string
	switch m.activeTab {
	case overviewTab:
		content = m.renderOverview()
	case passesTab:
		content = m.renderPasses()
	case catchersTab:
		content = m.renderCatchers()
	}

	statusBar := m.renderStatusBar()
	help := m.renderHelp()

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		tabs,
		content,
		statusBar,
		help,
	)
}

func (m model) renderTabs() string {
	tabs := []string{
		m.renderTab("Overview", overviewTab),
		m.renderTab("Passes", passesTab),
		m.renderTab("Catchers", catchersTab),
	}

	return lipgloss.JoinHorizontal(lipgloss.Left, tabs...)
}

func (m model) renderTab(title string, t tab) string {
	if m.activeTab == t {
		return activeTabStyle.Render(title)
	}
	return tabStyle.Render(title)
}

func (m model) renderOverview() string {
	var parts []string

	accounting := []string{
		fmt.Sprintf("%-10s %9s %9s", "Severity", "Demoted", "Caught"),
		strings.Repeat("─", 30),
		fmt.Sprintf("%-10s %9d %9d", "FATAL", m.snap.DemotedFatal, m.snap.CaughtFatal),
		fmt.Sprintf("%-10s %9d %9d", "ERROR", m.snap.DemotedError, m.snap.CaughtError),
		fmt.Sprintf("%-10s %9d %9d", "WARNING", m.snap.DemotedWarning, m.snap.CaughtWarning),
		strings.Repeat("─", 30),
		fmt.Sprintf("%-10s %19d", "Total", m.snap.Total()),
	}
	parts = append(parts, cardStyle.Render("Catcher Accounting\n\n"+strings.Join(accounting, "\n")))

	tallyRows := []string{
		fmt.Sprintf("%-10s %9s", "Severity", "Emitted"),
		strings.Repeat("─", 20),
	}
	for _, sev := range contracts.Severities() {
		cell := severityStyle(sev).Render(fmt.Sprintf("%-10s", sev))
		tallyRows = append(tallyRows, cell+fmt.Sprintf(" %9d", m.tallies[sev]))
	}
	parts = append(parts, cardStyle.Render("Emission Tallies\n\n"+strings.Join(tallyRows, "\n")))

	workload := fmt.Sprintf(
		"Reports emitted: %d\nQuit count: %d\nTrail entries: %d",
		m.totalEmitted(),
		m.quit,
		m.trailLen,
	)
	parts = append(parts, cardStyle.Render("Workload\n\n"+workload))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m model) renderPasses() string {
	if len(m.passes) == 0 {
		return cardStyle.Render("No catcher passes recorded yet")
	}

	var rows []string
	rows = append(rows, "Time         Scope                  Before   After    Verdict")
	rows = append(rows, strings.Repeat("─", 64))

	for i, e := range m.passes {
		verdict := "thrown"
		if e.Pass.Caught {
			verdict = "caught"
		}
		row := fmt.Sprintf("%-12s %-22s %-8s %-8s %s",
			e.Timestamp.Format("15:04:05.000"),
			truncateString(orDash(e.Pass.Scope), 22),
			e.Pass.Original,
			e.Pass.Final,
			verdict,
		)
		if i == m.selectedPass {
			row = selectedStyle.Render(row)
		}
		rows = append(rows, row)
	}

	content := strings.Join(rows, "\n")

	if m.selectedPass < len(m.passes) {
		e := m.passes[m.selectedPass]

		verdict := statusHealthyStyle.Render("thrown to sinks")
		if e.Pass.Caught {
			verdict = statusWarningStyle.Render("caught")
		}

		details := []string{
			fmt.Sprintf("Trace: %s", e.Pass.TraceID),
			fmt.Sprintf("Report: [%s] @ %s", e.Pass.ReportID, orDash(e.Pass.Scope)),
			fmt.Sprintf("Severity: %s -> %s", e.Pass.Original, e.Pass.Final),
			fmt.Sprintf("Verdict: %s", verdict),
		}
		if len(e.Pass.Steps) > 0 {
			details = append(details, "", "Steps:")
			for _, s := range e.Pass.Steps {
				line := fmt.Sprintf("  %s: %s", s.Catcher, s.Decision)
				if s.SeverityBefore != s.SeverityAfter {
					line += fmt.Sprintf(", severity %s -> %s", s.SeverityBefore, s.SeverityAfter)
				}
				if s.ActionBefore != s.ActionAfter {
					line += fmt.Sprintf(", action %s -> %s", s.ActionBefore, s.ActionAfter)
				}
				if s.Reverted {
					line += ", reverted"
				}
				details = append(details, line)
			}
		}

		return lipgloss.JoinVertical(lipgloss.Left,
			cardStyle.Render("Recent Passes\n\n"+content),
			cardStyle.Render("Pass Details\n\n"+strings.Join(details, "\n")),
		)
	}

	return cardStyle.Render("Recent Passes\n\n" + content)
}

func (m model) renderCatchers() string {
	if len(m.catchers) == 0 {
		return cardStyle.Render("No catchers registered")
	}

	var rows []string
	rows = append(rows, "Catcher                         State")
	rows = append(rows, strings.Repeat("─", 40))

	for i, c := range m.catchers {
		state := "enabled"
		if !c.enabled {
			state = "disabled"
		}
		row := fmt.Sprintf("%-30s  %s", truncateString(c.name, 30), state)
		if i == m.selectedCatcher {
			row = selectedStyle.Render(row)
		}
		rows = append(rows, row)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		cardStyle.Render("Registered Catchers\n\n"+strings.Join(rows, "\n")),
		helpStyle.Render("Space toggles the selected catcher"),
	)
}

func (m model) renderStatusBar() string {
	parts := []string{
		fmt.Sprintf("Last update: %s", m.lastUpdate.Format("15:04:05")),
		fmt.Sprintf("Reports: %d", m.totalEmitted()),
		fmt.Sprintf("Intercepted: %d", m.snap.Total()),
	}
	return helpStyle.Render(strings.Join(parts, " | "))
}

func (m model) renderHelp() string {
	help := "Tab/→: Next tab | Shift+Tab/←: Previous tab | ↑↓: Navigate | Space: Toggle catcher | R: Reset counters | Q: Quit"
	return helpStyle.Render(help)
}

func (m model) refresh() tea.Cmd {
	return func() tea.Msg {
		srv := m.pipe.Server()

		tallies := make(map[contracts.Severity]uint64, 4)
		for _, sev := range contracts.Severities() {
			tallies[sev] = srv.SeverityCount(sev)
		}

		var passes []trail.Entry
		trailLen := 0
		if tr := m.pipe.Trail(); tr != nil {
			trailLen = tr.Len()
			passes = tr.Recent(12)
			// Newest first
			for i, j := 0, len(passes)-1; i < j; i, j = i+1, j-1 {
				passes[i], passes[j] = passes[j], passes[i]
			}
		}

		reg := m.pipe.Catchers()
		var rows []catcherRow
		for _, name := range reg.Names(nil) {
			if r, ok := reg.Lookup(nil, name); ok {
				rows = append(rows, catcherRow{name: name, enabled: r.Enabled()})
			}
		}

		return dataMsg{
			snap:     m.pipe.Stats().Snapshot(),
			tallies:  tallies,
			quit:     srv.QuitCount(),
			trailLen: trailLen,
			passes:   passes,
			catchers: rows,
		}
	}
}

func (m model) tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m model) totalEmitted() uint64 {
	var total uint64
	for _, n := range m.tallies {
		total += n
	}
	return total
}

func severityStyle(sev contracts.Severity) lipgloss.Style {
	switch sev {
	case contracts.SeverityFatal, contracts.SeverityError:
		return statusErrorStyle
	case contracts.SeverityWarning:
		return statusWarningStyle
	default:
		return statusHealthyStyle
	}
}

// newDemoPipeline builds an in-process pipeline whose own output stays off
// the terminal the TUI owns.
func newDemoPipeline() (*uvm.Pipeline, error) {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	pipe, err := uvm.New(
		uvm.WithLogger(quiet),
		uvm.WithVerbosity(contracts.VerbosityMedium),
		uvm.WithDisplaySinks(sinks.Discard),
		uvm.WithTrail(512),
	)
	if err != nil {
		return nil, err
	}

	demote := catchers.NewCatcherFunc("demote-driver-timeouts", func(p *catchers.Pass) catchers.Decision {
		if p.ID() == "DRV/TIMEOUT" && p.Severity() == contracts.SeverityError {
			p.SetSeverity(contracts.SeverityWarning)
		}
		return catchers.Throw
	})
	if _, err := pipe.Catchers().Add(demote); err != nil {
		return nil, err
	}
	mute := catchers.NewCatcherFunc("mute-heartbeats", func(p *catchers.Pass) catchers.Decision {
		if p.ID() == "MON/HEARTBEAT" {
			return catchers.Caught
		}
		return catchers.Throw
	})
	if _, err := pipe.Catchers().Add(mute); err != nil {
		return nil, err
	}

	return pipe, nil
}

// startWorkload runs three emitter goroutines against the pipeline until the
// context is canceled.
func startWorkload(ctx context.Context, pipe *uvm.Pipeline) {
	script := []struct {
		severity contracts.Severity
		id, text string
	}{
		{contracts.SeverityInfo, "SEQ/PROGRESS", "sequence item dispatched"},
		{contracts.SeverityWarning, "MON/HEARTBEAT", "heartbeat not observed in window"},
		{contracts.SeverityError, "DRV/TIMEOUT", "response not seen before timeout"},
		{contracts.SeverityInfo, "SB/MATCH", "scoreboard compare ok"},
		{contracts.SeverityError, "CFG/MISSING", "configured entry has no value"},
	}

	for i := 0; i < 3; i++ {
		rep := pipe.Reporter(fmt.Sprintf("tui.emitter-%d", i))
		go func() {
			n := 0
			for {
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Duration(100+rand.Intn(400)) * time.Millisecond):
				}
				step := script[n%len(script)]
				rep.Report(step.severity, step.id, step.text)
				n++
			}
		}()
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncateString(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func main() {
	// Check for help flag
	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		fmt.Println("Report Pipeline TUI")
		fmt.Println("")
		fmt.Println("A terminal dashboard over an in-process report pipeline. Three emitter")
		fmt.Println("goroutines feed the catcher chain while the dashboard tracks accounting,")
		fmt.Println("emission tallies, and the per-pass decision trail.")
		fmt.Println("")
		fmt.Println("Navigation:")
		fmt.Println("  Tab/→                       Next tab")
		fmt.Println("  Shift+Tab/←                 Previous tab")
		fmt.Println("  ↑↓                          Navigate lists")
		fmt.Println("  Space                       Toggle the selected catcher")
		fmt.Println("  R                           Reset the catcher counters")
		fmt.Println("  Q                           Quit")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pipe, err := newDemoPipeline()
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}
	defer pipe.Close()

	startWorkload(ctx, pipe)

	p := tea.NewProgram(
		initialModel(pipe),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running TUI: %v", err)
	}
}
