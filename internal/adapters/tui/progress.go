// Package tui renders live scan progress with bubbletea.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lrem/reorg/internal/scanner"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Width(14)

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)
)

// Result carries the run's outcome into the TUI.
type Result struct {
	Summary scanner.Summary
	Err     error
}

type tickMsg time.Time

type doneMsg Result

// Progress is the scan progress model. It polls the engine's counters on a
// short tick and exits once the result channel delivers.
type Progress struct {
	engine  *scanner.Engine
	results <-chan Result
	cancel  func()

	spinner   spinner.Model
	start     time.Time
	snap      scanner.Snapshot
	canceling bool
	result    *Result
}

// NewProgress builds the progress model over a running engine. cancel stops
// the scan cooperatively when the user quits the view.
func NewProgress(engine *scanner.Engine, results <-chan Result, cancel func()) *Progress {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return &Progress{
		engine:  engine,
		results: results,
		cancel:  cancel,
		spinner: s,
		start:   time.Now(),
	}
}

// Result returns the run outcome once the program has finished.
func (p *Progress) Result() *Result {
	return p.result
}

// Init starts the spinner, the poll tick, and the completion wait.
func (p *Progress) Init() tea.Cmd {
	return tea.Batch(p.spinner.Tick, tick(), p.waitDone())
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (p *Progress) waitDone() tea.Cmd {
	return func() tea.Msg {
		return doneMsg(<-p.results)
	}
}

// Update handles messages for the progress view.
func (p *Progress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		p.snap = p.engine.Snapshot()
		return p, tick()

	case doneMsg:
		r := Result(msg)
		p.result = &r
		p.snap = p.engine.Snapshot()
		return p, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			// Ask the engine to stop, then wait for its result so the
			// catalog is left in a committed state.
			p.canceling = true
			if p.cancel != nil {
				p.cancel()
			}
		}
		return p, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd
	}
	return p, nil
}

// View renders the current counters.
func (p *Progress) View() string {
	var header string
	switch {
	case p.result == nil && p.canceling:
		header = fmt.Sprintf("%s Stopping...", p.spinner.View())
	case p.result == nil:
		header = fmt.Sprintf("%s Scanning... (%s)", p.spinner.View(), time.Since(p.start).Round(time.Second))
	case p.result.Err != nil:
		header = errStyle.Render("Scan failed: " + p.result.Err.Error())
	default:
		header = doneStyle.Render(fmt.Sprintf("Scan complete in %s", p.result.Summary.Duration.Round(time.Second)))
	}

	s := p.snap
	body := titleStyle.Render("reorg") + "\n" + header + "\n\n" +
		row("directories", fmt.Sprintf("%d (%d resumed)", s.DirsScanned, s.DirsResumed)) +
		row("files", fmt.Sprintf("%d (%s)", s.FilesHashed, humanBytes(s.BytesHashed))) +
		row("symlinks", fmt.Sprintf("%d", s.Symlinks)) +
		row("failures", fmt.Sprintf("%d", s.Failures)) +
		row("queued", fmt.Sprintf("%d dirs, %d writes", s.QueueLen, s.SinkLen))
	return body
}

func row(label, value string) string {
	return labelStyle.Render(label) + value + "\n"
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
