// Package tui provides the Bubble Tea progress view shown while a video renders.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/autododge/internal/pipeline"
)

const (
	maxBarWidth = 60
	refreshRate = 10 // Ticks per second for the elapsed line
)

// refreshMsg redraws the elapsed and ETA figures between frame updates.
type refreshMsg time.Time

func refresh() tea.Cmd {
	return tea.Tick(time.Second/refreshRate, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

// FrameMsg reports render progress.
type FrameMsg struct {
	Frame int
	Total int
}

// DoneMsg reports the end of the render.
type DoneMsg struct {
	Result pipeline.Result
	Err    error
}

// ProgressModel displays a render progress bar with frame count and ETA.
type ProgressModel struct {
	title  string
	bar    progress.Model
	help   help.Model
	keys   KeyMap
	theme  Theme
	cancel context.CancelFunc

	frame, total int
	start        time.Time
	now          time.Time

	cancelled bool
	done      bool
	result    pipeline.Result
	err       error
}

// NewProgressModel creates the view. cancel is called when the user aborts.
func NewProgressModel(title string, cancel context.CancelFunc) ProgressModel {
	now := time.Now()
	return ProgressModel{
		title:  title,
		bar:    progress.New(progress.WithGradient("#FF00FF", "#00FFFF"), progress.WithWidth(maxBarWidth)),
		help:   help.New(),
		keys:   DefaultKeyMap(),
		theme:  DefaultTheme(),
		cancel: cancel,
		start:  now,
		now:    now,
	}
}

// Init starts the refresh ticker.
func (m ProgressModel) Init() tea.Cmd {
	return refresh()
}

// Update handles messages.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Cancel) && !m.cancelled {
			m.cancelled = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-4, maxBarWidth)
		m.help.Width = msg.Width
		return m, nil

	case FrameMsg:
		m.frame, m.total = msg.Frame, msg.Total
		return m, nil

	case refreshMsg:
		m.now = time.Time(msg)
		if m.done {
			return m, nil
		}
		return m, refresh()

	case DoneMsg:
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

// Percent returns the completed fraction in [0, 1].
func (m ProgressModel) Percent() float64 {
	if m.total <= 0 {
		return 0
	}
	return min(float64(m.frame)/float64(m.total), 1)
}

// eta extrapolates the remaining time from the average frame rate so far.
func (m ProgressModel) eta() time.Duration {
	elapsed := m.now.Sub(m.start)
	if m.frame == 0 || elapsed <= 0 {
		return 0
	}
	perFrame := elapsed / time.Duration(m.frame)
	return perFrame * time.Duration(max(m.total-m.frame, 0))
}

// Cancelled reports whether the user aborted the render.
func (m ProgressModel) Cancelled() bool {
	return m.cancelled
}

// View renders the progress view.
func (m ProgressModel) View() string {
	var b strings.Builder

	b.WriteString(m.theme.Title.Render(m.title))
	b.WriteString("\n\n")
	b.WriteString(m.bar.ViewAs(m.Percent()))
	b.WriteString("\n")

	elapsed := m.now.Sub(m.start).Round(time.Second)
	stats := fmt.Sprintf("%s %s   %s %s   %s %s",
		m.theme.Label.Render("frame"), m.theme.Value.Render(fmt.Sprintf("%d/%d", m.frame, m.total)),
		m.theme.Label.Render("elapsed"), m.theme.Value.Render(elapsed.String()),
		m.theme.Label.Render("eta"), m.theme.Value.Render(m.eta().Round(time.Second).String()),
	)
	b.WriteString(stats)
	b.WriteString("\n\n")

	switch {
	case m.done && m.err != nil:
		b.WriteString(m.theme.Error.Render("render failed: " + m.err.Error()))
	case m.done:
		b.WriteString(m.theme.Success.Render(fmt.Sprintf("done: score %d, level %d", m.result.Score, m.result.Level)))
	case m.cancelled:
		b.WriteString(m.theme.Warning.Render("cancelling..."))
	default:
		b.WriteString(m.help.View(m.keys))
	}
	b.WriteString("\n")

	return b.String()
}
