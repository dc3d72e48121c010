package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/autododge/internal/pipeline"
)

// RenderFunc runs a render, reporting progress through the callback.
type RenderFunc func(ctx context.Context, progress func(frame, total int)) (pipeline.Result, error)

// RunWithProgress runs fn while showing the progress view.
// Quitting the view cancels the context passed to fn.
func RunWithProgress(ctx context.Context, title string, fn RenderFunc, opts ...tea.ProgramOption) (pipeline.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewProgressModel(title, cancel), opts...)

	type outcome struct {
		res pipeline.Result
		err error
	}
	results := make(chan outcome, 1)

	go func() {
		lastPct := -1
		res, err := fn(ctx, func(frame, total int) {
			if total <= 0 {
				return
			}
			// Only redraw when the visible percentage moves
			if pct := frame * 100 / total; pct != lastPct || frame == total {
				lastPct = pct
				p.Send(FrameMsg{Frame: frame, Total: total})
			}
		})
		results <- outcome{res, err}
		p.Send(DoneMsg{Result: res, Err: err})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		out := <-results
		if out.err != nil {
			return out.res, out.err
		}
		return out.res, fmt.Errorf("tui: %w", err)
	}

	out := <-results
	return out.res, out.err
}
