package outwriter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/annopredict/annopredict/internal/contract"
	"github.com/fatih/color"
	"golang.org/x/term"
)

const (
	defaultTermWidth = 80 // fallback when the terminal size can't be detected
	minBarWidth      = 10
	maxBarWidth      = 50
)

// NewProgress returns a progress callback drawing a bar on stderr, or nil when
// progress is disabled or stderr is not an interactive terminal.
func NewProgress(label string, cfg *contract.Config) contract.ProgressFunc {
	if cfg == nil || !cfg.ShowProgress || !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil
	}
	return newProgressBar(os.Stderr, label, getBarWidth(label))
}

// getBarWidth fits the bar between the label and the counters on the current terminal.
func getBarWidth(label string) int {
	termWidth := defaultTermWidth
	if detected, _, err := term.GetSize(int(os.Stderr.Fd())); err == nil && detected > 0 {
		termWidth = detected
	}
	// label, brackets, counters and percentage
	available := termWidth - len(label) - 30
	return max(minBarWidth, min(available, maxBarWidth))
}

// newProgressBar renders a progress bar of the given width to w.
// The bar is redrawn only when its filled width changes and stops at the final count.
func newProgressBar(w io.Writer, label string, width int) contract.ProgressFunc {
	done := color.New(color.FgGreen).SprintFunc()
	last, finished := -1, false
	return func(current, total int) {
		if total <= 0 || finished {
			return
		}
		current = min(max(current, 0), total)
		filled := current * width / total
		if filled == last && current != total {
			return
		}
		last = filled
		finished = current == total

		bar := done(strings.Repeat("=", filled)) + strings.Repeat(" ", width-filled)
		_, _ = fmt.Fprintf(w, "\r%s [%s] %d/%d (%3d%%)", label, bar, current, total, current*100/total)
		if finished {
			_, _ = fmt.Fprintln(w)
		}
	}
}
