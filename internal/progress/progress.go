// Package progress renders a stderr progress bar during long phases. A nil
// Tracker is valid and does nothing, so callers never branch on quiet mode.
package progress

import (
	"os"

	"github.com/schollz/progressbar/v3"
)

// Tracker wraps a progress bar for a counted phase.
type Tracker struct {
	bar *progressbar.ProgressBar
}

// NewTracker creates a bar with a label and total, or nil when disabled.
func NewTracker(label string, total int, enabled bool) *Tracker {
	if !enabled {
		return nil
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Tracker{bar: bar}
}

// Tick advances the bar by one. Safe for concurrent use.
func (t *Tracker) Tick() {
	if t != nil {
		t.bar.Add(1)
	}
}

// Finish clears the bar from the terminal.
func (t *Tracker) Finish() {
	if t != nil {
		t.bar.Finish()
		t.bar.Clear()
	}
}
