package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// searchProgress shows a progress bar while dependency searches complete.
type searchProgress struct {
	quiet bool
	bar   *progressbar.ProgressBar
}

// newSearchProgress creates a progress bar over total searches writing to w.
// A quiet progress does nothing.
func newSearchProgress(w io.Writer, total int, quiet bool) *searchProgress {
	p := &searchProgress{quiet: quiet}
	if quiet || total == 0 {
		return p
	}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Searching dependencies"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("deps/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
	return p
}

// searched marks one dependency as done. Safe for concurrent use.
func (p *searchProgress) searched() {
	if p.bar != nil {
		p.bar.Add(1)
	}
}

func (p *searchProgress) finish() {
	if p.bar != nil {
		p.bar.Finish()
	}
}
