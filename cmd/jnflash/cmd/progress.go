package cmd

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/moffa90/go-jnflash/bootloader"
)

// progressRenderer draws a progress bar on a terminal and falls back to one
// log line per phase otherwise.
type progressRenderer struct {
	bar   *progressbar.ProgressBar
	phase string
}

func newProgressRenderer(total int) *progressRenderer {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return &progressRenderer{}
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(bootloader.PhaseIdentifying),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetPredictTime(true),
	)
	return &progressRenderer{bar: bar}
}

func (r *progressRenderer) update(p bootloader.Progress) {
	phaseChanged := p.Phase != r.phase
	r.phase = p.Phase

	if r.bar == nil {
		if phaseChanged {
			log.Info("phase", "phase", p.Phase, "percent", fmt.Sprintf("%.0f%%", p.Percentage))
		}
		return
	}

	if phaseChanged {
		r.bar.Describe(fmt.Sprintf("%-11s", p.Phase))
	}
	_ = r.bar.Set(p.BytesWritten)
}

// finish completes the bar, or leaves it where it stopped if the run failed.
func (r *progressRenderer) finish(ok bool) {
	if r.bar == nil {
		return
	}
	if ok {
		_ = r.bar.Finish()
	} else {
		_ = r.bar.Exit()
	}
	fmt.Fprintln(os.Stderr)
}
