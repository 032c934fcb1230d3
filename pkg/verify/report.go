package verify

import (
	"fmt"
	"strings"
	"time"
)

// Report contains the observable outcomes of a verification run.
// A non-nil Report is returned even when Run fails partway, so callers
// can see how far the run got.
type Report struct {
	// Attempts is how many navigation attempts the readiness loop used.
	Attempts int

	// Step outcomes, in run order.
	PageLoaded      bool
	VideoAppeared   bool
	ControlsVisible bool

	// MediaFlowChecked is true when the run polled the target's stats
	// endpoint; MediaFlowing is only meaningful when it is.
	MediaFlowChecked bool
	MediaFlowing     bool

	// ScreenshotPath is the written artifact, empty if capture failed.
	ScreenshotPath string

	// Elapsed is the total run duration.
	Elapsed time.Duration
}

// Summary renders a human-readable multi-line report.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "page loaded:      %v (attempt %d)\n", r.PageLoaded, r.Attempts)
	fmt.Fprintf(&b, "video appeared:   %v\n", r.VideoAppeared)
	fmt.Fprintf(&b, "controls visible: %v\n", r.ControlsVisible)
	if r.MediaFlowChecked {
		fmt.Fprintf(&b, "media flowing:    %v\n", r.MediaFlowing)
	}
	if r.ScreenshotPath != "" {
		fmt.Fprintf(&b, "screenshot:       %s\n", r.ScreenshotPath)
	}
	fmt.Fprintf(&b, "elapsed:          %s", r.Elapsed.Round(time.Millisecond))
	return b.String()
}
