// Package verify drives a headless browser through a player smoke
// check: wait for the target app to come up, start a stream, reveal the
// controls overlay, and capture a screenshot for manual inspection.
package verify

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/thesyncim/playercheck/pkg/browser"
)

// Verifier runs the player verification sequence described by a Config.
type Verifier struct {
	cfg Config

	// Logf receives progress messages. Defaults to log.Printf; tests
	// typically inject t.Logf.
	Logf func(format string, args ...any)
}

// New creates a Verifier after validating the configuration.
func New(cfg Config) (*Verifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Verifier{cfg: cfg}, nil
}

func (v *Verifier) logf(format string, args ...any) {
	if v.Logf != nil {
		v.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// Run executes the verification sequence. It returns a non-nil Report
// in all cases so callers can see how far the run got.
//
// Only hard failures return an error: the target never becoming
// reachable, a missing selector, the video not appearing in time, or
// the screenshot not being written. The controls visibility check and
// the optional media flow check are soft: their outcome is recorded in
// the Report and logged, never fatal.
func (v *Verifier) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{}
	defer func() { report.Elapsed = time.Since(start) }()

	client, err := browser.NewClient(v.cfg.Browser)
	if err != nil {
		return report, fmt.Errorf("failed to start browser: %w", err)
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			v.logf("browser close error: %v", cerr)
		}
	}()

	v.logf("Navigating to %s", v.cfg.TargetURL)
	if err := v.waitReady(ctx, client, report); err != nil {
		return report, err
	}
	report.PageLoaded = true

	if err := client.WaitStable(); err != nil {
		return report, fmt.Errorf("page not stable: %w", err)
	}

	v.logf("Filling video URL %s", v.cfg.VideoURL)
	if err := client.Fill(v.cfg.URLInputSelector, v.cfg.VideoURL); err != nil {
		return report, fmt.Errorf("failed to fill video URL: %w", err)
	}

	v.logf("Starting stream")
	if err := client.ClickText("button", regexp.QuoteMeta(v.cfg.StartButtonText)); err != nil {
		return report, fmt.Errorf("failed to start stream: %w", err)
	}

	v.logf("Waiting for video element")
	if err := client.WaitVisible(v.cfg.VideoSelector, v.cfg.VideoTimeout); err != nil {
		return report, fmt.Errorf("video did not appear: %w", err)
	}
	report.VideoAppeared = true

	// Let playback start and metadata load before poking at the UI.
	if err := sleepCtx(ctx, v.cfg.VideoSettleDelay); err != nil {
		return report, err
	}

	v.logf("Moving mouse to reveal controls")
	for _, pt := range v.cfg.MouseTrail {
		if err := client.MoveMouse(pt.X, pt.Y); err != nil {
			return report, fmt.Errorf("mouse move to (%.0f,%.0f) failed: %w", pt.X, pt.Y, err)
		}
	}

	// Wait out the controls CSS transition.
	if err := sleepCtx(ctx, v.cfg.ControlsSettleDelay); err != nil {
		return report, err
	}

	visible, err := client.Visible(v.cfg.ControlsSelector)
	if err != nil {
		return report, fmt.Errorf("controls visibility check failed: %w", err)
	}
	report.ControlsVisible = visible
	if visible {
		v.logf("Controls are visible")
	} else {
		v.logf("WARNING: controls not visible after mouse move")
	}

	if v.cfg.StatsPath != "" {
		report.MediaFlowChecked = true
		flowing, err := v.pollMediaFlow(ctx)
		if err != nil {
			v.logf("WARNING: media flow check failed: %v", err)
		}
		report.MediaFlowing = flowing
		if flowing {
			v.logf("Media is flowing on the wire")
		} else {
			v.logf("WARNING: no media received by target within %s", v.cfg.MediaFlowTimeout)
		}
	}

	v.logf("Capturing screenshot to %s", v.cfg.ScreenshotPath)
	if err := client.Screenshot(v.cfg.ScreenshotPath); err != nil {
		return report, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	report.ScreenshotPath = v.cfg.ScreenshotPath

	return report, nil
}

// waitReady navigates to the target URL until it loads, with a fixed
// delay between attempts. The target server may still be starting up,
// so connection errors are expected early on.
func (v *Verifier) waitReady(ctx context.Context, client *browser.Client, report *Report) error {
	var lastErr error
	for attempt := 1; attempt <= v.cfg.ReadyAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		report.Attempts = attempt

		_, err := client.Navigate(v.cfg.TargetURL, v.cfg.NavTimeout)
		if err == nil {
			return nil
		}
		lastErr = err

		v.logf("Waiting for server... (attempt %d/%d)", attempt, v.cfg.ReadyAttempts)
		if attempt < v.cfg.ReadyAttempts {
			if err := sleepCtx(ctx, v.cfg.ReadyDelay); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("server at %s not reachable after %d attempts: %w",
		v.cfg.TargetURL, v.cfg.ReadyAttempts, lastErr)
}

// sleepCtx sleeps for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
