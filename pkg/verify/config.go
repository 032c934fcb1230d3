package verify

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/thesyncim/playercheck/pkg/browser"
)

// Point is a viewport coordinate used for mouse movement.
type Point struct {
	X float64
	Y float64
}

// Config holds all knobs for a verification run. Every field has a
// default matching the standard player smoke check; override only what
// the target deployment changes.
type Config struct {
	// TargetURL is the address of the player web app.
	TargetURL string

	// VideoURL is typed into the player's URL input before streaming.
	VideoURL string

	// Selectors for the player surface.
	URLInputSelector string // the video URL input
	StartButtonText  string // visible text of the start button
	VideoSelector    string // the video element that appears after start
	ControlsSelector string // the controls overlay revealed on mousemove

	// ScreenshotPath is where the final PNG artifact is written.
	ScreenshotPath string

	// Readiness polling: the target server may still be starting up.
	ReadyAttempts int           // navigation attempts before giving up
	ReadyDelay    time.Duration // fixed delay between attempts
	NavTimeout    time.Duration // per-attempt navigation timeout

	// VideoTimeout bounds the wait for the video element to appear.
	VideoTimeout time.Duration

	// Settle delays for asynchronous page behavior.
	VideoSettleDelay    time.Duration // metadata load / playback start
	ControlsSettleDelay time.Duration // controls CSS transition

	// MouseTrail is the sequence of cursor positions used to trigger the
	// player's mousemove-revealed controls.
	MouseTrail []Point

	// StatsPath, when non-empty, names a JSON endpoint on the target
	// reporting ingest counters. The run then also verifies media is
	// flowing on the wire. Empty disables the check.
	StatsPath        string
	MediaFlowTimeout time.Duration

	// Browser configures the headless Chrome instance.
	Browser browser.Config
}

// DefaultConfig returns the standard smoke-check configuration:
// a local player on :3000, the Sintel trailer as test media, and the
// selectors of the stock player page.
func DefaultConfig() Config {
	return Config{
		TargetURL:           "http://localhost:3000",
		VideoURL:            "https://media.w3.org/2010/05/sintel/trailer.mp4",
		URLInputSelector:    `input[type="url"]`,
		StartButtonText:     "Start Streaming",
		VideoSelector:       "video",
		ControlsSelector:    `div[aria-label="Video controls"]`,
		ScreenshotPath:      "verification_controls.png",
		ReadyAttempts:       30,
		ReadyDelay:          2 * time.Second,
		NavTimeout:          5 * time.Second,
		VideoTimeout:        10 * time.Second,
		VideoSettleDelay:    2 * time.Second,
		ControlsSettleDelay: time.Second,
		MouseTrail:          []Point{{X: 640, Y: 360}, {X: 650, Y: 370}},
		MediaFlowTimeout:    10 * time.Second,
		Browser:             browser.DefaultConfig(),
	}
}

// Validate checks the configuration for values that would make a run
// meaningless rather than merely fail.
func (c Config) Validate() error {
	if c.TargetURL == "" {
		return errors.New("target URL is required")
	}
	if _, err := url.Parse(c.TargetURL); err != nil {
		return fmt.Errorf("invalid target URL %q: %w", c.TargetURL, err)
	}
	if c.VideoURL == "" {
		return errors.New("video URL is required")
	}
	if c.URLInputSelector == "" || c.VideoSelector == "" || c.ControlsSelector == "" {
		return errors.New("all selectors are required")
	}
	if c.StartButtonText == "" {
		return errors.New("start button text is required")
	}
	if c.ScreenshotPath == "" {
		return errors.New("screenshot path is required")
	}
	if c.ReadyAttempts <= 0 {
		return fmt.Errorf("ready attempts must be positive, got %d", c.ReadyAttempts)
	}
	if c.ReadyDelay < 0 || c.NavTimeout <= 0 || c.VideoTimeout <= 0 {
		return errors.New("timeouts must be positive")
	}
	if c.StatsPath != "" && c.MediaFlowTimeout <= 0 {
		return errors.New("media flow timeout must be positive when stats path is set")
	}
	return nil
}
