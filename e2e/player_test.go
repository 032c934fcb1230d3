//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/thesyncim/playercheck/cmd/playerdemo/server"
	"github.com/thesyncim/playercheck/pkg/browser"
	"github.com/thesyncim/playercheck/pkg/verify"
)

// pngMagic is the first eight bytes of every PNG file.
var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// startDemoServer starts the demo player server on a random port and
// returns its localhost URL.
func startDemoServer(t *testing.T) string {
	t.Helper()

	srv, err := server.NewServer(server.DefaultConfig())
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	addr, err := srv.Start()
	if err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			t.Errorf("server shutdown error: %v", err)
		}
	})

	_, port, _ := net.SplitHostPort(addr)
	return "http://localhost:" + port
}

// TestVerifier_FullRun validates the complete verification sequence
// against the demo server:
// 1. Readiness loop succeeds on the first attempt (server already up)
// 2. Filling the URL and starting the stream creates the video element
// 3. Mouse movement reveals the controls overlay
// 4. The publish path delivers RTP to the server (media flow check)
// 5. The screenshot artifact is written
func TestVerifier_FullRun(t *testing.T) {
	target := startDemoServer(t)

	cfg := verify.DefaultConfig()
	cfg.TargetURL = target
	// A source the demo server 404s: the page falls back to its canvas
	// test pattern, so the publish path carries frames without network
	// access to real media.
	cfg.VideoURL = target + "/missing.mp4"
	cfg.ScreenshotPath = filepath.Join(t.TempDir(), "verification_controls.png")
	cfg.StatsPath = "/api/stats"
	cfg.MediaFlowTimeout = 20 * time.Second

	v, err := verify.New(cfg)
	if err != nil {
		t.Fatalf("failed to create verifier: %v", err)
	}
	v.Logf = t.Logf

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	report, err := v.Run(ctx)
	if err != nil {
		t.Fatalf("verification run failed: %v\nreport:\n%s", err, report.Summary())
	}
	t.Logf("Report:\n%s", report.Summary())

	if !report.PageLoaded {
		t.Error("page should have loaded")
	}
	if report.Attempts != 1 {
		t.Errorf("server was already up, expected 1 attempt, got %d", report.Attempts)
	}
	if !report.VideoAppeared {
		t.Error("video element should have appeared after starting the stream")
	}
	if !report.ControlsVisible {
		t.Error("controls overlay should be visible after mouse movement")
	}
	if !report.MediaFlowChecked {
		t.Error("media flow check should have run")
	}
	if !report.MediaFlowing {
		t.Error("demo server should have received RTP from the page")
	}

	// The artifact is the run's output: verify it is a real PNG.
	data, err := os.ReadFile(report.ScreenshotPath)
	if err != nil {
		t.Fatalf("screenshot not written: %v", err)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		t.Errorf("screenshot is not a PNG (first bytes: %x)", data[:min(len(data), 8)])
	}
}

// TestVerifier_ServerNeverComesUp exercises the only explicit failure
// path: the readiness budget is exhausted against a dead address.
func TestVerifier_ServerNeverComesUp(t *testing.T) {
	// Reserve a port, then free it so nothing listens there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve port: %v", err)
	}
	deadAddr := ln.Addr().String()
	ln.Close()

	cfg := verify.DefaultConfig()
	cfg.TargetURL = "http://" + deadAddr
	cfg.ReadyAttempts = 2
	cfg.ReadyDelay = 200 * time.Millisecond
	cfg.NavTimeout = 3 * time.Second
	cfg.ScreenshotPath = filepath.Join(t.TempDir(), "unused.png")

	v, err := verify.New(cfg)
	if err != nil {
		t.Fatalf("failed to create verifier: %v", err)
	}
	v.Logf = t.Logf

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	report, err := v.Run(ctx)
	if err == nil {
		t.Fatal("expected run to fail against a dead address")
	}
	if !strings.Contains(err.Error(), "not reachable") {
		t.Errorf("unexpected error: %v", err)
	}
	if report.PageLoaded {
		t.Error("page should not have loaded")
	}
	if report.Attempts != cfg.ReadyAttempts {
		t.Errorf("expected the full budget of %d attempts, got %d", cfg.ReadyAttempts, report.Attempts)
	}

	// Bounded termination: no screenshot artifact on the failure path.
	if _, err := os.Stat(cfg.ScreenshotPath); !os.IsNotExist(err) {
		t.Errorf("screenshot should not exist after readiness failure, stat err = %v", err)
	}
}

// TestControls_HideAfterIdle drives the player page directly and
// verifies the overlay hides again once the mouse stops moving, so a
// rerun starts from a clean state.
func TestControls_HideAfterIdle(t *testing.T) {
	target := startDemoServer(t)

	client, err := browser.NewClient(browser.DefaultConfig())
	if err != nil {
		t.Fatalf("failed to create browser: %v", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			t.Errorf("browser close error: %v", err)
		}
	}()

	if _, err := client.Navigate(target, 10*time.Second); err != nil {
		t.Fatalf("failed to navigate: %v", err)
	}
	if err := client.Fill(`input[type="url"]`, target+"/missing.mp4"); err != nil {
		t.Fatalf("failed to fill URL: %v", err)
	}
	if err := client.ClickText("button", "Start Streaming"); err != nil {
		t.Fatalf("failed to click start: %v", err)
	}
	if err := client.WaitVisible("video", 10*time.Second); err != nil {
		t.Fatalf("video did not appear: %v", err)
	}

	const controls = `div[aria-label="Video controls"]`

	if err := client.MoveMouse(640, 360); err != nil {
		t.Fatalf("mouse move failed: %v", err)
	}
	if err := client.MoveMouse(650, 370); err != nil {
		t.Fatalf("mouse move failed: %v", err)
	}
	time.Sleep(time.Second) // CSS transition

	visible, err := client.Visible(controls)
	if err != nil {
		t.Fatalf("visibility check failed: %v", err)
	}
	if !visible {
		t.Fatal("controls should be visible right after mouse movement")
	}

	// The page hides the overlay after 3 seconds without movement.
	time.Sleep(4 * time.Second)

	visible, err = client.Visible(controls)
	if err != nil {
		t.Fatalf("visibility check failed: %v", err)
	}
	if visible {
		t.Error("controls should hide after 3s of mouse idle")
	}
}
