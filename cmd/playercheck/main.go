// Player verification runner.
//
// Launches a headless Chrome, waits for the target player app to come
// up, starts a stream, reveals the controls overlay with mouse
// movement, and captures a screenshot for manual inspection.
//
// Usage:
//
//	go run ./cmd/playercheck
//	go run ./cmd/playercheck -url http://localhost:3000 -timeout 2m
//
// The run exits non-zero only on hard failures (target never reachable,
// missing player surface, screenshot not written). An invisible
// controls overlay is reported as a warning, matching manual smoke-test
// expectations.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/thesyncim/playercheck/pkg/verify"
)

func main() {
	cfg := verify.DefaultConfig()

	flag.StringVar(&cfg.TargetURL, "url", cfg.TargetURL, "Player app URL")
	flag.StringVar(&cfg.VideoURL, "video", cfg.VideoURL, "Video URL to stream")
	flag.StringVar(&cfg.ScreenshotPath, "screenshot", cfg.ScreenshotPath, "Screenshot output path")
	flag.IntVar(&cfg.ReadyAttempts, "attempts", cfg.ReadyAttempts, "Navigation attempts while waiting for the server")
	flag.DurationVar(&cfg.ReadyDelay, "retry-delay", cfg.ReadyDelay, "Delay between navigation attempts")
	flag.DurationVar(&cfg.VideoTimeout, "video-timeout", cfg.VideoTimeout, "Wait budget for the video element")
	flag.StringVar(&cfg.StatsPath, "stats-path", cfg.StatsPath, "Stats endpoint path for the media flow check (empty disables)")
	flag.BoolVar(&cfg.Browser.Headless, "headless", cfg.Browser.Headless, "Run Chrome headless")
	timeout := flag.Duration("timeout", 3*time.Minute, "Whole-run budget (0 disables)")
	flag.Parse()

	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	v, err := verify.New(cfg)
	if err != nil {
		log.Fatalf("Failed to configure verifier: %v", err)
	}

	report, err := v.Run(ctx)
	fmt.Println()
	fmt.Println(report.Summary())
	if err != nil {
		log.Printf("Verification failed: %v", err)
		os.Exit(1)
	}
	if !report.ControlsVisible {
		fmt.Println("Controls NOT visible!")
	} else {
		fmt.Println("Controls are visible!")
	}
}
