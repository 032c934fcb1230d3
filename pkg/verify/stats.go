package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ingestStats mirrors the JSON shape of the demo server's /api/stats
// endpoint. Only the fields the flow check needs are decoded.
type ingestStats struct {
	Sessions  int    `json:"sessions"`
	Connected bool   `json:"connected"`
	Packets   uint64 `json:"packets"`
	Bytes     uint64 `json:"bytes"`
	SSRC      uint32 `json:"ssrc"`
}

// pollMediaFlow polls the target's stats endpoint until it reports at
// least one received RTP packet or the flow timeout elapses. A false
// result with nil error means the endpoint answered but no media
// arrived in time.
func (v *Verifier) pollMediaFlow(ctx context.Context) (bool, error) {
	statsURL := strings.TrimRight(v.cfg.TargetURL, "/") + v.cfg.StatsPath
	httpc := &http.Client{Timeout: 5 * time.Second}

	deadline := time.Now().Add(v.cfg.MediaFlowTimeout)
	pollInterval := 500 * time.Millisecond

	var lastErr error
	answered := false
	for time.Now().Before(deadline) {
		stats, err := fetchStats(ctx, httpc, statsURL)
		if err != nil {
			lastErr = err
		} else {
			answered = true
			if stats.Packets > 0 {
				v.logf("Ingest stats: %d packets, %d bytes (ssrc %d)", stats.Packets, stats.Bytes, stats.SSRC)
				return true, nil
			}
		}
		if err := sleepCtx(ctx, pollInterval); err != nil {
			return false, err
		}
	}
	if !answered {
		return false, fmt.Errorf("stats endpoint %s never answered: %w", statsURL, lastErr)
	}
	return false, nil
}

func fetchStats(ctx context.Context, httpc *http.Client, url string) (*ingestStats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build stats request: %w", err)
	}
	resp, err := httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stats request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stats endpoint returned %d", resp.StatusCode)
	}
	var stats ingestStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats: %w", err)
	}
	return &stats, nil
}
