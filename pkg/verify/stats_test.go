package verify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// statsVerifier builds a Verifier whose media flow check points at the
// given test server, with a short budget so tests stay fast.
func statsVerifier(t *testing.T, target string) *Verifier {
	t.Helper()

	cfg := DefaultConfig()
	cfg.TargetURL = target
	cfg.StatsPath = "/api/stats"
	cfg.MediaFlowTimeout = 2 * time.Second

	v, err := New(cfg)
	require.NoError(t, err)
	v.Logf = t.Logf
	return v
}

func TestPollMediaFlow_PacketsFlowing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/stats", r.URL.Path)
		json.NewEncoder(w).Encode(ingestStats{Sessions: 1, Connected: true, Packets: 120, Bytes: 90000, SSRC: 7})
	}))
	defer srv.Close()

	v := statsVerifier(t, srv.URL)
	flowing, err := v.pollMediaFlow(context.Background())
	require.NoError(t, err)
	assert.True(t, flowing)
}

func TestPollMediaFlow_PacketsArriveLate(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stats := ingestStats{Sessions: 1}
		// First answers report nothing received yet
		if calls.Add(1) > 2 {
			stats.Packets = 5
		}
		json.NewEncoder(w).Encode(stats)
	}))
	defer srv.Close()

	v := statsVerifier(t, srv.URL)
	flowing, err := v.pollMediaFlow(context.Background())
	require.NoError(t, err)
	assert.True(t, flowing, "should keep polling until packets show up")
}

func TestPollMediaFlow_NoPackets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ingestStats{})
	}))
	defer srv.Close()

	v := statsVerifier(t, srv.URL)
	flowing, err := v.pollMediaFlow(context.Background())
	assert.NoError(t, err, "an answering endpoint with no media is a soft negative")
	assert.False(t, flowing)
}

func TestPollMediaFlow_EndpointMissing(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	v := statsVerifier(t, srv.URL)
	flowing, err := v.pollMediaFlow(context.Background())
	assert.False(t, flowing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "never answered")
}

func TestPollMediaFlow_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ingestStats{})
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v := statsVerifier(t, srv.URL)
	_, err := v.pollMediaFlow(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSleepCtx(t *testing.T) {
	// Zero duration returns immediately with the ctx state
	assert.NoError(t, sleepCtx(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepCtx(ctx, time.Minute), context.Canceled)

	start := time.Now()
	assert.NoError(t, sleepCtx(context.Background(), 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}
