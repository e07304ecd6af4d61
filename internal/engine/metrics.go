package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the service.
var metrics struct {
	TranscriptRequests atomic.Int64
	TranscriptErrors   atomic.Int64
	FetchAttempts      atomic.Int64
	FetchFailures      atomic.Int64
	FallbackHits       atomic.Int64
	YouTubeRequests    atomic.Int64
	SupadataRequests   atomic.Int64
	MCPCalls           atomic.Int64
}

var metricKeys = []string{
	"transcript_requests", "transcript_errors",
	"fetch_attempts", "fetch_failures", "fallback_hits",
	"youtube_requests", "supadata_requests",
	"mcp_calls",
}

// GetMetrics returns a snapshot of all counters.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"transcript_requests": metrics.TranscriptRequests.Load(),
		"transcript_errors":   metrics.TranscriptErrors.Load(),
		"fetch_attempts":      metrics.FetchAttempts.Load(),
		"fetch_failures":      metrics.FetchFailures.Load(),
		"fallback_hits":       metrics.FallbackHits.Load(),
		"youtube_requests":    metrics.YouTubeRequests.Load(),
		"supadata_requests":   metrics.SupadataRequests.Load(),
		"mcp_calls":           metrics.MCPCalls.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for the /metrics endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

func IncrTranscriptRequests() { metrics.TranscriptRequests.Add(1) }
func IncrTranscriptErrors()   { metrics.TranscriptErrors.Add(1) }
func IncrFetchAttempts()      { metrics.FetchAttempts.Add(1) }
func IncrFetchFailures()      { metrics.FetchFailures.Add(1) }
func IncrFallbackHits()       { metrics.FallbackHits.Add(1) }
func IncrYouTubeRequests()    { metrics.YouTubeRequests.Add(1) }
func IncrSupadataRequests()   { metrics.SupadataRequests.Add(1) }
func IncrMCPCalls()           { metrics.MCPCalls.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, threshold time.Duration, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	if elapsed := time.Since(start); elapsed > threshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
