package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	ThreadPageRequests atomic.Int64
	ReplyPageRequests  atomic.Int64
	CommentsFetched    atomic.Int64
	RepliesFetched     atomic.Int64
	FetchErrors        atomic.Int64
	HTTPRetries        atomic.Int64
	ExportsWritten     atomic.Int64
	ExportErrors       atomic.Int64
}

var metricKeys = []string{
	"thread_page_requests", "reply_page_requests",
	"comments_fetched", "replies_fetched",
	"fetch_errors", "http_retries",
	"exports_written", "export_errors",
}

// GetMetrics returns a snapshot of all metrics.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"thread_page_requests": metrics.ThreadPageRequests.Load(),
		"reply_page_requests":  metrics.ReplyPageRequests.Load(),
		"comments_fetched":     metrics.CommentsFetched.Load(),
		"replies_fetched":      metrics.RepliesFetched.Load(),
		"fetch_errors":         metrics.FetchErrors.Load(),
		"http_retries":         metrics.HTTPRetries.Load(),
		"exports_written":      metrics.ExportsWritten.Load(),
		"export_errors":        metrics.ExportErrors.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sources/ sub-package.
func IncrThreadPageRequests() { metrics.ThreadPageRequests.Add(1) }
func IncrReplyPageRequests() { metrics.ReplyPageRequests.Add(1) }
func IncrFetchErrors() { metrics.FetchErrors.Add(1) }
func AddCommentsFetched(n int) { metrics.CommentsFetched.Add(int64(n)) }
func AddRepliesFetched(n int) { metrics.RepliesFetched.Add(int64(n)) }

// Incrementors for comments/ sub-package.
func IncrExportsWritten() { metrics.ExportsWritten.Add(1) }
func IncrExportErrors() { metrics.ExportErrors.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, threshold time.Duration, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > threshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
