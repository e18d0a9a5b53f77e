package ingest

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

// Progress tracks load progress.
type Progress struct {
	Phase     string // "load", "done" or "error"
	Lines     int64
	Loaded    int64
	Skipped   int64
	BytesRead int64
	StartTime time.Time
	Error     error
}

// ProgressFunc is called periodically with progress updates.
type ProgressFunc func(Progress)

// progressReader wraps an io.Reader to track bytes read.
type progressReader struct {
	r    io.Reader
	read *atomic.Int64
}

func newProgressReader(r io.Reader, counter *atomic.Int64) *progressReader {
	return &progressReader{r: r, read: counter}
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	pr.read.Add(int64(n))
	return n, err
}

// FormatBytes formats bytes as human-readable string.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatDuration formats duration as human-readable string.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

// DefaultProgressFunc prints progress to stdout.
func DefaultProgressFunc(p Progress) {
	switch p.Phase {
	case "load":
		fmt.Printf("\r[Load] %d lines, %d records, %s read",
			p.Lines, p.Loaded, FormatBytes(p.BytesRead))
	case "done":
		fmt.Printf("\r[Done] %d records loaded, %d skipped (%s)\n",
			p.Loaded, p.Skipped, FormatDuration(time.Since(p.StartTime)))
	case "error":
		fmt.Printf("\n[Error] %v\n", p.Error)
	}
}
