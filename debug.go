package kaleido

import (
	"fmt"
	"os"
	"time"
)

// renderStats holds per-frame compositing metrics.
// Only populated when Stage.debug is true.
type renderStats struct {
	scenes     int
	blended    int
	renderTime time.Duration
}

// debugLog prints compositing stats to stderr.
func (st *Stage) debugLog(stats renderStats) {
	if !st.debug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr,
		"[kaleido] scenes: %d | blended: %d | render: %v\n",
		stats.scenes, stats.blended, stats.renderTime)
}
