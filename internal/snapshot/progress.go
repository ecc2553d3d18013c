package snapshot

// Stages reported during long-running export and import operations.
const (
	StageReading      = "reading"
	StageValidating   = "validating"
	StageDependencies = "dependencies"
	StageImporting    = "importing"
	StageExporting    = "exporting"
	StageWriting      = "writing"
	StageCompleted    = "completed"
)

// Progress is a point-in-time report of a long-running operation.
type Progress struct {
	Stage      string  `json:"stage"`
	Current    int     `json:"current"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// ProgressFunc receives progress reports. Implementations must be fast;
// they are called inline from the pipeline.
type ProgressFunc func(Progress)

// Report invokes fn with a computed percentage. A nil fn is a no-op.
// Current is clamped to total so the final report lands on exactly 100.
func Report(fn ProgressFunc, stage string, current, total int) {
	if fn == nil {
		return
	}
	if total > 0 && current > total {
		current = total
	}
	pct := 100.0
	if total > 0 {
		pct = float64(current) / float64(total) * 100
	}
	fn(Progress{Stage: stage, Current: current, Total: total, Percentage: pct})
}
