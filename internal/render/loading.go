package render

import "time"

// LoadingStep is one stage of the waiting indicator
type LoadingStep struct {
	Text     string
	Duration time.Duration
}

// LoadingSteps is shown while a chat turn is in flight
var LoadingSteps = []LoadingStep{
	{"Connecting to trading bot...", 1000 * time.Millisecond},
	{"Fetching market data...", 2000 * time.Millisecond},
	{"Analyzing news data...", 2500 * time.Millisecond},
	{"Fetching past user trends...", 3000 * time.Millisecond},
	{"Processing request...", 4000 * time.Millisecond},
	{"Generating response...", 5000 * time.Millisecond},
}

const (
	// ProgressTick is how often progress advances by one percent
	ProgressTick = 50 * time.Millisecond
	maxProgress  = 100
	progressSpan = 6000 * time.Millisecond
)

// StepAt maps progress (0-100) onto LoadingSteps. Progress covers a fixed
// span against the cumulative step durations, so later steps may never show.
func StepAt(progress int) int {
	progress = clampProgress(progress)
	elapsed := time.Duration(progress) * progressSpan / maxProgress

	var acc time.Duration
	step := 0
	for i, s := range LoadingSteps {
		acc += s.Duration
		step = i
		if elapsed < acc {
			break
		}
	}
	return step
}

// NextProgress advances progress by one tick, capped at 100
func NextProgress(progress int) int {
	return clampProgress(progress + 1)
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > maxProgress {
		return maxProgress
	}
	return p
}
