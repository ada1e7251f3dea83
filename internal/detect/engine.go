package detect

import (
	"honeylog/internal/feature"
	"honeylog/internal/types"
	"time"
)

// Result maps each flagged source to the attempt count of its first qualifying window.
// Sources that never reach the threshold are absent.
type Result struct {
	Counts   map[string]int
	Findings []types.Finding // flagged sources in first-seen order
}

// Flagged reports whether the source was flagged and with which count
func (r *Result) Flagged(ip string) (int, bool) {
	n, ok := r.Counts[ip]
	return n, ok
}

// Len returns the number of flagged sources
func (r *Result) Len() int {
	return len(r.Counts)
}

// Engine is the sliding-window brute-force detector
type Engine struct {
	threshold int
	window    time.Duration
	scan      func(ts []time.Time, threshold int, window time.Duration) (start, count int)
}

// NewEngine creates a detector flagging sources with at least threshold attempts inside
// some half-open window [t, t+window) anchored at one of their attempts.
// An unknown strategy falls back to the anchored scan.
func NewEngine(threshold int, window time.Duration, strategy string) *Engine {
	e := &Engine{
		threshold: threshold,
		window:    window,
		scan:      anchoredScan,
	}
	if strategy == types.StrategyLinear {
		e.scan = linearScan
	}
	return e
}

// Threshold returns the configured attempt threshold
func (e *Engine) Threshold() int {
	return e.threshold
}

// Window returns the configured window duration
func (e *Engine) Window() time.Duration {
	return e.window
}

// Detect scans every source of the history. The history is sorted first.
func (e *Engine) Detect(h *feature.History) *Result {
	h.Sort()

	res := &Result{Counts: make(map[string]int)}
	for _, ip := range h.Sources() {
		feat := h.GetFeatures(ip)
		if len(feat.Attempts) < e.threshold {
			continue
		}

		start, count := e.scan(feat.Attempts, e.threshold, e.window)
		if start < 0 {
			continue
		}

		res.Counts[ip] = count
		ws := feat.Attempts[start]
		res.Findings = append(res.Findings, types.Finding{
			IP:          ip,
			Attempts:    count,
			WindowStart: ws,
			WindowEnd:   ws.Add(e.window),
		})
	}
	return res
}

// anchoredScan anchors a window at every attempt in order and counts the whole list
// against it. The first window reaching the threshold wins; start is -1 when none does.
// ts must be sorted.
func anchoredScan(ts []time.Time, threshold int, window time.Duration) (int, int) {
	for i, start := range ts {
		end := start.Add(window)
		count := 0
		for _, t := range ts {
			if !t.Before(start) && t.Before(end) {
				count++
			}
		}
		if count >= threshold {
			return i, count
		}
	}
	return -1, 0
}

// linearScan gives the same answer as anchoredScan in one pass. For sorted ts the count of
// window i is hi-lo, with lo the first index not before ts[i] (earlier duplicates of ts[i]
// included) and hi the first index not before ts[i]+window. Both only move forward.
func linearScan(ts []time.Time, threshold int, window time.Duration) (int, int) {
	lo, hi := 0, 0
	for i, start := range ts {
		for ts[lo].Before(start) {
			lo++
		}
		end := start.Add(window)
		if hi < lo {
			hi = lo
		}
		for hi < len(ts) && ts[hi].Before(end) {
			hi++
		}
		if count := hi - lo; count >= threshold {
			return i, count
		}
	}
	return -1, 0
}
