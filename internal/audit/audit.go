package audit

import (
	"encoding/json"
	"fmt"
	"honeylog/internal/types"
	"io"
	"sync"
)

// Issue describes one log line that was dropped
type Issue struct {
	Source string `json:"source"`
	Line   int    `json:"line"`
	Reason string `json:"reason"` // "malformed", "missing_field", "bad_timestamp"
	Error  string `json:"error"`
}

// Logger keeps the trail of dropped lines for one run.
// With the report policy every issue is also written to the writer as a JSON line.
type Logger struct {
	mu     sync.Mutex
	policy string
	w      io.Writer
	counts map[string]int
	issues []Issue
}

// NewLogger creates a new audit logger
func NewLogger(policy string, w io.Writer) *Logger {
	if policy == "" {
		policy = types.PolicySkip
	}
	return &Logger{
		policy: policy,
		w:      w,
		counts: make(map[string]int),
	}
}

// Reporting tells whether issues are written out
func (l *Logger) Reporting() bool {
	return l.policy == types.PolicyReport && l.w != nil
}

// LogIssue records an issue in a thread-safe manner
func (l *Logger) LogIssue(issue Issue) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.counts[issue.Reason]++
	if l.policy != types.PolicyReport {
		return nil
	}
	l.issues = append(l.issues, issue)
	if l.w == nil {
		return nil
	}

	encoder := json.NewEncoder(l.w)
	if err := encoder.Encode(issue); err != nil {
		return fmt.Errorf("failed to encode issue: %w", err)
	}
	return nil
}

// Issues returns the recorded issues. Only the report policy keeps them.
func (l *Logger) Issues() []Issue {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Issue, len(l.issues))
	copy(out, l.issues)
	return out
}

// Counts returns the number of issues per reason
func (l *Logger) Counts() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]int, len(l.counts))
	for k, v := range l.counts {
		out[k] = v
	}
	return out
}

// Total returns the number of issues across reasons
func (l *Logger) Total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, v := range l.counts {
		n += v
	}
	return n
}
