// Package analysis runs the two offline passes over a cowrie log: the brute-force window scan
// and the password tally. Each pass reads the file on its own; nothing is shared between them.
package analysis

import (
	"errors"
	"honeylog/internal/audit"
	"honeylog/internal/detect"
	"honeylog/internal/feature"
	"honeylog/internal/ingest"
	"honeylog/internal/metrics"
	"honeylog/internal/parser"
	"honeylog/internal/passwords"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	AnalysisBruteForce = "bruteforce"
	AnalysisPasswords  = "passwords"
)

// BruteForceReport is the outcome of one brute-force scan
type BruteForceReport struct {
	RunID    string
	Path     string
	Result   *detect.Result
	Sources  int // distinct sources with at least one attempt
	Attempts int
	Skipped  int
}

// PasswordReport is the outcome of one password tally
type PasswordReport struct {
	RunID    string
	Path     string
	Top      []passwords.Entry
	Total    int
	Distinct int
	Skipped  int
}

// Analyzer wires parser, audit trail, and metrics around the analyses
type Analyzer struct {
	parser  parser.Parser
	audit   *audit.Logger
	metrics *metrics.Recorder
	log     zerolog.Logger
	runID   string
}

// NewAnalyzer creates an analyzer. A nil audit logger skips issues silently,
// a nil recorder gets a private registry.
func NewAnalyzer(auditLog *audit.Logger, rec *metrics.Recorder, log zerolog.Logger) *Analyzer {
	if auditLog == nil {
		auditLog = audit.NewLogger("", nil)
	}
	if rec == nil {
		rec = metrics.New()
	}
	runID := uuid.NewString()
	return &Analyzer{
		parser:  parser.NewCowrieParser(),
		audit:   auditLog,
		metrics: rec,
		log:     log.With().Str("run_id", runID).Logger(),
		runID:   runID,
	}
}

// RunID identifies this analyzer's runs in logs and metrics
func (a *Analyzer) RunID() string {
	return a.runID
}

// BruteForce reads the log at path and flags sources with the engine.
// Only a missing or unreadable file is an error.
func (a *Analyzer) BruteForce(path string, engine *detect.Engine) (*BruteForceReport, error) {
	started := time.Now()
	history := feature.NewHistory()

	skipped, err := a.scan(path, AnalysisBruteForce, true, func(evt *parser.ParsedEvent) {
		history.AddAttempt(evt.IP, evt.User, evt.Timestamp, evt.Type == parser.TypeLoginSuccess)
	})
	if err != nil {
		return nil, err
	}

	result := engine.Detect(history)

	a.metrics.SourcesSeen.Set(float64(history.Len()))
	a.metrics.SourcesFlagged.Set(float64(result.Len()))
	a.metrics.ObserveRun(AnalysisBruteForce, a.runID, time.Since(started))

	for _, f := range result.Findings {
		feat := history.GetFeatures(f.IP)
		a.log.Info().
			Str("ip", f.IP).
			Int("attempts", f.Attempts).
			Time("window_start", f.WindowStart).
			Time("window_end", f.WindowEnd).
			Int("total_attempts", len(feat.Attempts)).
			Int("distinct_users", len(feat.DistinctUsers)).
			Msg("brute force suspect")
	}
	a.log.Info().
		Str("path", path).
		Int("sources", history.Len()).
		Int("attempts", history.Total()).
		Int("flagged", result.Len()).
		Int("skipped", skipped).
		Int("threshold", engine.Threshold()).
		Dur("window", engine.Window()).
		Msg("brute force scan complete")

	return &BruteForceReport{
		RunID:    a.runID,
		Path:     path,
		Result:   result,
		Sources:  history.Len(),
		Attempts: history.Total(),
		Skipped:  skipped,
	}, nil
}

// Passwords reads the log at path and returns the topN most attempted passwords.
// topN <= 0 returns all of them.
func (a *Analyzer) Passwords(path string, topN int) (*PasswordReport, error) {
	started := time.Now()
	counter := passwords.NewCounter()

	skipped, err := a.scan(path, AnalysisPasswords, false, func(evt *parser.ParsedEvent) {
		counter.Add(evt.Password)
	})
	if err != nil {
		return nil, err
	}

	a.metrics.ObserveRun(AnalysisPasswords, a.runID, time.Since(started))
	a.log.Info().
		Str("path", path).
		Int("attempts", counter.Total()).
		Int("distinct", counter.Distinct()).
		Int("skipped", skipped).
		Msg("password tally complete")

	return &PasswordReport{
		RunID:    a.runID,
		Path:     path,
		Top:      counter.Top(topN),
		Total:    counter.Total(),
		Distinct: counter.Distinct(),
		Skipped:  skipped,
	}, nil
}

// scan feeds every login event of the file to fn and returns how many lines were dropped.
// Without needsSource, events lacking a usable src_ip or timestamp are passed on too.
// The file is read to EOF and released before scan returns.
func (a *Analyzer) scan(path, analysis string, needsSource bool, fn func(*parser.ParsedEvent)) (int, error) {
	reader := ingest.NewFileReader(path)
	lines, err := reader.Start()
	if err != nil {
		return 0, err
	}
	defer reader.Stop()

	skipped := 0
	for line := range lines {
		a.metrics.LinesRead.WithLabelValues(analysis).Inc()
		if strings.TrimSpace(line.Content) == "" {
			continue
		}

		evt, err := a.parser.Parse(line.Content)
		if err != nil && (needsSource || !parser.IsFieldError(err)) {
			if a.drop(analysis, line, err) {
				skipped++
			}
			continue
		}

		a.metrics.EventsProcessed.WithLabelValues(analysis, evt.Type).Inc()
		fn(evt)
	}
	if err := reader.Err(); err != nil {
		return skipped, err
	}

	if skipped > 0 && a.audit.Reporting() {
		a.log.Warn().Int("skipped", skipped).Interface("reasons", a.audit.Counts()).Msg("dropped malformed log lines")
	}
	return skipped, nil
}

// drop records a rejected line. Lines that are simply not login events are not issues.
func (a *Analyzer) drop(analysis string, line ingest.LogLine, err error) bool {
	reason := skipReason(err)
	if reason == "" {
		return false
	}

	a.metrics.LinesSkipped.WithLabelValues(analysis, reason).Inc()
	a.log.Debug().Str("source", line.Source).Int("line", line.Number).Str("reason", reason).Err(err).Msg("skipping line")

	issue := audit.Issue{
		Source: line.Source,
		Line:   line.Number,
		Reason: reason,
		Error:  err.Error(),
	}
	if werr := a.audit.LogIssue(issue); werr != nil {
		a.log.Warn().Err(werr).Msg("failed to write to audit trail")
	}
	return true
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, parser.ErrIgnored):
		return ""
	case errors.Is(err, parser.ErrMalformed):
		return "malformed"
	case errors.Is(err, parser.ErrMissingField):
		return "missing_field"
	case errors.Is(err, parser.ErrBadTimestamp):
		return "bad_timestamp"
	default:
		return "unknown"
	}
}
