package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// cowrieRecord mirrors the subset of a cowrie JSON log line we read.
// Fields stay raw so a value of the wrong type only costs that field, not the line.
type cowrieRecord struct {
	EventID   json.RawMessage `json:"eventid"`
	SrcIP     json.RawMessage `json:"src_ip"`
	Timestamp json.RawMessage `json:"timestamp"`
	Username  json.RawMessage `json:"username"`
	Password  json.RawMessage `json:"password"`
	Session   json.RawMessage `json:"session"`
}

// Layouts accepted after the trailing "Z" is stripped, tried in order
var timestampLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// CowrieParser extracts login attempts from cowrie JSON logs
type CowrieParser struct{}

// NewCowrieParser creates a new cowrie log parser
func NewCowrieParser() *CowrieParser {
	return &CowrieParser{}
}

// Parse implements the Parser interface.
// A login event with a missing or unusable src_ip or timestamp is still returned,
// together with ErrMissingField or ErrBadTimestamp; its credentials are valid.
func (p *CowrieParser) Parse(line string) (*ParsedEvent, error) {
	var rec cowrieRecord
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	eventID, _ := stringValue(rec.EventID)
	var typ string
	switch eventID {
	case EventLoginFailed:
		typ = TypeLoginFailed
	case EventLoginSuccess:
		typ = TypeLoginSuccess
	default:
		return nil, ErrIgnored
	}

	evt := &ParsedEvent{
		Source:   "cowrie",
		EventID:  eventID,
		Type:     typ,
		User:     looseString(rec.Username),
		Password: looseString(rec.Password),
		Session:  looseString(rec.Session),
		Raw:      line,
	}

	ip, ok := stringValue(rec.SrcIP)
	if !ok {
		if isNull(rec.SrcIP) {
			return evt, fmt.Errorf("%w: src_ip", ErrMissingField)
		}
		return evt, fmt.Errorf("%w: src_ip is %s, not a string", ErrMissingField, rec.SrcIP)
	}
	evt.IP = ip

	raw, ok := stringValue(rec.Timestamp)
	if !ok {
		if isNull(rec.Timestamp) {
			return evt, fmt.Errorf("%w: timestamp", ErrMissingField)
		}
		return evt, fmt.Errorf("%w: %s", ErrBadTimestamp, rec.Timestamp)
	}
	ts, err := ParseTimestamp(raw)
	if err != nil {
		return evt, err
	}
	evt.Timestamp = ts

	return evt, nil
}

// IsFieldError reports whether err only means the event lacks a usable src_ip or timestamp
func IsFieldError(err error) bool {
	return errors.Is(err, ErrMissingField) || errors.Is(err, ErrBadTimestamp)
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// stringValue unquotes raw when it holds a JSON string
func stringValue(raw json.RawMessage) (string, bool) {
	var s string
	if isNull(raw) || json.Unmarshal(raw, &s) != nil {
		return "", false
	}
	return s, true
}

// looseString reads a field that may hold any JSON value: strings as they are,
// null or absent as "", anything else as its JSON text.
func looseString(raw json.RawMessage) string {
	if s, ok := stringValue(raw); ok {
		return s
	}
	if isNull(raw) {
		return ""
	}
	return string(raw)
}

// ParseTimestamp reads an ISO-8601 timestamp. Trailing "Z" designators are stripped first;
// a timestamp without offset is taken as UTC. The result is always in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(s), "Z")
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, s)
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, s)
}
