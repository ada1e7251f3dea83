package parser

import (
	"errors"
	"time"
)

// Cowrie event ids that count as login attempts
const (
	EventLoginFailed  = "cowrie.login.failed"
	EventLoginSuccess = "cowrie.login.success"
)

// Normalized attempt types
const (
	TypeLoginFailed  = "login_failed"
	TypeLoginSuccess = "login_success"
)

var (
	// ErrIgnored marks a well-formed line that is not a login attempt
	ErrIgnored = errors.New("not a login event")
	// ErrMalformed marks a line that is not a JSON object
	ErrMalformed = errors.New("malformed json")
	// ErrMissingField marks a login event without a usable src_ip or timestamp
	ErrMissingField = errors.New("missing field")
	// ErrBadTimestamp marks a timestamp that is not ISO-8601
	ErrBadTimestamp = errors.New("unparseable timestamp")
)

// ParsedEvent represents a normalized login attempt from a log line
type ParsedEvent struct {
	Timestamp time.Time
	Source    string // "cowrie"
	EventID   string // "cowrie.login.failed", "cowrie.login.success"
	Type      string // "login_failed", "login_success"
	IP        string
	User      string
	Password  string
	Session   string
	Raw       string
}

// Parser defines the interface for log parsers.
// A nil event comes with a non-nil error explaining why the line was dropped.
// An event can also come with a field error (see IsFieldError) when it has no usable source or time.
type Parser interface {
	Parse(line string) (*ParsedEvent, error)
}
