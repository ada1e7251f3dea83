package types

import "time"

// Scan strategies for the brute-force window scan
const (
	StrategyAnchored = "anchored" // every anchor counted against the whole list
	StrategyLinear   = "linear"   // two-pointer count, same results
)

// Malformed line policies
const (
	PolicySkip   = "skip"
	PolicyReport = "report"
)

// Finding describes the first window that pushed a source over the threshold
type Finding struct {
	IP          string    `json:"ip"`
	Attempts    int       `json:"attempts"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"` // exclusive
}

// BruteForceRule holds the window scan parameters
type BruteForceRule struct {
	Threshold int    `yaml:"threshold"` // e.g. 10
	Window    string `yaml:"window"`    // e.g. "5m"
	Strategy  string `yaml:"strategy"`  // "anchored" or "linear"

	WindowDuration time.Duration `yaml:"-"`
}

// Config represents the application configuration
type Config struct {
	Input struct {
		LogPath string `yaml:"log_path"` // cowrie JSON log
	} `yaml:"input"`

	Detection struct {
		BruteForce BruteForceRule `yaml:"brute_force"`
	} `yaml:"detection"`

	Passwords struct {
		TopN int `yaml:"top_n"`
	} `yaml:"passwords"`

	Parsing struct {
		MalformedLines string `yaml:"malformed_lines"` // skip, report
	} `yaml:"parsing"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // console, json
	} `yaml:"logging"`

	Metrics struct {
		PushgatewayURL string `yaml:"pushgateway_url"`
		Job            string `yaml:"job"`
	} `yaml:"metrics"`
}
