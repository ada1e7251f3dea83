package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func cowrieLog(t *testing.T) string {
	t.Helper()
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var b strings.Builder
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&b, `{"eventid":"cowrie.login.failed","src_ip":"203.0.113.7","password":"hunter2","timestamp":"%s"}`+"\n",
			start.Add(time.Duration(i)*10*time.Second).Format(time.RFC3339))
	}
	fmt.Fprintf(&b, `{"eventid":"cowrie.login.success","src_ip":"198.51.100.1","password":"toor","timestamp":"%s"}`+"\n",
		start.Format(time.RFC3339))
	b.WriteString("{not json\n")
	return writeFile(t, "cowrie.json", b.String())
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestBruteForceCommand_Flagged(t *testing.T) {
	path := cowrieLog(t)

	out, _, err := run(t, "bruteforce", path)
	require.NoError(t, err)

	assert.Equal(t, "analysing log file: "+path+"\nIP: 203.0.113.7, ATTEMPTS: 10\n", out)
}

func TestBruteForceCommand_NothingDetected(t *testing.T) {
	path := cowrieLog(t)
	cfg := writeFile(t, "config.yml", "detection:\n  brute_force:\n    threshold: 11\n    strategy: linear\n")

	out, _, err := run(t, "bruteforce", path, "--config", cfg)
	require.NoError(t, err)

	assert.Equal(t, "analysing log file: "+path+"\n\nno brute force attempts detected.\n", out)
}

func TestBruteForceCommand_EmptyLog(t *testing.T) {
	path := writeFile(t, "cowrie.json", "")

	out, _, err := run(t, "bruteforce", path)
	require.NoError(t, err)
	assert.Contains(t, out, "no brute force attempts detected.")
}

func TestBruteForceCommand_ReportPolicy(t *testing.T) {
	path := cowrieLog(t)
	cfg := writeFile(t, "config.yml", "parsing:\n  malformed_lines: report\nlogging:\n  format: json\n")

	_, stderr, err := run(t, "bruteforce", path, "--config", cfg)
	require.NoError(t, err)

	assert.Contains(t, stderr, `"reason":"malformed"`)
	assert.Contains(t, stderr, `"line":12`)
}

func TestBruteForceCommand_MissingLog(t *testing.T) {
	out, _, err := run(t, "bruteforce", filepath.Join(t.TempDir(), "cowrie.json"))

	require.Error(t, err)
	assert.Empty(t, out, "nothing is printed when the log can not be read")
}

func TestBruteForceCommand_BadConfig(t *testing.T) {
	cfg := writeFile(t, "config.yml", "detection:\n  brute_force:\n    window: forever\n")

	_, _, err := run(t, "bruteforce", cowrieLog(t), "--config", cfg)
	assert.Error(t, err)
}

func TestPasswordsCommand(t *testing.T) {
	path := cowrieLog(t)

	out, _, err := run(t, "passwords", path)
	require.NoError(t, err)

	assert.Equal(t, "hunter2: 10\ntoor: 1\n", out)
}

func TestPasswordsCommand_TopFromConfig(t *testing.T) {
	path := cowrieLog(t)
	cfg := writeFile(t, "config.yml", "input:\n  log_path: "+path+"\npasswords:\n  top_n: 1\n")

	out, _, err := run(t, "passwords", "--config", cfg)
	require.NoError(t, err)

	assert.Equal(t, "hunter2: 10\n", out)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "evilpass", sanitize("evil\x00pass"))
	assert.Equal(t, "a[31mb", sanitize("a\x1b[31mb"))
	assert.Equal(t, "tab\there", sanitize("tab\there\n"))
	assert.Equal(t, "", sanitize("\x07\x7f"))
}
