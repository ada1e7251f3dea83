package ingest

import (
	"fmt"

	"github.com/nxadm/tail"
)

// LogLine represents a raw line from a log source
type LogLine struct {
	Source  string
	Number  int // 1-based line number within the source
	Content string
}

// Ingester defines the interface for log sources
type Ingester interface {
	Start() (<-chan LogLine, error)
	Stop() error
}

// FileReader implements Ingester for a single file read once, start to EOF.
// The channel closes at EOF; Err reports a read failure once it has.
type FileReader struct {
	path string
	t    *tail.Tail
	err  error
}

// NewFileReader creates a new one-shot reader for a path
func NewFileReader(path string) *FileReader {
	return &FileReader{
		path: path,
	}
}

// Start opens the file and returns a channel of its lines.
// A missing or unreadable file fails here, before any line is produced.
func (f *FileReader) Start() (<-chan LogLine, error) {
	config := tail.Config{
		Follow:    false,
		ReOpen:    false,
		MustExist: true,
		Poll:      true, // no inotify watch for a one-shot read
		Logger:    tail.DiscardingLogger,
	}

	t, err := tail.TailFile(f.path, config)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", f.path, err)
	}
	f.t = t

	out := make(chan LogLine)

	go func() {
		defer close(out)
		n := 0
		for line := range t.Lines {
			if line.Err != nil {
				f.err = line.Err
				continue
			}
			n++
			out <- LogLine{
				Source:  f.path,
				Number:  n,
				Content: line.Text,
			}
		}
		if err := t.Wait(); err != nil && f.err == nil {
			f.err = err
		}
	}()

	return out, nil
}

// Err returns the first read error. Only meaningful after the channel is drained.
func (f *FileReader) Err() error {
	if f.err != nil {
		return fmt.Errorf("failed to read log file %s: %w", f.path, f.err)
	}
	return nil
}

// Stop releases the file
func (f *FileReader) Stop() error {
	if f.t == nil {
		return nil
	}
	return f.t.Stop()
}
