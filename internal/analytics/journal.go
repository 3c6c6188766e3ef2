package analytics

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Journal appends events to a JSON-lines file.
type Journal struct {
	path   string
	logger *slog.Logger

	mu   sync.Mutex
	file *os.File
}

// OpenJournal opens path for appending, creating it and its directory.
func OpenJournal(path string, logger *slog.Logger) (*Journal, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return &Journal{path: path, file: file, logger: logger.With("component", "analytics")}, nil
}

// Path returns the journal file location.
func (j *Journal) Path() string { return j.path }

// Record appends e. Write failures are logged; analytics never fail a caller.
func (j *Journal) Record(e Event) {
	line, err := json.Marshal(e)
	if err != nil {
		j.logger.Warn("encode analytics event", "name", e.Name, "error", err)
		return
	}
	line = append(line, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return
	}
	if _, err := j.file.Write(line); err != nil {
		j.logger.Warn("write analytics event", "name", e.Name, "error", err)
	}
}

// Close closes the journal file.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	return err
}

// Recent returns at most n events from the end of the journal at path,
// oldest first. Lines that do not decode are skipped.
func Recent(path string, n int) ([]Event, error) {
	if n <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer func() { _ = file.Close() }()

	ring := make([]Event, n)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count, idx := 0, 0
	for scanner.Scan() {
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		ring[idx] = e
		idx = (idx + 1) % n
		if count < n {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}

	events := make([]Event, count)
	if count == n {
		for i := 0; i < count; i++ {
			events[i] = ring[(idx+i)%n]
		}
	} else {
		copy(events, ring[:count])
	}
	return events, nil
}
