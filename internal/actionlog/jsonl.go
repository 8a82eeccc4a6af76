package actionlog

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// transcriptDir is the directory inside the state directory holding one
// JSONL transcript per game.
const transcriptDir = "transcripts"

// Transcript is a Sink that appends each entry as one JSON line to
// {dir}/transcripts/{gameID}.jsonl.
type Transcript struct {
	path string
	mu   sync.Mutex
}

// NewTranscript returns a transcript writer for gameID under dir. The file
// is created lazily on first write.
func NewTranscript(dir, gameID string) *Transcript {
	return &Transcript{path: TranscriptPath(dir, gameID)}
}

// TranscriptPath returns where the transcript of gameID lives under dir.
func TranscriptPath(dir, gameID string) string {
	return filepath.Join(dir, transcriptDir, gameID+".jsonl")
}

// Path returns the transcript file path.
func (t *Transcript) Path() string { return t.path }

// Write appends e to the transcript.
func (t *Transcript) Write(_ context.Context, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("transcript: marshal entry: %w", err)
	}
	data = append(data, '\n')

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return fmt.Errorf("transcript: create directory: %w", err)
	}
	f, err := os.OpenFile(t.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("transcript: open: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("transcript: write: %w", err)
	}
	return f.Close()
}

// ReadTranscript loads every entry from a transcript file in order.
// Malformed lines are skipped.
func ReadTranscript(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("transcript: open: %w", err)
	}
	defer func() { _ = f.Close() }()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("transcript: scan: %w", err)
	}
	return entries, nil
}
