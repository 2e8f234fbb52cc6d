package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// NopLogger returns a logger that discards all output.
// Use this in tests to avoid log noise.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// LogBuffer collects JSON log lines for assertions
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write implements io.Writer
func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// Messages returns the msg field of every record logged so far
func (b *LogBuffer) Messages() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var msgs []string
	for _, line := range strings.Split(strings.TrimSpace(b.buf.String()), "\n") {
		var record struct {
			Msg string `json:"msg"`
		}
		if json.Unmarshal([]byte(line), &record) == nil && record.Msg != "" {
			msgs = append(msgs, record.Msg)
		}
	}
	return msgs
}

// CaptureLogger returns a debug-level logger writing to a LogBuffer
func CaptureLogger() (*slog.Logger, *LogBuffer) {
	buf := &LogBuffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}
