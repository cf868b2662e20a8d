package logger

import (
	"fmt"
	"sync"
)

// RecordingLogger keeps every formatted message in memory. Tests inject it wherever a Logger is accepted.
type RecordingLogger struct {
	mu      sync.Mutex
	Entries []Entry
}

// Entry is a single recorded log line.
type Entry struct {
	Level   string
	Message string
}

func (r *RecordingLogger) record(level, msg string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, Entry{Level: level, Message: fmt.Sprintf(msg, args...)})
}

func (r *RecordingLogger) Debugf(msg string, args ...any) { r.record("debug", msg, args...) }
func (r *RecordingLogger) Infof(msg string, args ...any)  { r.record("info", msg, args...) }
func (r *RecordingLogger) Warnf(msg string, args ...any)  { r.record("warn", msg, args...) }
func (r *RecordingLogger) Errorf(msg string, args ...any) { r.record("error", msg, args...) }
func (r *RecordingLogger) Fatalf(msg string, args ...any) { r.record("fatal", msg, args...) }

// Messages returns the recorded messages of the given level.
func (r *RecordingLogger) Messages(level string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.Entries {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}
