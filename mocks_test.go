package auth_test

import (
	"fmt"
	"strings"
	"sync"
)

// capturingLogger records log lines so tests can assert on degrade and
// rejection paths without inspecting process output.
type capturingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *capturingLogger) record(level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	line := level + " " + format
	if len(args) > 0 {
		line += " " + fmt.Sprint(args...)
	}
	l.lines = append(l.lines, line)
}

func (l *capturingLogger) Debug(format string, args ...any) { l.record("DBG", format, args...) }
func (l *capturingLogger) Info(format string, args ...any)  { l.record("INF", format, args...) }
func (l *capturingLogger) Error(format string, args ...any) { l.record("ERR", format, args...) }

func (l *capturingLogger) contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
