package tui

import (
	"bytes"
	"strings"
	"sync"
	"unicode/utf8"
)

const (
	// maxLogLine caps a forwarded line, in runes
	maxLogLine = 500
	// maxBacklog bounds lines waiting for the program; the oldest go first
	maxBacklog = 100
)

// LogMsg carries one log line into the log pane
type LogMsg struct {
	Line string
}

// LogWriter is the io.Writer behind the review logger. It cuts slog output
// into lines and forwards them as LogMsg from its own goroutine, so a
// logger call never waits on the program's event loop.
type LogWriter struct {
	out Sender

	mu      sync.Mutex
	partial []byte
	backlog []string
	closed  bool

	wake chan struct{}
	done chan struct{}
}

// NewLogWriter starts a writer forwarding to out
func NewLogWriter(out Sender) *LogWriter {
	w := &LogWriter{
		out:  out,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go w.forward()
	return w
}

// Write queues every complete line of p. Writes after Close are discarded.
func (w *LogWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return len(p), nil
	}

	w.partial = append(w.partial, p...)
	for {
		i := bytes.IndexByte(w.partial, '\n')
		if i < 0 {
			break
		}
		w.queue(string(w.partial[:i]))
		w.partial = w.partial[i+1:]
	}
	return len(p), nil
}

// Close queues the unterminated tail, then waits for the backlog to drain.
func (w *LogWriter) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return nil
	}
	if len(w.partial) > 0 {
		w.queue(string(w.partial))
		w.partial = nil
	}
	w.closed = true
	w.mu.Unlock()

	w.signal()
	<-w.done
	return nil
}

// queue must be called with mu held
func (w *LogWriter) queue(line string) {
	line = strings.TrimRight(line, "\r")
	if line == "" {
		return
	}
	if utf8.RuneCountInString(line) > maxLogLine {
		line = string([]rune(line)[:maxLogLine]) + "..."
	}
	if len(w.backlog) == maxBacklog {
		w.backlog = w.backlog[1:]
	}
	w.backlog = append(w.backlog, line)
	w.signal()
}

func (w *LogWriter) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *LogWriter) forward() {
	defer close(w.done)
	for range w.wake {
		w.mu.Lock()
		lines := w.backlog
		w.backlog = nil
		closed := w.closed
		w.mu.Unlock()

		for _, line := range lines {
			if w.out != nil {
				w.out.Send(LogMsg{Line: line})
			}
		}
		if closed {
			return
		}
	}
}
