package plugin

import (
	"bytes"
	"io"
	"strings"
	"sync"
)

// Stream is an io.Writer that turns everything written to it into log
// notifications, one per complete line. A trailing partial line is held back
// until its newline arrives.
type Stream struct {
	emitter LogEmitter
	level   Level

	mu  sync.Mutex
	buf strings.Builder
}

// NewStream returns a Stream emitting at level through e.
func NewStream(e LogEmitter, level Level) *Stream {
	return &Stream{emitter: e, level: level}
}

// Write buffers b and flushes if b completes at least one line.
func (s *Stream) Write(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf.Write(b)
	if bytes.IndexByte(b, '\n') >= 0 {
		if err := s.flushLocked(); err != nil {
			return len(b), err
		}
	}
	return len(b), nil
}

// Flush emits every complete buffered line and keeps the remainder.
func (s *Stream) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

// Buffered returns the unflushed partial line.
func (s *Stream) Buffered() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func (s *Stream) flushLocked() error {
	lines := strings.Split(s.buf.String(), "\n")
	if len(lines) < 2 {
		return nil
	}

	s.buf.Reset()
	s.buf.WriteString(lines[len(lines)-1])

	var firstErr error
	for _, line := range lines[:len(lines)-1] {
		if err := s.emitter.Log(s.level, line); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Stdout returns the active sink for incidental standard output.
func (p *Plugin) Stdout() io.Writer {
	p.sinkMu.RLock()
	defer p.sinkMu.RUnlock()
	return p.stdout
}

// Stderr returns the active sink for incidental error output.
func (p *Plugin) Stderr() io.Writer {
	p.sinkMu.RLock()
	defer p.sinkMu.RUnlock()
	return p.stderr
}

// Redirect swaps the active stdout and stderr sinks and returns a function
// restoring the previous ones. A nil argument leaves that sink unchanged.
// The restore function is safe to call more than once.
func (p *Plugin) Redirect(stdout, stderr io.Writer) (restore func()) {
	p.sinkMu.Lock()
	prevOut, prevErr := p.stdout, p.stderr
	if stdout != nil {
		p.stdout = stdout
	}
	if stderr != nil {
		p.stderr = stderr
	}
	p.sinkMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.sinkMu.Lock()
			p.stdout, p.stderr = prevOut, prevErr
			p.sinkMu.Unlock()
		})
	}
}

// RedirectToLog routes the stdout sink to info log lines and the stderr sink
// to warn log lines until the returned function is called.
func (p *Plugin) RedirectToLog() (restore func()) {
	return p.Redirect(NewStream(p, LevelInfo), NewStream(p, LevelWarn))
}
