package plugin

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ggoodman/clnplugin-go/internal/jsonrpc"
	"github.com/ggoodman/clnplugin-go/internal/wire"
)

// Level is the severity of a log notification.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// LogEmitter sends log lines to the host.
type LogEmitter interface {
	Log(level Level, message string) error
}

type logParams struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Notify writes a one-way notification to the host. The frame is flushed
// before Notify returns; no acknowledgement is read.
func (p *Plugin) Notify(method string, params any) error {
	return wire.WriteJSON(context.Background(), p.out, jsonrpc.NewNotification(method, params))
}

// Log sends message to the host as a "log" notification.
func (p *Plugin) Log(level Level, message string) error {
	return p.Notify("log", logParams{Level: level, Message: message})
}

// Logf is Log with fmt.Sprintf formatting.
func (p *Plugin) Logf(level Level, format string, args ...any) error {
	return p.Log(level, fmt.Sprintf(format, args...))
}

// LevelFromSlog maps a slog level to the nearest host level.
func LevelFromSlog(l slog.Level) Level {
	switch {
	case l < slog.LevelInfo:
		return LevelDebug
	case l < slog.LevelWarn:
		return LevelInfo
	case l < slog.LevelError:
		return LevelWarn
	default:
		return LevelError
	}
}

// LogHandler is a slog.Handler that emits each record as a log notification.
// The message carries the record text and attributes in logfmt form; time and
// level are dropped since the host stamps and classifies lines itself.
type LogHandler struct {
	emitter LogEmitter
	level   slog.Leveler
	inner   slog.Handler
	state   *logHandlerState
}

type logHandlerState struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// NewLogHandler returns a handler emitting through e. A nil opts logs at info
// and above.
func NewLogHandler(e LogEmitter, opts *slog.HandlerOptions) *LogHandler {
	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}
	st := &logHandlerState{}
	inner := slog.NewTextHandler(&st.buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && (a.Key == slog.TimeKey || a.Key == slog.LevelKey) {
				return slog.Attr{}
			}
			return a
		},
	})
	return &LogHandler{emitter: e, level: level, inner: inner, state: st}
}

func (h *LogHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *LogHandler) Handle(ctx context.Context, r slog.Record) error {
	h.state.mu.Lock()
	h.state.buf.Reset()
	err := h.inner.Handle(ctx, r)
	line := strings.TrimSuffix(h.state.buf.String(), "\n")
	h.state.mu.Unlock()
	if err != nil {
		return err
	}
	return h.emitter.Log(LevelFromSlog(r.Level), line)
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogHandler{emitter: h.emitter, level: h.level, inner: h.inner.WithAttrs(attrs), state: h.state}
}

func (h *LogHandler) WithGroup(name string) slog.Handler {
	return &LogHandler{emitter: h.emitter, level: h.level, inner: h.inner.WithGroup(name), state: h.state}
}
