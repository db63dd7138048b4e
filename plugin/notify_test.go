package plugin

import (
	"log/slog"
	"strings"
	"testing"
)

func TestNotifyWireFormat(t *testing.T) {
	p, out := newTestPlugin(t)

	if err := p.Notify("custom", map[string]int{"n": 1}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	want := `{"jsonrpc":"2.0","method":"custom","params":{"n":1}}` + "\n\n"
	if out.String() != want {
		t.Fatalf("got %q want %q", out.String(), want)
	}
}

func TestLogWireFormat(t *testing.T) {
	p, out := newTestPlugin(t)

	if err := p.Logf(LevelWarn, "disk %d%% full", 90); err != nil {
		t.Fatalf("log: %v", err)
	}
	want := `{"jsonrpc":"2.0","method":"log","params":{"level":"warn","message":"disk 90% full"}}` + "\n\n"
	if out.String() != want {
		t.Fatalf("got %q want %q", out.String(), want)
	}
}

func TestLevelFromSlog(t *testing.T) {
	cases := map[slog.Level]Level{
		slog.LevelDebug:     LevelDebug,
		slog.LevelInfo:      LevelInfo,
		slog.LevelInfo + 1:  LevelInfo,
		slog.LevelWarn:      LevelWarn,
		slog.LevelError:     LevelError,
		slog.LevelError + 4: LevelError,
	}
	for in, want := range cases {
		if got := LevelFromSlog(in); got != want {
			t.Fatalf("LevelFromSlog(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestLogHandler(t *testing.T) {
	rec := &recordingEmitter{}
	l := slog.New(NewLogHandler(rec, &slog.HandlerOptions{Level: slog.LevelInfo}))

	l.Debug("hidden")
	l.With("peer", "abc").WithGroup("g").Warn("slow peer", "ms", 1200)

	if len(rec.lines) != 1 {
		t.Fatalf("expected 1 line, got %+v", rec.lines)
	}
	got := rec.lines[0]
	if got.level != LevelWarn {
		t.Fatalf("expected warn, got %q", got.level)
	}
	for _, want := range []string{`msg="slow peer"`, "peer=abc", "g.ms=1200"} {
		if !strings.Contains(got.message, want) {
			t.Fatalf("expected %q in %q", want, got.message)
		}
	}
	if strings.Contains(got.message, "time=") || strings.Contains(got.message, "level=") {
		t.Fatalf("time and level must be dropped: %q", got.message)
	}
}

func TestWithHostLogging(t *testing.T) {
	var out strings.Builder
	p := New(WithIO(strings.NewReader(""), &out), WithConfig(Config{}), WithAutopatch(false), WithHostLogging(slog.LevelInfo))

	p.Logger().Info("hello from slog")
	if !strings.Contains(out.String(), `"method":"log"`) || !strings.Contains(out.String(), "hello from slog") {
		t.Fatalf("expected a log notification, got %q", out.String())
	}
	if !strings.HasSuffix(out.String(), "\n\n") {
		t.Fatalf("notification not framed: %q", out.String())
	}
}
