package logctx

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestHandlerAddsContextGroups(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(Handler{Handler: slog.NewTextHandler(&buf, nil)})

	ctx := WithPluginData(context.Background(), &PluginData{InstanceID: "abc"})
	ctx = WithRPCMessage(ctx, &RPCMessage{Method: "hello", ID: "7", Type: "request"})
	l.InfoContext(ctx, "dispatching")

	out := buf.String()
	for _, want := range []string{"plugin.instance=abc", "rpc.method=hello", "rpc.id=7", "rpc.type=request"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestHandlerWithAttrsKeepsDecoration(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(Handler{Handler: slog.NewTextHandler(&buf, nil)}).With("k", "v")

	ctx := WithRPCMessage(context.Background(), &RPCMessage{Method: "m"})
	l.InfoContext(ctx, "x")

	if !strings.Contains(buf.String(), "rpc.method=m") {
		t.Fatalf("decoration lost after With: %q", buf.String())
	}
}
