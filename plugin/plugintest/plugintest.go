// Package plugintest drives a plugin.Plugin over in-memory pipes, speaking
// the same framed JSON-RPC the host daemon does.
package plugintest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/ggoodman/clnplugin-go/internal/framing"
	"github.com/ggoodman/clnplugin-go/internal/jsonrpc"
	"github.com/ggoodman/clnplugin-go/plugin"
)

// DefaultTimeout bounds every wait for output.
const DefaultTimeout = 2 * time.Second

// ErrorObject is the error payload of a response.
type ErrorObject struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Message is any frame written by the plugin.
type Message struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
	Raw     string          `json:"-"`
}

// IsNotification reports whether the frame is a notification.
func (m *Message) IsNotification() bool { return m.Method != "" }

// LogParams is the params object of a log notification.
type LogParams struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Log decodes the params of a log notification.
func (m *Message) Log() (LogParams, bool) {
	var lp LogParams
	if m.Method != "log" {
		return lp, false
	}
	if err := json.Unmarshal(m.Params, &lp); err != nil {
		return lp, false
	}
	return lp, true
}

// Harness owns the pipes between a test and a Plugin.
type Harness struct {
	t      testing.TB
	Plugin *plugin.Plugin

	inW  *io.PipeWriter
	outW *io.PipeWriter

	frames chan *Message
	done   chan error

	mu       sync.Mutex
	notified []*Message
	started  bool
}

// Constructor builds a Plugin from options, e.g. plugin.New.
type Constructor func(opts ...plugin.Option) *plugin.Plugin

// New constructs a Plugin wired to the harness pipes. Register methods on
// h.Plugin, then call Start. Autopatch is disabled unless opts enable it.
func New(t testing.TB, opts ...plugin.Option) *Harness {
	t.Helper()
	return NewWith(t, plugin.New, opts...)
}

// NewWith is New for plugins built by their own constructor.
func NewWith(t testing.TB, build Constructor, opts ...plugin.Option) *Harness {
	t.Helper()

	inR, inW := io.Pipe()
	outR, outW := io.Pipe()

	base := []plugin.Option{plugin.WithConfig(plugin.Config{LogLevel: "debug"}), plugin.WithAutopatch(false)}
	p := build(append(append(base, opts...), plugin.WithIO(inR, outW))...)

	h := &Harness{
		t:      t,
		Plugin: p,
		inW:    inW,
		outW:   outW,
		frames: make(chan *Message, 256),
		done:   make(chan error, 1),
	}

	go func() {
		defer close(h.frames)
		r := framing.NewReader(outR)
		for {
			frames, err := r.Next()
			for _, f := range frames {
				var m Message
				if jerr := json.Unmarshal(f, &m); jerr != nil {
					m = Message{Method: "<undecodable>"}
				}
				m.Raw = string(f)
				h.frames <- &m
			}
			if err != nil {
				return
			}
		}
	}()

	t.Cleanup(func() {
		_ = inW.Close()
		_ = outW.Close()
	})
	return h
}

// Start runs Serve in the background.
func (h *Harness) Start(ctx context.Context) {
	h.mu.Lock()
	h.started = true
	h.mu.Unlock()

	go func() {
		err := h.Plugin.Serve(ctx)
		_ = h.outW.Close()
		h.done <- err
	}()
}

// SendRaw writes s to the plugin's input unchanged.
func (h *Harness) SendRaw(s string) {
	h.t.Helper()
	if _, err := io.WriteString(h.inW, s); err != nil {
		h.t.Fatalf("write input: %v", err)
	}
}

// Send writes a request frame. A nil id sends a notification.
func (h *Harness) Send(method string, params any, id any) {
	h.t.Helper()
	req := jsonrpc.Request{JSONRPCVersion: jsonrpc.ProtocolVersion, Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			h.t.Fatalf("marshal params: %v", err)
		}
		req.Params = raw
	}
	if id != nil {
		req.ID = jsonrpc.NewRequestID(id)
	}
	b, err := json.Marshal(&req)
	if err != nil {
		h.t.Fatalf("marshal request: %v", err)
	}
	h.SendRaw(string(b) + jsonrpc.FrameDelimiter)
}

// Next returns the next frame written by the plugin.
func (h *Harness) Next() (*Message, error) {
	select {
	case m, ok := <-h.frames:
		if !ok {
			return nil, io.EOF
		}
		return m, nil
	case <-time.After(DefaultTimeout):
		return nil, errors.New("timeout waiting for output frame")
	}
}

// NextResponse returns the next response frame, collecting any notifications
// written before it.
func (h *Harness) NextResponse() (*Message, error) {
	for {
		m, err := h.Next()
		if err != nil {
			return nil, err
		}
		if m.IsNotification() {
			h.mu.Lock()
			h.notified = append(h.notified, m)
			h.mu.Unlock()
			continue
		}
		return m, nil
	}
}

// Call sends a request and waits for its response.
func (h *Harness) Call(method string, params any, id any) *Message {
	h.t.Helper()
	h.Send(method, params, id)
	resp, err := h.NextResponse()
	if err != nil {
		h.t.Fatalf("call %s: %v", method, err)
	}
	want, _ := json.Marshal(id)
	if string(resp.ID) != string(want) {
		h.t.Fatalf("call %s: expected response id %s, got %s", method, want, resp.ID)
	}
	return resp
}

// Notifications returns the notifications collected so far.
func (h *Harness) Notifications() []*Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*Message(nil), h.notified...)
}

// Logs returns the log notifications collected so far.
func (h *Harness) Logs() []LogParams {
	var out []LogParams
	for _, n := range h.Notifications() {
		if lp, ok := n.Log(); ok {
			out = append(out, lp)
		}
	}
	return out
}

// Close ends the input stream and returns Serve's error.
func (h *Harness) Close() error {
	_ = h.inW.Close()
	h.mu.Lock()
	started := h.started
	h.mu.Unlock()
	if !started {
		return nil
	}
	select {
	case err := <-h.done:
		return err
	case <-time.After(DefaultTimeout):
		return fmt.Errorf("timeout waiting for Serve to return")
	}
}
