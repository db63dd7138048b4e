// Package wire writes framed JSON-RPC messages to the shared output stream.
package wire

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/ggoodman/clnplugin-go/internal/jsonrpc"
)

// MessageWriter emits one complete frame per call.
type MessageWriter interface {
	WriteMessage(ctx context.Context, msg jsonrpc.Message) error
}

// FrameWriter serializes frames onto an io.Writer. A frame is only complete
// once the payload, the delimiter and the flush have all been performed, and
// no other frame can interleave with it.
type FrameWriter struct {
	mu sync.Mutex
	bw *bufio.Writer
}

// NewFrameWriter wraps w.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{bw: bufio.NewWriter(w)}
}

// WriteMessage writes msg followed by the frame delimiter and flushes.
func (fw *FrameWriter) WriteMessage(_ context.Context, msg jsonrpc.Message) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if _, err := fw.bw.Write(msg); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	if _, err := fw.bw.WriteString(jsonrpc.FrameDelimiter); err != nil {
		return fmt.Errorf("write delimiter: %w", err)
	}
	if err := fw.bw.Flush(); err != nil {
		return fmt.Errorf("flush frame: %w", err)
	}
	return nil
}

// Write passes b through to the underlying writer unframed, flushing before
// it returns. It holds the frame lock, so raw output only ever lands between
// frames and never inside one.
func (fw *FrameWriter) Write(b []byte) (int, error) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	n, err := fw.bw.Write(b)
	if err != nil {
		return n, err
	}
	if err := fw.bw.Flush(); err != nil {
		return n, err
	}
	return n, nil
}

// WriteJSON encodes v as compact JSON and writes it as a single frame.
func WriteJSON(ctx context.Context, w MessageWriter, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}
	return w.WriteMessage(ctx, b)
}
