// Package framing splits an incoming byte stream into JSON-RPC messages
// terminated by a two-newline delimiter.
package framing

import (
	"bufio"
	"bytes"
	"io"

	"github.com/ggoodman/clnplugin-go/internal/jsonrpc"
)

var delim = []byte(jsonrpc.FrameDelimiter)

// Framer accumulates input and yields complete frames. The zero value is
// ready to use.
type Framer struct {
	partial []byte
}

// Feed appends chunk to the pending buffer and returns every complete frame
// now available, in arrival order. The trailing segment (possibly empty) is
// kept as the pending buffer. Returned slices do not alias the buffer.
//
// The pending buffer never holds a whole delimiter, so only the new bytes
// and the len(delim)-1 bytes before them are searched.
func (f *Framer) Feed(chunk []byte) [][]byte {
	scan := max(0, len(f.partial)-len(delim)+1)
	f.partial = append(f.partial, chunk...)

	var frames [][]byte
	start := 0
	for {
		i := bytes.Index(f.partial[scan:], delim)
		if i < 0 {
			break
		}
		end := scan + i
		frames = append(frames, bytes.Clone(f.partial[start:end]))
		start = end + len(delim)
		scan = start
	}
	if start > 0 {
		f.partial = bytes.Clone(f.partial[start:])
	}
	return frames
}

// Pending returns the not-yet-terminated remainder.
func (f *Framer) Pending() []byte {
	return f.partial
}

// Reader reads a stream line by line and feeds it through a Framer. The
// delimiter always ends on a newline, so line reads never split one.
type Reader struct {
	br     *bufio.Reader
	framer Framer
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

// Next blocks until at least one complete frame is available and returns all
// frames completed by the data read so far. It returns any read error,
// including io.EOF, once the stream ends; frames completed by the final read
// are returned together with the error.
func (r *Reader) Next() ([][]byte, error) {
	for {
		line, err := r.br.ReadBytes('\n')
		var frames [][]byte
		if len(line) > 0 {
			frames = r.framer.Feed(line)
		}
		if err != nil {
			return frames, err
		}
		if len(frames) > 0 {
			return frames, nil
		}
	}
}

// Pending returns the buffered partial frame.
func (r *Reader) Pending() []byte {
	return r.framer.Pending()
}
