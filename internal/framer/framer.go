// Package framer turns a byte stream into complete lines, one per
// connection. It replaces the teacher's and the original source's
// tendency to read one byte at a time straight into application state
// (spec §4.3) with a dedicated buffer that is agnostic to what the lines
// mean — naming, chat, or command dispatch are all decided by the
// caller.
package framer

import "bytes"

// DefaultLimit is a general-purpose overflow ceiling for a Framer.
// internal/client does not use it: an unnamed client's framer is built
// with client.MaxName and raised with SetLimit once the client is named.
const DefaultLimit = 64

// Framer buffers bytes read from one socket and extracts newline
// terminated lines. It holds no reference to the socket or to any
// application state — it is pure buffering and framing.
type Framer struct {
	buf   []byte
	limit int
}

// New returns a Framer with the given overflow limit.
func New(limit int) *Framer {
	return &Framer{limit: limit}
}

// SetLimit changes the overflow ceiling without discarding buffered bytes.
func (f *Framer) SetLimit(limit int) {
	f.limit = limit
}

// Feed appends chunk to the internal buffer and extracts every complete
// line it now contains. A line is the bytes up to (excluding) the first
// '\n'; a trailing '\r' is stripped. Bytes after the last '\n' remain
// buffered for the next call.
//
// If, after extracting all complete lines, the remaining buffered bytes
// exceed the configured limit, overflow is true and the buffer is
// discarded — the caller decides what (if anything) to tell the client.
//
// Feed satisfies the framing law: for any sequence of lines, the result
// is identical regardless of how the input bytes are chunked across
// calls, as long as no buffered partial line exceeds the limit (whether
// a long line overflows depends on where the chunk boundaries fall).
func (f *Framer) Feed(chunk []byte) (lines []string, overflow bool) {
	f.buf = append(f.buf, chunk...)

	start := 0
	for {
		idx := bytes.IndexByte(f.buf[start:], '\n')
		if idx < 0 {
			break
		}
		end := start + idx
		line := f.buf[start:end]
		if len(line) > 0 && line[len(line)-1] == '\r' {
			line = line[:len(line)-1]
		}
		lines = append(lines, string(line))
		start = end + 1
	}

	remaining := f.buf[start:]
	if len(remaining) > f.limit {
		f.buf = nil
		return lines, true
	}

	// Keep only the unconsumed tail; copy so the backing array from
	// earlier, larger chunks isn't held onto indefinitely.
	tail := make([]byte, len(remaining))
	copy(tail, remaining)
	f.buf = tail
	return lines, false
}

// Reset discards any buffered partial line.
func (f *Framer) Reset() {
	f.buf = nil
}
