package domain

import "bytes"

// Delimiter terminates a frame on the wire.
const Delimiter byte = '\n'

// FrameBuffer accumulates received chunks until a delimiter is seen.
// Growth is handled by the underlying bytes.Buffer; there is no upper bound.
type FrameBuffer struct {
	buf      bytes.Buffer
	complete bool
	trailing int
}

// Append adds one received chunk. Once a delimiter has been seen the frame is
// complete and further bytes, including those after the delimiter in the same
// chunk, are counted as trailing and dropped.
// It reports whether the frame is complete after this chunk.
func (b *FrameBuffer) Append(chunk []byte) bool {
	if b.complete {
		b.trailing += len(chunk)
		return true
	}
	if i := bytes.IndexByte(chunk, Delimiter); i >= 0 {
		b.buf.Write(chunk[:i+1])
		b.trailing += len(chunk) - i - 1
		b.complete = true
		return true
	}
	b.buf.Write(chunk)
	return false
}

// Complete reports whether a delimiter has been received.
func (b *FrameBuffer) Complete() bool { return b.complete }

// Contents returns the accumulated bytes. The slice aliases the buffer and is
// valid until the next Append or Reset.
func (b *FrameBuffer) Contents() []byte { return b.buf.Bytes() }

// Len returns the number of accumulated bytes.
func (b *FrameBuffer) Len() int { return b.buf.Len() }

// Trailing returns how many bytes were dropped after the delimiter.
func (b *FrameBuffer) Trailing() int { return b.trailing }

// Reset discards the contents and releases nothing else; the capacity is kept.
func (b *FrameBuffer) Reset() {
	b.buf.Reset()
	b.complete = false
	b.trailing = 0
}
