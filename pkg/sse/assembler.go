package sse

import (
	"bytes"
	"errors"
	"unicode/utf8"
)

// frameDelimiter separates two frames in the stream.
var frameDelimiter = []byte("\n\n")

// replacementChar is substituted for invalid UTF-8 sequences.
var replacementChar = []byte(string(utf8.RuneError))

// ErrFrameTooLarge is returned by Absorb when the retained partial frame grows
// past the configured maximum buffer size.
var ErrFrameTooLarge = errors.New("sse frame exceeds maximum buffer size")

// Assembler accumulates raw byte chunks and splits them into complete frames.
//
// ┌───────────────┐   ┌─────────────────────┐   ┌──────────────┐
// │ []byte chunks │──▶│ Assembler.Absorb()  │──▶│ []string     │
// └───────────────┘   │ (retains tail)      │   │ frames       │
//                     └─────────────────────┘   └──────────────┘
//
// An Assembler is not safe for concurrent use; it is owned by a single
// reading goroutine.
type Assembler struct {
	// buf holds valid UTF-8 text that has not been emitted as a frame yet.
	// After every Absorb it contains at most one partial frame.
	buf []byte

	// pending holds the leading bytes of a multi-byte rune that was split
	// across two chunks.
	pending []byte

	maxSize int
}

// NewAssembler returns an Assembler. A maxSize greater than zero caps the
// size of the retained partial frame; zero means unbounded.
func NewAssembler(maxSize int) *Assembler {
	return &Assembler{maxSize: maxSize}
}

// Absorb appends chunk to the buffer and returns every frame completed by it,
// in arrival order. The text of a frame excludes its "\n\n" delimiter.
//
// Invalid UTF-8 is replaced with U+FFFD rather than failing. If the partial
// frame left behind exceeds the maximum size, the completed frames are still
// returned alongside ErrFrameTooLarge.
func (a *Assembler) Absorb(chunk []byte) ([]string, error) {
	data := chunk
	if len(a.pending) > 0 {
		data = append(a.pending, chunk...)
		a.pending = nil
	}

	valid, rest := splitIncompleteRune(data)
	if len(rest) > 0 {
		a.pending = append([]byte(nil), rest...)
	}

	// A delimiter may straddle the previous tail and the new text.
	searchFrom := max(len(a.buf)-1, 0)
	a.buf = append(a.buf, bytes.ToValidUTF8(valid, replacementChar)...)

	var frames []string
	start := 0
	for {
		idx := bytes.Index(a.buf[searchFrom:], frameDelimiter)
		if idx < 0 {
			break
		}

		end := searchFrom + idx
		frames = append(frames, string(a.buf[start:end]))
		start = end + len(frameDelimiter)
		searchFrom = start
	}

	if start > 0 {
		a.buf = a.buf[:copy(a.buf, a.buf[start:])]
	}

	if a.maxSize > 0 && a.Buffered() > a.maxSize {
		return frames, ErrFrameTooLarge
	}

	return frames, nil
}

// Buffered returns the number of bytes retained as a partial frame.
func (a *Assembler) Buffered() int {
	return len(a.buf) + len(a.pending)
}

// Flush returns any retained partial frame and resets the Assembler.
// An incomplete trailing rune is replaced with U+FFFD.
func (a *Assembler) Flush() string {
	tail := string(a.buf) + string(bytes.ToValidUTF8(a.pending, replacementChar))
	a.buf = a.buf[:0]
	a.pending = nil
	return tail
}

// splitIncompleteRune splits p into a prefix that ends on a rune boundary and
// the leading bytes of a trailing rune that needs more input to complete.
func splitIncompleteRune(p []byte) ([]byte, []byte) {
	lower := max(len(p)-utf8.UTFMax+1, 0)
	for i := len(p) - 1; i >= lower; i-- {
		if !utf8.RuneStart(p[i]) {
			continue
		}
		if utf8.FullRune(p[i:]) {
			return p, nil
		}
		return p[:i], p[i:]
	}
	return p, nil
}
