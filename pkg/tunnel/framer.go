package tunnel

import (
	"bytes"
	"strings"
)

// Origin identifies which stream an output line came from. The child runs
// on a pseudo-terminal, so stdout and stderr arrive pre-merged in OS
// delivery order; everything framed off the PTY is tagged OriginStdout.
type Origin int

const (
	OriginStdout Origin = iota
	OriginStderr
)

// OutputLine is one framed line of child output. Lines are append-only:
// once handed to the scrollback they are never mutated.
type OutputLine struct {
	Text   string
	Origin Origin
}

// LineFramer splits a byte stream arriving in arbitrary chunks into
// newline-delimited lines. A partial line at the end of a chunk is buffered
// and prepended to the next chunk, so the emitted lines are identical
// regardless of how the stream was chunked — including chunk boundaries
// that split a multi-byte character.
type LineFramer struct {
	rem []byte
}

// NewLineFramer returns a framer with an empty carry buffer.
func NewLineFramer() *LineFramer {
	return &LineFramer{}
}

// Feed consumes one chunk and returns the lines completed by it, in stream
// order. Trailing whitespace (including the newline and any \r from the
// PTY's CRLF translation) is stripped per line; empty lines are still
// emitted, since blank output is meaningful in scrollback.
func (f *LineFramer) Feed(chunk []byte) []OutputLine {
	if len(chunk) == 0 {
		return nil
	}
	f.rem = append(f.rem, chunk...)

	var out []OutputLine
	for {
		i := bytes.IndexByte(f.rem, '\n')
		if i < 0 {
			break
		}
		out = append(out, frameLine(f.rem[:i]))
		f.rem = f.rem[i+1:]
	}
	return out
}

// Flush emits the unterminated tail, if any, as a final line. Called once
// when the child's output stream ends.
func (f *LineFramer) Flush() (OutputLine, bool) {
	if len(f.rem) == 0 {
		return OutputLine{}, false
	}
	line := frameLine(f.rem)
	f.rem = nil
	return line, true
}

// frameLine decodes one raw line. Invalid byte sequences degrade to the
// Unicode replacement character instead of aborting the stream: a garbled
// fragment must never stop tunnel traffic from being displayed.
func frameLine(raw []byte) OutputLine {
	text := strings.ToValidUTF8(string(raw), "�")
	text = strings.TrimRight(text, " \t\r\n")
	return OutputLine{Text: text, Origin: OriginStdout}
}
