package tunnel

import (
	"reflect"
	"testing"
)

func collectTexts(lines []OutputLine) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.Text)
	}
	return out
}

func TestFramer_ChunkingInvariance(t *testing.T) {
	input := []byte("alpha\nbeta  \r\n\ngamma\nhéllo wörld\n")
	want := []string{"alpha", "beta", "", "gamma", "héllo wörld"}

	// Split the stream at every single boundary, and once byte-by-byte.
	// The emitted lines must be identical in every case, even when the
	// boundary lands inside a multi-byte character.
	for split := 0; split <= len(input); split++ {
		f := NewLineFramer()
		var got []string
		got = append(got, collectTexts(f.Feed(input[:split]))...)
		got = append(got, collectTexts(f.Feed(input[split:]))...)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("split at %d: got %q, want %q", split, got, want)
		}
	}

	f := NewLineFramer()
	var got []string
	for i := range input {
		got = append(got, collectTexts(f.Feed(input[i:i+1]))...)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("byte-by-byte: got %q, want %q", got, want)
	}
}

func TestFramer_EmptyLinesEmitted(t *testing.T) {
	f := NewLineFramer()
	lines := f.Feed([]byte("\n\n"))
	if len(lines) != 2 {
		t.Fatalf("expected 2 empty lines, got %d", len(lines))
	}
	for i, l := range lines {
		if l.Text != "" {
			t.Fatalf("line %d: expected empty text, got %q", i, l.Text)
		}
	}
}

func TestFramer_InvalidBytesDegradeLossily(t *testing.T) {
	f := NewLineFramer()
	lines := f.Feed([]byte{0xff, 0xfe, 'o', 'k', '\n'})
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	got := lines[0].Text
	if got == "" {
		t.Fatalf("expected lossy-decoded text, got empty line")
	}
	// The malformed prefix is replaced, the valid suffix survives.
	if got[len(got)-2:] != "ok" {
		t.Fatalf("expected line to end in %q, got %q", "ok", got)
	}
}

func TestFramer_PartialLineHeldUntilNewline(t *testing.T) {
	f := NewLineFramer()
	if lines := f.Feed([]byte("no newline yet")); len(lines) != 0 {
		t.Fatalf("expected no lines before newline, got %d", len(lines))
	}
	lines := f.Feed([]byte(" done\n"))
	if len(lines) != 1 || lines[0].Text != "no newline yet done" {
		t.Fatalf("unexpected lines: %q", collectTexts(lines))
	}
}

func TestFramer_FlushEmitsTail(t *testing.T) {
	f := NewLineFramer()
	_ = f.Feed([]byte("complete\npartial"))

	line, ok := f.Flush()
	if !ok {
		t.Fatalf("expected a flushed tail line")
	}
	if line.Text != "partial" {
		t.Fatalf("expected %q, got %q", "partial", line.Text)
	}

	if _, ok := f.Flush(); ok {
		t.Fatalf("second flush should have nothing left")
	}
}

func TestFramer_FlushEmptyStream(t *testing.T) {
	f := NewLineFramer()
	if _, ok := f.Flush(); ok {
		t.Fatalf("flush on empty framer should report nothing")
	}
}
