package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunkEmptyInput(t *testing.T) {
	c := New(2000, 200)

	tests := []struct {
		name  string
		input string
	}{
		{"empty string", ""},
		{"whitespace only", "   \n\t  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Chunk(tt.input); len(got) != 0 {
				t.Fatalf("expected no chunks, got %d", len(got))
			}
		})
	}
}

func TestChunkShortInput(t *testing.T) {
	c := New(2000, 200)
	text := "A single short sentence."

	chunks := c.Chunk(text)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != text {
		t.Fatalf("chunk %q does not match input", chunks[0])
	}
}

func TestChunkLongInput(t *testing.T) {
	c := New(2000, 200)
	sentence := "This sentence talks about one of the many topics in the video. "
	text := strings.Repeat(sentence, 100) // ~6300 chars

	chunks := c.Chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks for %d chars, got %d", len(text), len(chunks))
	}

	for i, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			t.Fatalf("chunk %d is empty", i)
		}
		if len(chunk) > 2000 {
			t.Fatalf("chunk %d has %d chars, want <= 2000", i, len(chunk))
		}
	}

	// Every chunk is a substring of the input, and each starts no later
	// than the previous chunk ended, so the windows cover the text.
	offset := 0
	for i, chunk := range chunks {
		pos := strings.Index(text[offset:], chunk)
		if pos < 0 {
			t.Fatalf("chunk %d not found in input past offset %d", i, offset)
		}
		offset += pos + 1
	}

	// The final chunk reaches the end of the input.
	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(strings.TrimSpace(text), last) {
		t.Fatalf("last chunk does not reach the end of the input")
	}
}

func TestChunkBreaksAtSentenceBoundary(t *testing.T) {
	c := New(100, 10)
	// Sentence ends inside the last 20% of the first window.
	text := strings.Repeat("word ", 17) + "End. " + strings.Repeat("more ", 30)

	chunks := c.Chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0], "End.") {
		t.Fatalf("first chunk %q should end at the sentence boundary", chunks[0])
	}
}

func TestChunkOverlap(t *testing.T) {
	c := New(100, 20)
	// No sentence separators, so windows cut at the raw boundary and each
	// next chunk starts exactly overlap chars back.
	text := strings.Repeat("a", 90) + strings.Repeat("b", 90) + strings.Repeat("c", 90)

	chunks := c.Chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		tail := prev[len(prev)-20:]
		if !strings.HasPrefix(chunks[i], tail) {
			t.Fatalf("chunk %d does not start with the previous chunk's overlap", i)
		}
	}
}

func TestChunkMultiByteRunes(t *testing.T) {
	c := New(2000, 200)
	// 3000 runes, 9000 bytes; byte-based windows would cut mid-character.
	text := strings.Repeat("世", 3000)

	chunks := c.Chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks for 3000 runes, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if !utf8.ValidString(chunk) {
			t.Fatalf("chunk %d is invalid UTF-8", i)
		}
		if n := utf8.RuneCountInString(chunk); n > 2000 {
			t.Fatalf("chunk %d has %d runes, want <= 2000", i, n)
		}
	}
	if got := utf8.RuneCountInString(chunks[0]); got != 2000 {
		t.Fatalf("first chunk has %d runes, want a full 2000-rune window", got)
	}
}

func TestChunkMultiByteSentenceBoundary(t *testing.T) {
	c := New(100, 10)
	// Sentence terminator lands inside the last 20% of the first window
	// even though the text is entirely multi-byte.
	text := strings.Repeat("語", 85) + ". " + strings.Repeat("文", 60)

	chunks := c.Chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0], ".") {
		t.Fatalf("first chunk should end at the sentence boundary, got %q tail", chunks[0][len(chunks[0])-8:])
	}
	for i, chunk := range chunks {
		if !utf8.ValidString(chunk) {
			t.Fatalf("chunk %d is invalid UTF-8", i)
		}
	}
}

func TestChunkDeterministic(t *testing.T) {
	c := New(500, 50)
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 40)

	first := c.Chunk(text)
	second := c.Chunk(text)
	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("chunk %d differs between runs", i)
		}
	}
}

func TestNewParameterValidation(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		overlap  int
		wantSize int
		wantLap  int
	}{
		{"defaults", 0, -1, DefaultChunkSize, DefaultOverlap},
		{"overlap too large", 100, 100, 100, 10},
		{"valid", 300, 30, 300, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.size, tt.overlap)
			if c.chunkSize != tt.wantSize || c.overlap != tt.wantLap {
				t.Fatalf("got (%d, %d), want (%d, %d)", c.chunkSize, c.overlap, tt.wantSize, tt.wantLap)
			}
		})
	}
}
