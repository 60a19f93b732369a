package chunker

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultChunkSize = 2000
	DefaultOverlap   = 200
)

// Chunker splits text into overlapping windows, preferring to cut at
// sentence boundaries. It is pure: same input and parameters, same output.
type Chunker struct {
	chunkSize int
	overlap   int
}

func New(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultOverlap
		if overlap >= chunkSize {
			overlap = chunkSize / 10
		}
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}
}

var sentenceSeps = []string{". ", "! ", "? ", ".\n", "!\n", "?\n"}

// Chunk walks the text in windows of chunkSize characters. A window that
// does not reach the end of the text is cut back to the nearest sentence
// terminator found past 80% of the window, so chunks avoid splitting
// mid-sentence. Each next window starts overlap characters before the
// previous window's end. Whitespace-only chunks are dropped.
//
// Window positions are rune offsets, never byte offsets, so a boundary
// can never land inside a multi-byte character.
func (c *Chunker) Chunk(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + c.chunkSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			searchStart := start + int(float64(c.chunkSize)*0.8)
			window := string(runes[searchStart:end])
			bestBreak := -1
			for _, sep := range sentenceSeps {
				pos := strings.LastIndex(window, sep)
				if pos < 0 {
					continue
				}
				// pos is a byte offset into window; the separators are
				// ASCII so len(sep) counts runes too.
				cut := searchStart + utf8.RuneCountInString(window[:pos]) + len(sep)
				if cut > bestBreak {
					bestBreak = cut
				}
			}
			if bestBreak > searchStart {
				end = bestBreak
			}
		}

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= len(runes) {
			break
		}
		start = end - c.overlap
	}
	return chunks
}
