package services

import (
	"strings"
	"unicode/utf8"
)

type TextChunker interface {
	Chunk(text string) []string
}

type textChunker struct {
	maxChunkSize int
	overlap      int
}

func NewTextChunker(maxChunkSize, overlap int) TextChunker {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}
	return &textChunker{maxChunkSize: maxChunkSize, overlap: overlap}
}

// Chunk packs paragraphs into chunks of at most maxChunkSize runes. Each
// chunk after the first starts with the tail of the previous one. Paragraphs
// longer than a chunk are split on sentence boundaries, then hard-split.
func (tc *textChunker) Chunk(text string) []string {
	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen == 0 {
			return
		}
		chunk := current.String()
		chunks = append(chunks, chunk)
		current.Reset()
		currentLen = 0
		if tail := lastRunes(chunk, tc.overlap); tail != "" {
			current.WriteString(tail)
			currentLen = utf8.RuneCountInString(tail)
		}
	}

	appendPiece := func(piece, sep string) {
		pieceLen := utf8.RuneCountInString(piece)
		sepLen := utf8.RuneCountInString(sep)
		if currentLen > 0 && currentLen+sepLen+pieceLen > tc.maxChunkSize {
			flush()
		}
		if currentLen > 0 && currentLen+sepLen+pieceLen > tc.maxChunkSize {
			// the overlap tail alone leaves no room, drop it
			current.Reset()
			currentLen = 0
		}
		if currentLen > 0 {
			current.WriteString(sep)
			currentLen += sepLen
		}
		current.WriteString(piece)
		currentLen += pieceLen
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if utf8.RuneCountInString(para) <= tc.maxChunkSize {
			appendPiece(para, "\n\n")
			continue
		}

		for _, sentence := range splitIntoSentences(para) {
			for _, piece := range hardSplit(sentence, tc.maxChunkSize) {
				appendPiece(piece, " ")
			}
		}
	}

	if currentLen > 0 && (len(chunks) == 0 || current.String() != lastRunes(chunks[len(chunks)-1], tc.overlap)) {
		chunks = append(chunks, current.String())
	}

	return chunks
}

func splitIntoSentences(text string) []string {
	var result []string
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(text[start : i+utf8.RuneLen(r)]); s != "" {
				result = append(result, s)
			}
			start = i + utf8.RuneLen(r)
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		result = append(result, s)
	}
	return result
}

func hardSplit(text string, size int) []string {
	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}
	var parts []string
	for len(runes) > 0 {
		n := size
		if n > len(runes) {
			n = len(runes)
		}
		parts = append(parts, string(runes[:n]))
		runes = runes[n:]
	}
	return parts
}

func lastRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[len(runes)-n:])
}
