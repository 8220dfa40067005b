package chunk

import "strings"

// Chunk is one contiguous slice of the extracted text, ordered by ordinal.
type Chunk struct {
	Ordinal int
	Title   string
	Text    string
}

// Cut slices text at the given rune-offset boundaries. Boundaries must be
// strictly increasing and inside (0, len(runes)); the concatenation of the
// returned chunks always reproduces text exactly.
func Cut(text string, boundaries []int) []Chunk {
	runes := []rune(text)

	chunks := make([]Chunk, 0, len(boundaries)+1)
	start := 0
	for _, b := range boundaries {
		chunks = append(chunks, newChunk(len(chunks), string(runes[start:b])))
		start = b
	}
	chunks = append(chunks, newChunk(len(chunks), string(runes[start:])))
	return chunks
}

func newChunk(ordinal int, text string) Chunk {
	return Chunk{
		Ordinal: ordinal,
		Title:   DeriveTitle(text),
		Text:    text,
	}
}

// DeriveTitle takes the chunk's first non-empty line, trimmed to 40 runes.
func DeriveTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		runes := []rune(line)
		if len(runes) > 40 {
			return string(runes[:40])
		}
		return line
	}
	return ""
}
