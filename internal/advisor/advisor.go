package advisor

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

const suggestPrompt = `You are an editor preparing a long document for spoken narration.
Read the text below and identify its natural split points: chapter starts, section breaks, and clear topic shifts.

Output JSON only, in exactly this shape:
{
  "splits": [
    {"marker": "the exact sentence immediately before the split, copied verbatim (30-80 characters)", "kind": "chapter"}
  ]
}

Rules:
- Copy each marker exactly as it appears in the text. Never paraphrase and never use ellipses.
- "kind" is one of "chapter", "section", "topic-shift", "other".
- Prefer chapter and section starts over mid-flow breaks.
- Return about %d markers, ordered by their position in the text.

Text:
%s`

// Suggest asks the model for split markers over a bounded sample of the text
// and maps each marker back to a rune offset in the full text. The sample is
// a prefix: markers are verbatim sentences, so they locate exactly in the
// full document.
func (a *implAdvisor) Suggest(ctx context.Context, text string, segmentCount int) ([]int, error) {
	wantMarkers := segmentCount - 1
	if wantMarkers < 1 {
		return nil, fmt.Errorf("segment count %d needs no boundaries", segmentCount)
	}

	sample := text
	if runes := []rune(text); len(runes) > a.sampleLimit {
		sample = string(runes[:a.sampleLimit])
		a.logger.Debug(ctx, "Sampling %d of %d runes for segmentation", a.sampleLimit, len(runes))
	}

	response, err := a.client.GenerateText(ctx, a.model, fmt.Sprintf(suggestPrompt, wantMarkers, sample))
	if err != nil {
		return nil, fmt.Errorf("segmentation request: %w", err)
	}

	markers, err := parseSplits(response)
	if err != nil {
		return nil, err
	}

	boundaries := a.mapMarkers(ctx, text, markers)
	if len(boundaries) == 0 {
		return nil, fmt.Errorf("no suggested marker found in text")
	}

	a.logger.Info(ctx, "Advisor mapped %d of %d suggested split points", len(boundaries), len(markers))
	return boundaries, nil
}

// mapMarkers resolves each marker sentence to the rune offset just past its
// occurrence in text. Search advances monotonically so markers must appear in
// order; unmatched markers are skipped.
func (a *implAdvisor) mapMarkers(ctx context.Context, text string, markers []string) []int {
	var boundaries []int
	byteOffset := 0
	runeOffset := 0

	for _, marker := range markers {
		marker = strings.TrimSpace(marker)
		if marker == "" {
			continue
		}

		idx := strings.Index(text[byteOffset:], marker)
		if idx < 0 {
			a.logger.Debug(ctx, "Marker not found: %.50q", marker)
			continue
		}

		end := byteOffset + idx + len(marker)
		runeOffset += utf8.RuneCountInString(text[byteOffset:end])
		byteOffset = end
		boundaries = append(boundaries, runeOffset)
	}

	return boundaries
}
