package advisor

import "context"

// Service suggests natural split positions for a text. Implementations
// return rune offsets, strictly within the text, ordered by position. Any
// failure means "no usable suggestion" and callers are expected to fall back
// to their own splitting.
type Service interface {
	Suggest(ctx context.Context, text string, segmentCount int) ([]int, error)
}
