// Package chunk implements the duration-balanced partitioning of extracted
// text: planning how many segments a document needs and reconciling suggested
// split points against that plan.
package chunk

import "math"

// Planner computes chunk plans from total text length and a target duration.
type Planner struct {
	Estimator       Estimator
	MinSegments     int
	MaxSegments     int
	MinSizeFraction float64
}

// Plan describes the target segmentation for one document.
type Plan struct {
	TotalLength  int
	SegmentCount int
	SegmentSize  int

	minSize int
}

// Plan derives the segment count and size for a text of totalLength runes.
// The count is the rounded ratio of total length to the target duration's
// character budget, clamped into [MinSegments, MaxSegments]. The size is the
// integer division; the last segment absorbs the remainder when cutting.
func (p Planner) Plan(totalLength, targetMinutes int) Plan {
	targetChars := p.Estimator.Chars(targetMinutes)
	if targetChars < 1 {
		targetChars = 1
	}

	count := int(math.Round(float64(totalLength) / float64(targetChars)))
	if count < p.MinSegments {
		count = p.MinSegments
	}
	if count > p.MaxSegments {
		count = p.MaxSegments
	}

	size := totalLength / count
	if size < 1 {
		size = 1
	}

	minSize := int(p.MinSizeFraction * float64(size))
	if minSize < 1 {
		minSize = 1
	}

	return Plan{
		TotalLength:  totalLength,
		SegmentCount: count,
		SegmentSize:  size,
		minSize:      minSize,
	}
}

// UniformBoundaries returns the fallback boundary set: multiples of the
// segment size, one per interior split.
func (pl Plan) UniformBoundaries() []int {
	want := pl.SegmentCount - 1
	if want <= 0 {
		return nil
	}
	boundaries := make([]int, want)
	for i := range boundaries {
		boundaries[i] = (i + 1) * pl.SegmentSize
	}
	return pl.clampMinSize(boundaries)
}

// Reconcile merges advisor-suggested boundary offsets with the plan.
//
// Suggestions are first filtered to strictly increasing offsets inside
// (0, TotalLength). If the survivors are fewer than half of the wanted
// boundary count or more than double it, they are discarded wholesale in
// favor of uniform boundaries. Otherwise the set is resized to exactly
// SegmentCount-1 entries: surplus boundaries are matched greedily against
// uniform targets, shortfalls are filled by bisecting the largest gaps.
// A final pass enforces the minimum viable segment size.
//
// The result always has exactly SegmentCount-1 strictly increasing
// boundaries, so cutting at them yields SegmentCount contiguous non-empty
// segments covering the whole text.
func (pl Plan) Reconcile(suggested []int) []int {
	want := pl.SegmentCount - 1
	if want <= 0 {
		return nil
	}

	filtered := make([]int, 0, len(suggested))
	last := 0
	for _, b := range suggested {
		if b <= last || b >= pl.TotalLength {
			continue
		}
		filtered = append(filtered, b)
		last = b
	}

	if len(filtered) < (want+1)/2 || len(filtered) > want*2 {
		return pl.UniformBoundaries()
	}

	switch {
	case len(filtered) > want:
		filtered = pl.selectNearTargets(filtered, want)
	case len(filtered) < want:
		filtered = pl.fillLargestGaps(filtered, want)
	}

	return pl.clampMinSize(filtered)
}

// selectNearTargets keeps the want boundaries closest to the uniform target
// positions, preserving order. Greedy per target, leaving enough candidates
// for the remaining slots.
func (pl Plan) selectNearTargets(candidates []int, want int) []int {
	selected := make([]int, 0, want)
	next := 0
	for i := 0; i < want; i++ {
		target := (i + 1) * pl.SegmentSize
		// Last index this slot may take while leaving one candidate per
		// remaining slot.
		limit := len(candidates) - (want - i)
		best := next
		for j := next; j <= limit; j++ {
			if abs(candidates[j]-target) <= abs(candidates[best]-target) {
				best = j
			}
		}
		selected = append(selected, candidates[best])
		next = best + 1
	}
	return selected
}

// fillLargestGaps inserts boundaries at the midpoint of the widest remaining
// gap until the wanted count is reached.
func (pl Plan) fillLargestGaps(boundaries []int, want int) []int {
	result := append([]int(nil), boundaries...)
	for len(result) < want {
		gapStart, gapEnd := pl.largestGap(result)
		mid := gapStart + (gapEnd-gapStart)/2
		if mid <= gapStart || mid >= gapEnd {
			// No room anywhere; clampMinSize will still produce a strictly
			// increasing set.
			result = append(result, gapStart+1)
			continue
		}
		result = insertSorted(result, mid)
	}
	return result
}

func (pl Plan) largestGap(boundaries []int) (int, int) {
	edges := make([]int, 0, len(boundaries)+2)
	edges = append(edges, 0)
	edges = append(edges, boundaries...)
	edges = append(edges, pl.TotalLength)

	bestStart, bestEnd := edges[0], edges[1]
	for i := 1; i < len(edges)-1; i++ {
		if edges[i+1]-edges[i] > bestEnd-bestStart {
			bestStart, bestEnd = edges[i], edges[i+1]
		}
	}
	return bestStart, bestEnd
}

// clampMinSize shifts boundaries so no segment falls below the minimum
// viable size, keeping the sequence strictly increasing and inside the text.
func (pl Plan) clampMinSize(boundaries []int) []int {
	result := append([]int(nil), boundaries...)
	prev := 0
	for i := range result {
		lo := prev + pl.minSizeOrOne()
		hi := pl.TotalLength - pl.minSizeOrOne()*(len(result)-i)
		if hi < lo {
			hi = lo
		}
		b := result[i]
		if b < lo {
			b = lo
		}
		if b > hi {
			b = hi
		}
		result[i] = b
		prev = b
	}
	return result
}

func (pl Plan) minSizeOrOne() int {
	if pl.minSize < 1 {
		return 1
	}
	return pl.minSize
}

func insertSorted(s []int, v int) []int {
	i := 0
	for i < len(s) && s[i] < v {
		i++
	}
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
