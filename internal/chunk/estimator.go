package chunk

// Estimator converts between text length and estimated spoken duration using
// a fixed reading-speed constant. Lengths are rune counts, never bytes, so
// multibyte scripts estimate the same as ASCII.
type Estimator struct {
	CharsPerMinute int
}

// Minutes returns the estimated narration time for a text of n runes.
func (e Estimator) Minutes(n int) float64 {
	return float64(n) / float64(e.CharsPerMinute)
}

// Chars returns the number of runes narratable in the given minutes.
func (e Estimator) Chars(minutes int) int {
	return minutes * e.CharsPerMinute
}
