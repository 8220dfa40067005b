package phase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/nguyentantai21042004/podcast-flow/internal/artifact"
	"github.com/nguyentantai21042004/podcast-flow/internal/config"
	"github.com/nguyentantai21042004/podcast-flow/internal/logger"
)

// fakeAdvisor returns canned boundaries or a canned error.
type fakeAdvisor struct {
	boundaries []int
	err        error
	calls      int
}

func (f *fakeAdvisor) Suggest(_ context.Context, _ string, _ int) ([]int, error) {
	f.calls++
	return f.boundaries, f.err
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}

func longText(paragraphs int) string {
	var sb strings.Builder
	for i := 0; i < paragraphs; i++ {
		fmt.Fprintf(&sb, "Paragraph %d talks about something at moderate length to fill the segment with text.", i)
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String())
}

func writeInput(t *testing.T, store *artifact.Store, text string) {
	t.Helper()
	if err := store.WriteText(store.InputTextPath(), text); err != nil {
		t.Fatal(err)
	}
}

func readAllChunks(t *testing.T, store *artifact.Store) []string {
	t.Helper()
	ordinals, err := store.ChunkOrdinals()
	if err != nil {
		t.Fatal(err)
	}
	var chunks []string
	for _, n := range ordinals {
		text, err := store.ReadText(store.ChunkPath(n))
		if err != nil {
			t.Fatal(err)
		}
		chunks = append(chunks, text)
	}
	return chunks
}

func TestSplitMissingInput(t *testing.T) {
	store := artifact.New(t.TempDir())
	p := NewSplit(testConfig(), store, &fakeAdvisor{}, logger.New("error"))

	err := p.Run(context.Background())
	if !errors.Is(err, ErrInputMissing) {
		t.Errorf("Run() error = %v, want ErrInputMissing", err)
	}
}

func TestSplitReassemblesText(t *testing.T) {
	store := artifact.New(t.TempDir())
	text := longText(60)
	writeInput(t, store, text)

	p := NewSplit(testConfig(), store, &fakeAdvisor{err: errors.New("service down")}, logger.New("error"))
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	chunks := readAllChunks(t, store)
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(chunks))
	}
	if got := strings.Join(chunks, ""); got != text {
		t.Error("concatenated chunks do not reproduce the input text")
	}

	// Every chunk has a metadata sidecar with a consistent char count.
	for i, c := range chunks {
		meta, err := store.ReadChunkMeta(i)
		if err != nil {
			t.Fatalf("ReadChunkMeta(%d) error = %v", i, err)
		}
		if meta.Ordinal != i {
			t.Errorf("meta %d has ordinal %d", i, meta.Ordinal)
		}
		if meta.CharCount != utf8.RuneCountInString(c) {
			t.Errorf("meta %d char count = %d, want %d", i, meta.CharCount, utf8.RuneCountInString(c))
		}
		if meta.EstimatedMinutes <= 0 {
			t.Errorf("meta %d estimated minutes = %v, want > 0", i, meta.EstimatedMinutes)
		}
	}
}

func TestSplitUsesAdvisorBoundaries(t *testing.T) {
	store := artifact.New(t.TempDir())
	text := strings.Repeat("a", 2400) + strings.Repeat("b", 2600)
	writeInput(t, store, text)

	// 5000 chars at 5 min / 250 cpm plans 4 segments of 1250.
	adv := &fakeAdvisor{boundaries: []int{1200, 2600, 3700}}
	p := NewSplit(testConfig(), store, adv, logger.New("error"))
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if adv.calls != 1 {
		t.Errorf("advisor called %d times, want 1", adv.calls)
	}

	chunks := readAllChunks(t, store)
	if len(chunks) != 4 {
		t.Fatalf("got %d chunks, want 4", len(chunks))
	}
	if got := len([]rune(chunks[0])); got != 1200 {
		t.Errorf("first chunk = %d runes, want 1200", got)
	}
	if got := strings.Join(chunks, ""); got != text {
		t.Error("concatenated chunks do not reproduce the input text")
	}
}

func TestSplitFallsBackOnServiceFailure(t *testing.T) {
	store := artifact.New(t.TempDir())
	text := strings.Repeat("x", 5000)
	writeInput(t, store, text)

	p := NewSplit(testConfig(), store, &fakeAdvisor{err: errors.New("unavailable after retries")}, logger.New("error"))
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v, phase must absorb advisor failure", err)
	}

	chunks := readAllChunks(t, store)
	if len(chunks) != 4 {
		t.Fatalf("got %d chunks, want 4 uniform segments", len(chunks))
	}
	for i, c := range chunks[:3] {
		if got := len([]rune(c)); got != 1250 {
			t.Errorf("chunk %d = %d runes, want 1250", i, got)
		}
	}
}

func TestSplitDegenerateInput(t *testing.T) {
	store := artifact.New(t.TempDir())
	text := "A short note.\n\nBarely two paragraphs."
	writeInput(t, store, text)

	adv := &fakeAdvisor{}
	p := NewSplit(testConfig(), store, adv, logger.New("error"))
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if adv.calls != 0 {
		t.Errorf("advisor consulted for degenerate input")
	}

	chunks := readAllChunks(t, store)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0] != text {
		t.Error("single chunk does not match input text")
	}
}

func TestSplitIdempotent(t *testing.T) {
	store := artifact.New(t.TempDir())
	writeInput(t, store, longText(60))

	p := NewSplit(testConfig(), store, &fakeAdvisor{boundaries: []int{1100, 2300, 3600}}, logger.New("error"))

	if err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	first := readAllChunks(t, store)

	if err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	second := readAllChunks(t, store)

	if len(first) != len(second) {
		t.Fatalf("chunk count changed across reruns: %d then %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs across reruns", i)
		}
	}
}

func TestSplitRemovesStaleChunks(t *testing.T) {
	store := artifact.New(t.TempDir())
	writeInput(t, store, strings.Repeat("x", 5000))

	// Leftovers from an earlier run against a longer document.
	for n := 0; n < 12; n++ {
		if err := store.WriteText(store.ChunkPath(n), "stale"); err != nil {
			t.Fatal(err)
		}
	}

	p := NewSplit(testConfig(), store, &fakeAdvisor{err: errors.New("down")}, logger.New("error"))
	if err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	ordinals, err := store.ChunkOrdinals()
	if err != nil {
		t.Fatal(err)
	}
	if len(ordinals) != 4 {
		t.Errorf("got ordinals %v, want exactly 4 chunks with stale tail removed", ordinals)
	}
}

func TestSplitState(t *testing.T) {
	store := artifact.New(t.TempDir())
	p := NewSplit(testConfig(), store, &fakeAdvisor{err: errors.New("down")}, logger.New("error"))

	if got := p.State(); got != StateNotStarted {
		t.Errorf("State() = %v before run, want not started", got)
	}

	writeInput(t, store, strings.Repeat("x", 5000))
	if err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if got := p.State(); got != StateCompleted {
		t.Errorf("State() = %v after run, want completed", got)
	}

	// A chunk without its metadata sidecar is not well-formed output.
	if err := store.WriteText(store.ChunkPath(9), "orphan"); err != nil {
		t.Fatal(err)
	}
	if got := p.State(); got != StateNotStarted {
		t.Errorf("State() = %v with orphan chunk, want not started", got)
	}
}
