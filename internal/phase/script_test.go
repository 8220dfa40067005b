package phase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/podcast-flow/internal/artifact"
	"github.com/nguyentantai21042004/podcast-flow/internal/logger"
)

type fakeGenerator struct {
	response string
	err      error
	calls    int
}

func (f *fakeGenerator) GenerateText(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.response, f.err
}

func seedChunks(t *testing.T, store *artifact.Store, texts ...string) {
	t.Helper()
	for i, text := range texts {
		if err := store.WriteText(store.ChunkPath(i), text); err != nil {
			t.Fatal(err)
		}
		meta := artifact.ChunkMeta{Ordinal: i, Title: "Segment", CharCount: len(text), EstimatedMinutes: 1}
		if err := store.WriteChunkMeta(meta); err != nil {
			t.Fatal(err)
		}
	}
}

func TestScriptMissingChunks(t *testing.T) {
	store := artifact.New(t.TempDir())
	p := NewScript(testConfig(), store, &fakeGenerator{}, logger.New("error"))

	err := p.Run(context.Background())
	if !errors.Is(err, ErrInputMissing) {
		t.Errorf("Run() error = %v, want ErrInputMissing", err)
	}
}

func TestScriptGeneratesPerChunk(t *testing.T) {
	store := artifact.New(t.TempDir())
	seedChunks(t, store, "first chunk text", "second chunk text")

	gen := &fakeGenerator{response: "Welcome back. Today we talk about the text."}
	p := NewScript(testConfig(), store, gen, logger.New("error"))
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if gen.calls != 2 {
		t.Errorf("generator called %d times, want 2", gen.calls)
	}
	for i := 0; i < 2; i++ {
		script, err := store.ReadText(store.ScriptPath(i))
		if err != nil {
			t.Fatalf("script %d missing: %v", i, err)
		}
		if !strings.Contains(script, "Welcome back.") {
			t.Errorf("script %d = %q", i, script)
		}
	}

	if got := p.State(); got != StateCompleted {
		t.Errorf("State() = %v after run", got)
	}
}

func TestScriptSkipsExisting(t *testing.T) {
	store := artifact.New(t.TempDir())
	seedChunks(t, store, "first", "second")

	if err := store.WriteText(store.ScriptPath(0), "already written"); err != nil {
		t.Fatal(err)
	}

	gen := &fakeGenerator{response: "fresh script"}
	p := NewScript(testConfig(), store, gen, logger.New("error"))
	if err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if gen.calls != 1 {
		t.Errorf("generator called %d times, want 1 (ordinal 0 already present)", gen.calls)
	}
	script, _ := store.ReadText(store.ScriptPath(0))
	if script != "already written" {
		t.Errorf("existing script was overwritten: %q", script)
	}
}

func TestScriptFallbackOnFailure(t *testing.T) {
	store := artifact.New(t.TempDir())
	seedChunks(t, store, "Some source paragraph.\n\nAnother paragraph.")

	p := NewScript(testConfig(), store, &fakeGenerator{err: errors.New("model down")}, logger.New("error"))
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v, generation failure must not fail the phase", err)
	}

	script, err := store.ReadText(store.ScriptPath(0))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(script, "Some source paragraph.") {
		t.Errorf("fallback script lost the source text: %q", script)
	}
	if !strings.Contains(script, "Hello and welcome.") {
		t.Errorf("fallback script missing intro: %q", script)
	}
}

func TestPostProcessScript(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "strips markdown lines",
			in:   "# Heading\nReal spoken line.\n* bullet\nAnother line.",
			want: "Real spoken line.\n\nAnother line.",
		},
		{
			name: "collapses doubled punctuation",
			in:   "It ends here..\nNext.",
			want: "It ends here.\n\nNext.",
		},
		{
			name: "drops blank lines",
			in:   "one\n\n\ntwo",
			want: "one\n\ntwo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := postProcessScript(tt.in); got != tt.want {
				t.Errorf("postProcessScript() = %q, want %q", got, tt.want)
			}
		})
	}
}
