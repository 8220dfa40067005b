package phase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/nguyentantai21042004/podcast-flow/internal/artifact"
	"github.com/nguyentantai21042004/podcast-flow/internal/config"
	"github.com/nguyentantai21042004/podcast-flow/internal/logger"
	"github.com/nguyentantai21042004/podcast-flow/internal/transcript"
)

// TextGenerator is the slice of the Gemini client the Script phase needs.
type TextGenerator interface {
	GenerateText(ctx context.Context, model, prompt string) (string, error)
}

const scriptPrompt = `Rewrite the following text as a podcast script for a single narrator.

Requirements:
1. Stay faithful to the source content while explaining it clearly to a listener.
2. Use natural spoken language.
3. Add a short plain-language explanation after any technical term.
4. Keep the tone %s.
5. Speak to the listener directly where it helps ("you might wonder", "the key point here is").
6. Break long sentences into short ones that are easy to follow by ear.
7. Output plain prose only: no headings, no bullet lists, no stage directions.

Text:
%s

Script:`

type ScriptPhase struct {
	cfg       *config.Config
	store     *artifact.Store
	generator TextGenerator
	logger    logger.Logger
}

// NewScript creates the conversational rewriting phase.
func NewScript(cfg *config.Config, store *artifact.Store, gen TextGenerator, log logger.Logger) *ScriptPhase {
	return &ScriptPhase{
		cfg:       cfg,
		store:     store,
		generator: gen,
		logger:    log,
	}
}

func (p *ScriptPhase) Name() string { return "script" }

func (p *ScriptPhase) State() State {
	ordinals, err := p.store.ChunkOrdinals()
	if err != nil || len(ordinals) == 0 {
		return StateNotStarted
	}
	for _, n := range ordinals {
		if !p.store.Exists(p.store.ScriptPath(n)) {
			return StateNotStarted
		}
	}
	return StateCompleted
}

func (p *ScriptPhase) Run(ctx context.Context) error {
	ordinals, err := p.store.ChunkOrdinals()
	if err != nil {
		return err
	}
	if len(ordinals) == 0 {
		return missingInput(filepath.Dir(p.store.ChunkPath(0)))
	}

	p.logger.Info(ctx, "Processing %d chunks for script generation", len(ordinals))

	for _, n := range ordinals {
		scriptPath := p.store.ScriptPath(n)
		if p.store.Exists(scriptPath) {
			p.logger.Info(ctx, "Script %d already exists, skipping", n)
			continue
		}

		text, err := p.store.ReadText(p.store.ChunkPath(n))
		if err != nil {
			return err
		}

		script := p.generate(ctx, n, text)
		if err := p.store.WriteText(scriptPath, script); err != nil {
			return err
		}
		p.logger.Info(ctx, "Generated script %d: %d characters", n, utf8.RuneCountInString(script))

		if p.cfg.Script.ExportDocx {
			p.exportDocx(ctx, n, script)
		}
	}

	return nil
}

func (p *ScriptPhase) generate(ctx context.Context, ordinal int, text string) string {
	if p.generator != nil {
		prompt := fmt.Sprintf(scriptPrompt, p.cfg.Script.Style, text)
		raw, err := p.generator.GenerateText(ctx, p.cfg.Gemini.ModelScript, prompt)
		if err == nil {
			return postProcessScript(raw)
		}
		p.logger.Warn(ctx, "Script generation for chunk %d failed, using fallback: %v", ordinal, err)
	} else {
		p.logger.Warn(ctx, "No text generator configured, using fallback script for chunk %d", ordinal)
	}
	return fallbackScript(text)
}

func (p *ScriptPhase) exportDocx(ctx context.Context, ordinal int, script string) {
	title := fmt.Sprintf("Segment %d", ordinal+1)
	if meta, err := p.store.ReadChunkMeta(ordinal); err == nil && meta.Title != "" {
		title = meta.Title
	}

	docxPath := p.store.TranscriptPath(ordinal)
	if err := os.MkdirAll(filepath.Dir(docxPath), 0755); err != nil {
		p.logger.Warn(ctx, "Docx export for script %d failed: %v", ordinal, err)
		return
	}
	if err := transcript.Write(title, script, docxPath); err != nil {
		p.logger.Warn(ctx, "Docx export for script %d failed: %v", ordinal, err)
		return
	}
	p.logger.Info(ctx, "Exported transcript: %s", docxPath)
}

// postProcessScript strips markdown remnants and normalizes punctuation in
// model output.
func postProcessScript(script string) string {
	script = strings.ReplaceAll(script, "。。", "。")
	script = strings.ReplaceAll(script, "、、", "、")
	script = strings.ReplaceAll(script, "..", ".")

	var lines []string
	for _, line := range strings.Split(script, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "*") {
			continue
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n\n")
}

// fallbackScript produces a deterministic narratable script when the model
// is unavailable: the source paragraphs framed by an intro and an outro.
func fallbackScript(text string) string {
	parts := []string{"Hello and welcome. Here is what this segment covers."}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para != "" {
			parts = append(parts, para)
		}
	}

	parts = append(parts, "That wraps up this segment. Thanks for listening.")
	return strings.Join(parts, "\n\n")
}
