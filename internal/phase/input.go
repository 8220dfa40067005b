package phase

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/nguyentantai21042004/podcast-flow/internal/artifact"
	"github.com/nguyentantai21042004/podcast-flow/internal/logger"
	"github.com/nguyentantai21042004/podcast-flow/pkg/executor"
)

// Source selects the document the Input phase extracts text from. Exactly
// one of TextFile or PDFFile is set; page bounds apply to PDFs only.
type Source struct {
	TextFile  string
	PDFFile   string
	StartPage int
	EndPage   int
}

type InputPhase struct {
	store    *artifact.Store
	executor executor.Executor
	logger   logger.Logger
	source   Source
}

// NewInput creates the text extraction phase. PDF extraction shells out to
// pdftotext through the executor.
func NewInput(store *artifact.Store, exec executor.Executor, log logger.Logger, source Source) *InputPhase {
	return &InputPhase{
		store:    store,
		executor: exec,
		logger:   log,
		source:   source,
	}
}

func (p *InputPhase) Name() string { return "input" }

func (p *InputPhase) State() State {
	if p.store.Exists(p.store.InputTextPath()) {
		return StateCompleted
	}
	return StateNotStarted
}

func (p *InputPhase) Run(ctx context.Context) error {
	var (
		text string
		err  error
	)

	switch {
	case p.source.TextFile != "":
		text, err = p.readTextFile(ctx, p.source.TextFile)
	case p.source.PDFFile != "":
		text, err = p.extractPDF(ctx, p.source.PDFFile)
	default:
		return fmt.Errorf("no input source: provide a text or PDF file")
	}
	if err != nil {
		return err
	}

	cleaned := cleanText(text)
	if cleaned == "" {
		return fmt.Errorf("extracted text is empty")
	}

	outPath := p.store.InputTextPath()
	if err := p.store.WriteText(outPath, cleaned); err != nil {
		return err
	}

	p.logger.Info(ctx, "Saved %d characters to %s", utf8.RuneCountInString(cleaned), outPath)
	return nil
}

func (p *InputPhase) readTextFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", missingInput(path)
		}
		return "", fmt.Errorf("read text file: %w", err)
	}

	p.logger.Info(ctx, "Processing text file: %s", path)
	return string(data), nil
}

func (p *InputPhase) extractPDF(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", missingInput(path)
		}
		return "", fmt.Errorf("stat pdf: %w", err)
	}

	p.logger.Info(ctx, "Processing PDF: %s", path)

	args := []string{"-enc", "UTF-8"}
	if p.source.StartPage > 0 {
		args = append(args, "-f", strconv.Itoa(p.source.StartPage))
	}
	if p.source.EndPage > 0 {
		args = append(args, "-l", strconv.Itoa(p.source.EndPage))
	}
	args = append(args, path, "-")

	out, err := p.executor.Execute(ctx, "pdftotext", args...)
	if err != nil {
		return "", fmt.Errorf("pdftotext extract: %w", err)
	}
	return out, nil
}

// cleanText normalizes line endings, trims each line, joins wrapped lines
// within a paragraph, and separates paragraphs with blank lines.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var paragraphs []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	return strings.Join(paragraphs, "\n\n")
}
