package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/nguyentantai21042004/podcast-flow/internal/advisor"
	"github.com/nguyentantai21042004/podcast-flow/internal/artifact"
	"github.com/nguyentantai21042004/podcast-flow/internal/config"
	"github.com/nguyentantai21042004/podcast-flow/internal/gemini"
	"github.com/nguyentantai21042004/podcast-flow/internal/logger"
	"github.com/nguyentantai21042004/podcast-flow/internal/phase"
	"github.com/nguyentantai21042004/podcast-flow/internal/watcher"
	"github.com/nguyentantai21042004/podcast-flow/pkg/executor"
)

const usage = `Usage: pipeline <command> [flags]

Commands:
  input       Phase 1: extract text from a PDF or text file
  split       Phase 2: split extracted text into narration chunks
  script      Phase 3: rewrite chunks as podcast scripts
  synthesize  Phase 4: synthesize audio from scripts
  all         Run all phases in order, skipping completed ones
  status      Show the derived state of every phase
  watch       Monitor the inbox directory and process new documents

Common flags:
  -config     Path to config.yaml (default "config.yaml")
  -out        Output directory (default from config)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	command := os.Args[1]
	fs := flag.NewFlagSet(command, flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	outDir := fs.String("out", "", "output directory (overrides config)")
	textFile := fs.String("text", "", "input text file")
	pdfFile := fs.String("pdf", "", "input PDF file")
	startPage := fs.Int("start", 0, "first PDF page to extract")
	endPage := fs.Int("end", 0, "last PDF page to extract")
	fs.Parse(os.Args[2:])

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *outDir != "" {
		cfg.Paths.Output = *outDir
	}

	log := logger.New(cfg.Logging.Level)

	source := phase.Source{
		TextFile:  *textFile,
		PDFFile:   *pdfFile,
		StartPage: *startPage,
		EndPage:   *endPage,
	}

	if err := run(ctx, cfg, log, command, source); err != nil {
		log.Error(ctx, "%s failed: %v", command, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger, command string, source phase.Source) error {
	switch command {
	case "input", "split", "script", "synthesize":
		if needsSource(command, source) {
			return fmt.Errorf("provide exactly one of -text or -pdf")
		}
		o := buildOrchestrator(ctx, cfg, log, cfg.Paths.Output, source)
		return o.RunOne(ctx, command)

	case "all":
		if source.TextFile == "" && source.PDFFile == "" || source.TextFile != "" && source.PDFFile != "" {
			return fmt.Errorf("provide exactly one of -text or -pdf")
		}
		o := buildOrchestrator(ctx, cfg, log, cfg.Paths.Output, source)
		return o.RunAll(ctx)

	case "status":
		o := buildOrchestrator(ctx, cfg, log, cfg.Paths.Output, source)
		for _, st := range o.StatusAll() {
			fmt.Printf("%-12s %s\n", st.Name, st.State)
		}
		return nil

	case "watch":
		return runWatch(ctx, cfg, log)

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command: %s", command)
	}
}

func needsSource(command string, source phase.Source) bool {
	if command != "input" {
		return false
	}
	both := source.TextFile != "" && source.PDFFile != ""
	neither := source.TextFile == "" && source.PDFFile == ""
	return both || neither
}

// buildOrchestrator wires the four phases against one output directory.
// Without an API key the LLM-backed stages degrade to their local fallbacks.
func buildOrchestrator(ctx context.Context, cfg *config.Config, log logger.Logger, outDir string, source phase.Source) *phase.Orchestrator {
	store := artifact.New(outDir)
	exec := executor.New()

	var (
		adv       advisor.Service
		textGen   phase.TextGenerator
		speechGen phase.SpeechGenerator
	)
	if err := cfg.RequireAPIKey(); err != nil {
		log.Warn(ctx, "%v; falling back to uniform splitting and placeholder output", err)
	} else {
		client := gemini.New(
			cfg.Gemini.APIKeys,
			cfg.Retry.Attempts,
			time.Duration(cfg.Retry.DelaySeconds)*time.Second,
			cfg.Gemini.RequestsPerMinute,
			log,
		)
		adv = advisor.New(client, cfg.Gemini.ModelSplit, cfg.Chunking.SampleLimit, log)
		textGen = client
		speechGen = client
	}

	return phase.NewOrchestrator(log,
		phase.NewInput(store, exec, log, source),
		phase.NewSplit(cfg, store, adv, log),
		phase.NewScript(cfg, store, textGen, log),
		phase.NewSynthesize(cfg, store, speechGen, exec, log),
	)
}

// runWatch processes every document dropped into the inbox, each into its
// own output directory named after the file.
func runWatch(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	if err := os.MkdirAll(cfg.Paths.Inbox, 0755); err != nil {
		return fmt.Errorf("create inbox: %w", err)
	}

	handler := func(ctx context.Context, path string) error {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		outDir := filepath.Join(cfg.Paths.Output, name)

		source := phase.Source{TextFile: path}
		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			source = phase.Source{PDFFile: path}
		}

		log.Info(ctx, "========================================")
		log.Info(ctx, "Processing document: %s -> %s", path, outDir)
		log.Info(ctx, "========================================")

		return buildOrchestrator(ctx, cfg, log, outDir, source).RunAll(ctx)
	}

	w, err := watcher.New(cfg.Paths.Inbox, handler, log, 1)
	if err != nil {
		return err
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := w.Start(ctx); err != nil && err != context.Canceled {
			errChan <- err
		}
	}()

	log.Info(ctx, "Podcast pipeline is ready!")
	log.Info(ctx, "Monitoring: %s", cfg.Paths.Inbox)
	log.Info(ctx, "Output: %s", cfg.Paths.Output)
	log.Info(ctx, "Press Ctrl+C to stop")

	select {
	case <-sigChan:
		log.Info(ctx, "Shutdown signal received")
	case err := <-errChan:
		return err
	}

	cancel()
	return nil
}
