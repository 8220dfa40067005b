package phase

import (
	"context"
	"unicode/utf8"

	"github.com/nguyentantai21042004/podcast-flow/internal/advisor"
	"github.com/nguyentantai21042004/podcast-flow/internal/artifact"
	"github.com/nguyentantai21042004/podcast-flow/internal/chunk"
	"github.com/nguyentantai21042004/podcast-flow/internal/config"
	"github.com/nguyentantai21042004/podcast-flow/internal/logger"
)

type SplitPhase struct {
	cfg     *config.Config
	store   *artifact.Store
	advisor advisor.Service
	logger  logger.Logger
}

// NewSplit creates the chunking phase. advisor may be nil, in which case
// splitting always uses uniform boundaries.
func NewSplit(cfg *config.Config, store *artifact.Store, adv advisor.Service, log logger.Logger) *SplitPhase {
	return &SplitPhase{
		cfg:     cfg,
		store:   store,
		advisor: adv,
		logger:  log,
	}
}

func (p *SplitPhase) Name() string { return "split" }

// State reports completed only when a contiguous run of chunk artifacts
// starting at ordinal 0 exists, each with its metadata sidecar.
func (p *SplitPhase) State() State {
	ordinals, err := p.store.ChunkOrdinals()
	if err != nil || len(ordinals) == 0 {
		return StateNotStarted
	}
	for i, n := range ordinals {
		if n != i || !p.store.Exists(p.store.ChunkMetaPath(n)) {
			return StateNotStarted
		}
	}
	return StateCompleted
}

func (p *SplitPhase) Run(ctx context.Context) error {
	inputPath := p.store.InputTextPath()
	if !p.store.Exists(inputPath) {
		return missingInput(inputPath)
	}

	text, err := p.store.ReadText(inputPath)
	if err != nil {
		return err
	}

	totalLength := utf8.RuneCountInString(text)
	estimator := chunk.Estimator{CharsPerMinute: p.cfg.Chunking.CharsPerMinute}

	p.logger.Info(ctx, "Splitting %d characters, targeting %d minutes per chunk",
		totalLength, p.cfg.Chunking.TargetMinutes)

	// Texts below one viable chunk are emitted whole.
	if totalLength < p.cfg.Chunking.MinChunkChars {
		p.logger.Info(ctx, "Text is short enough, no splitting needed")
		return p.writeChunks(ctx, []chunk.Chunk{{Ordinal: 0, Title: chunk.DeriveTitle(text), Text: text}}, estimator)
	}

	planner := chunk.Planner{
		Estimator:       estimator,
		MinSegments:     p.cfg.Chunking.MinSegments,
		MaxSegments:     p.cfg.Chunking.MaxSegments,
		MinSizeFraction: p.cfg.Chunking.MinSizeFraction,
	}
	plan := planner.Plan(totalLength, p.cfg.Chunking.TargetMinutes)

	p.logger.Info(ctx, "Planned %d segments of ~%d characters", plan.SegmentCount, plan.SegmentSize)

	boundaries := plan.UniformBoundaries()
	if p.advisor != nil {
		suggested, err := p.advisor.Suggest(ctx, text, plan.SegmentCount)
		if err != nil {
			p.logger.Warn(ctx, "No usable segmentation suggestion, using uniform split: %v", err)
		} else {
			boundaries = plan.Reconcile(suggested)
		}
	}

	return p.writeChunks(ctx, chunk.Cut(text, boundaries), estimator)
}

func (p *SplitPhase) writeChunks(ctx context.Context, chunks []chunk.Chunk, estimator chunk.Estimator) error {
	for _, c := range chunks {
		if err := p.store.WriteText(p.store.ChunkPath(c.Ordinal), c.Text); err != nil {
			return err
		}

		charCount := utf8.RuneCountInString(c.Text)
		minutes := estimator.Minutes(charCount)
		meta := artifact.ChunkMeta{
			Ordinal:          c.Ordinal,
			Title:            c.Title,
			CharCount:        charCount,
			EstimatedMinutes: minutes,
		}
		if err := p.store.WriteChunkMeta(meta); err != nil {
			return err
		}

		p.logger.Info(ctx, "Created chunk %d: %d characters (~%.1f min)", c.Ordinal, charCount, minutes)
	}

	// A rerun that plans fewer chunks must not leave a stale tail behind.
	if err := p.store.RemoveChunksFrom(len(chunks)); err != nil {
		return err
	}

	p.logger.Info(ctx, "Content split into %d chunks", len(chunks))
	return nil
}
