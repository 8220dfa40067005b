package phase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nguyentantai21042004/podcast-flow/internal/artifact"
	"github.com/nguyentantai21042004/podcast-flow/internal/audio"
	"github.com/nguyentantai21042004/podcast-flow/internal/config"
	"github.com/nguyentantai21042004/podcast-flow/internal/logger"
	"github.com/nguyentantai21042004/podcast-flow/pkg/executor"
)

// SpeechGenerator is the slice of the Gemini client the Synthesize phase
// needs.
type SpeechGenerator interface {
	GenerateSpeech(ctx context.Context, model, text, voice string) ([]byte, error)
}

type SynthesizePhase struct {
	cfg       *config.Config
	store     *artifact.Store
	generator SpeechGenerator
	executor  executor.Executor
	logger    logger.Logger
}

// NewSynthesize creates the audio synthesis phase. MP3 encoding and the
// silence fallback shell out to ffmpeg through the executor.
func NewSynthesize(cfg *config.Config, store *artifact.Store, gen SpeechGenerator, exec executor.Executor, log logger.Logger) *SynthesizePhase {
	return &SynthesizePhase{
		cfg:       cfg,
		store:     store,
		generator: gen,
		executor:  exec,
		logger:    log,
	}
}

func (p *SynthesizePhase) Name() string { return "synthesize" }

func (p *SynthesizePhase) State() State {
	scripts, err := p.store.ScriptOrdinals()
	if err != nil || len(scripts) == 0 {
		return StateNotStarted
	}

	produced, err := p.store.AudioOrdinals()
	if err != nil {
		return StateNotStarted
	}
	have := make(map[int]bool, len(produced))
	for _, n := range produced {
		have[n] = true
	}

	for _, n := range scripts {
		if !have[n] {
			return StateNotStarted
		}
	}
	return StateCompleted
}

func (p *SynthesizePhase) Run(ctx context.Context) error {
	ordinals, err := p.store.ScriptOrdinals()
	if err != nil {
		return err
	}
	if len(ordinals) == 0 {
		return missingInput(filepath.Dir(p.store.ScriptPath(0)))
	}

	p.logger.Info(ctx, "Processing %d scripts for audio synthesis", len(ordinals))

	for _, n := range ordinals {
		if err := p.synthesizeOne(ctx, n); err != nil {
			return err
		}
	}

	return nil
}

func (p *SynthesizePhase) synthesizeOne(ctx context.Context, ordinal int) error {
	title := ""
	estimated := 0.0
	if meta, err := p.store.ReadChunkMeta(ordinal); err == nil {
		title = meta.Title
		estimated = meta.EstimatedMinutes
	}

	audioPath := p.store.AudioPath(ordinal, title)
	if p.store.Exists(audioPath) {
		p.logger.Info(ctx, "Audio %d already exists, skipping", ordinal)
		return nil
	}

	text, err := p.store.ReadText(p.store.ScriptPath(ordinal))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(audioPath), 0755); err != nil {
		return fmt.Errorf("create audio dir: %w", err)
	}

	content := text
	if style := p.cfg.Gemini.VoiceStyle; style != "" {
		content = style + ": " + text
	}

	if p.generator == nil {
		p.logger.Warn(ctx, "No speech generator configured, writing placeholder silence for %d", ordinal)
		return p.writeSilence(ctx, audioPath)
	}

	p.logger.Info(ctx, "Synthesizing audio %d with voice %s", ordinal, p.cfg.Gemini.Voice)

	pcm, err := p.generator.GenerateSpeech(ctx, p.cfg.Gemini.ModelTTS, content, p.cfg.Gemini.Voice)
	if err != nil {
		p.logger.Warn(ctx, "Speech synthesis for %d failed, writing placeholder silence: %v", ordinal, err)
		return p.writeSilence(ctx, audioPath)
	}

	if err := p.encodeMP3(ctx, ordinal, title, pcm, audioPath); err != nil {
		return err
	}

	if actual, err := audio.MP3Duration(audioPath); err == nil {
		p.logger.Info(ctx, "Generated audio %d: %s (estimated %.1f min, actual %.1f min)",
			ordinal, audioPath, estimated, actual.Minutes())
	} else {
		p.logger.Debug(ctx, "Could not probe %s: %v", audioPath, err)
		p.logger.Info(ctx, "Generated audio %d: %s", ordinal, audioPath)
	}
	return nil
}

// encodeMP3 writes the PCM as a temporary WAV and converts it with ffmpeg.
func (p *SynthesizePhase) encodeMP3(ctx context.Context, ordinal int, title string, pcm []byte, audioPath string) error {
	wavPath := audioPath + ".tmp.wav"
	wav := audio.WrapPCM(pcm, audio.TTSSampleRate, audio.TTSChannels, audio.TTSBitDepth)
	if err := os.WriteFile(wavPath, wav, 0644); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	defer os.Remove(wavPath)

	if title == "" {
		title = fmt.Sprintf("Segment %d", ordinal+1)
	}
	args := []string{
		"-y",
		"-i", wavPath,
		"-codec:a", "libmp3lame",
		"-b:a", "128k",
		"-metadata", "title=" + title,
		"-metadata", "track=" + fmt.Sprintf("%d", ordinal+1),
		audioPath,
	}
	if _, err := p.executor.Execute(ctx, "ffmpeg", args...); err != nil {
		return fmt.Errorf("ffmpeg encode mp3: %w", err)
	}
	return nil
}

// writeSilence emits a one-second silent MP3 so the chain can complete and
// the failed segment is obvious on listen.
func (p *SynthesizePhase) writeSilence(ctx context.Context, audioPath string) error {
	args := []string{
		"-y",
		"-f", "lavfi",
		"-i", "anullsrc=r=44100:cl=mono",
		"-t", "1",
		"-b:a", "128k",
		audioPath,
	}
	if _, err := p.executor.Execute(ctx, "ffmpeg", args...); err != nil {
		return fmt.Errorf("ffmpeg silence fallback: %w", err)
	}
	return nil
}
