package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Gemini   GeminiConfig   `yaml:"gemini"`
	Paths    PathsConfig    `yaml:"paths"`
	Chunking ChunkingConfig `yaml:"chunking"`
	Retry    RetryConfig    `yaml:"retry"`
	Script   ScriptConfig   `yaml:"script"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type GeminiConfig struct {
	APIKeys           []string `yaml:"api_keys"`
	ModelSplit        string   `yaml:"model_split"`
	ModelScript       string   `yaml:"model_script"`
	ModelTTS          string   `yaml:"model_tts"`
	Voice             string   `yaml:"voice"`
	VoiceStyle        string   `yaml:"voice_style"`
	RequestsPerMinute int      `yaml:"requests_per_minute"`
}

type PathsConfig struct {
	Output string `yaml:"output"`
	Inbox  string `yaml:"inbox"`
}

type ChunkingConfig struct {
	TargetMinutes   int     `yaml:"target_minutes"`
	CharsPerMinute  int     `yaml:"chars_per_minute"`
	MinSegments     int     `yaml:"min_segments"`
	MaxSegments     int     `yaml:"max_segments"`
	MinChunkChars   int     `yaml:"min_chunk_chars"`
	MinSizeFraction float64 `yaml:"min_size_fraction"`
	SampleLimit     int     `yaml:"sample_limit"`
}

type RetryConfig struct {
	Attempts     int `yaml:"attempts"`
	DelaySeconds int `yaml:"delay_seconds"`
}

type ScriptConfig struct {
	Style      string `yaml:"style"`
	ExportDocx bool   `yaml:"export_docx"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads a yaml config file and merges Gemini API keys from the
// environment. An optional .env file is honored when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.Gemini.APIKeys = append(cfg.Gemini.APIKeys, key)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Paths.Output == "" {
		c.Paths.Output = "output"
	}
	if c.Paths.Inbox == "" {
		c.Paths.Inbox = "inbox"
	}
	if c.Gemini.ModelSplit == "" {
		c.Gemini.ModelSplit = "gemini-2.5-flash"
	}
	if c.Gemini.ModelScript == "" {
		c.Gemini.ModelScript = "gemini-2.5-flash"
	}
	if c.Gemini.ModelTTS == "" {
		c.Gemini.ModelTTS = "gemini-2.5-flash-preview-tts"
	}
	if c.Gemini.Voice == "" {
		c.Gemini.Voice = "Aoede"
	}
	if c.Gemini.RequestsPerMinute <= 0 {
		c.Gemini.RequestsPerMinute = 8
	}
	if c.Chunking.TargetMinutes <= 0 {
		c.Chunking.TargetMinutes = 5
	}
	if c.Chunking.CharsPerMinute <= 0 {
		c.Chunking.CharsPerMinute = 250
	}
	if c.Chunking.MinSegments <= 0 {
		c.Chunking.MinSegments = 2
	}
	if c.Chunking.MaxSegments <= 0 {
		c.Chunking.MaxSegments = 20
	}
	if c.Chunking.MaxSegments < c.Chunking.MinSegments {
		return fmt.Errorf("chunking.max_segments (%d) is below chunking.min_segments (%d)",
			c.Chunking.MaxSegments, c.Chunking.MinSegments)
	}
	if c.Chunking.MinChunkChars <= 0 {
		c.Chunking.MinChunkChars = 600
	}
	if c.Chunking.MinSizeFraction <= 0 || c.Chunking.MinSizeFraction >= 1 {
		c.Chunking.MinSizeFraction = 0.4
	}
	if c.Chunking.SampleLimit <= 0 {
		c.Chunking.SampleLimit = 24000
	}
	if c.Retry.Attempts <= 0 {
		c.Retry.Attempts = 3
	}
	if c.Retry.DelaySeconds <= 0 {
		c.Retry.DelaySeconds = 1
	}
	if c.Script.Style == "" {
		c.Script.Style = "friendly and conversational"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return nil
}

// RequireAPIKey reports an error when no Gemini API key is configured.
// Only the LLM-backed phases need one; Input runs without it.
func (c *Config) RequireAPIKey() error {
	if len(c.Gemini.APIKeys) == 0 {
		return fmt.Errorf("no Gemini API key: set GEMINI_API_KEY or gemini.api_keys")
	}
	return nil
}
