// Package config loads Scandex configuration from a TOML file and API
// credentials from the environment.
//
// Non-secret settings live in ~/.scandex/config.toml. Service credentials
// are never written to the TOML file; they come from the process
// environment, seeded from ~/.scandex/.env when present.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Environment variable names for service credentials.
const (
	EnvMistralKey    = "MISTRAL_API_KEY"
	EnvOpenRouterKey = "OPENROUTER_API_KEY"
)

// Default pipeline settings, matching the corpus the tool was built for.
const (
	DefaultOCRModel       = "mistral-ocr-latest"
	DefaultEmbeddingModel = "qwen/qwen3-embedding-8b"
	DefaultChunkSize      = 1500
	DefaultChunkMinLength = 50
	DefaultBatchSize      = 20
	DefaultBatchDelay     = 200 * time.Millisecond
	DefaultSearchLimit    = 20
	DefaultWatchDebounce  = 2 * time.Second
)

// Duration is a time.Duration that decodes from TOML duration strings like
// "500ms" or "2s". go-toml only maps TOML strings onto types implementing
// encoding.TextUnmarshaler.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds all application settings.
type Config struct {
	// PDFDir is the corpus directory of source PDFs.
	PDFDir string `toml:"pdf_dir"`

	// MarkdownDir receives one OCR artifact per PDF.
	MarkdownDir string `toml:"markdown_dir"`

	// DataDir holds the SQLite database. Empty means ~/.scandex/data.
	DataDir string `toml:"data_dir"`

	OCR       OCRConfig       `toml:"ocr"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Chunking  ChunkingConfig  `toml:"chunking"`
	Search    SearchConfig    `toml:"search"`
	Watch     WatchConfig     `toml:"watch"`
}

// OCRConfig configures the OCR provider.
type OCRConfig struct {
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`

	// APIKey is populated from the environment, never from TOML.
	APIKey string `toml:"-"`
}

// EmbeddingConfig configures the embedding provider and batcher.
type EmbeddingConfig struct {
	Model      string   `toml:"model"`
	BaseURL    string   `toml:"base_url"`
	BatchSize  int      `toml:"batch_size"`
	BatchDelay Duration `toml:"batch_delay"`

	// APIKey is populated from the environment, never from TOML.
	APIKey string `toml:"-"`
}

// ChunkingConfig configures the paragraph chunker.
type ChunkingConfig struct {
	MaxSize   int `toml:"max_size"`
	MinLength int `toml:"min_length"`
}

// SearchConfig configures the query path.
type SearchConfig struct {
	DefaultLimit int `toml:"default_limit"`
}

// WatchConfig configures the filesystem watch mode.
type WatchConfig struct {
	Debounce Duration `toml:"debounce"`
}

// DefaultDir returns the scandex home directory (~/.scandex).
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".scandex"), nil
}

// Load reads configuration from the given TOML file. An empty path means
// ~/.scandex/config.toml; a missing file yields defaults. Credentials come
// from the environment, falling back to the .env file next to the config
// file; a non-empty environment variable always wins.
func Load(path string) (*Config, error) {
	if path == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "config.toml")
	}

	cfg := defaults()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	fillDefaults(cfg)

	// The .env file is read explicitly rather than loaded into the process
	// environment: godotenv.Load never overrides variables that are already
	// present, and an empty-exported variable counts as present.
	env, _ := godotenv.Read(filepath.Join(filepath.Dir(path), ".env"))
	cfg.OCR.APIKey = credential(EnvMistralKey, env)
	cfg.Embedding.APIKey = credential(EnvOpenRouterKey, env)

	return cfg, nil
}

// credential resolves one API key: a non-empty environment variable wins,
// otherwise the .env entry applies.
func credential(name string, env map[string]string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return env[name]
}

func defaults() *Config {
	return &Config{
		OCR: OCRConfig{
			Model: DefaultOCRModel,
		},
		Embedding: EmbeddingConfig{
			Model:      DefaultEmbeddingModel,
			BatchSize:  DefaultBatchSize,
			BatchDelay: Duration(DefaultBatchDelay),
		},
		Chunking: ChunkingConfig{
			MaxSize:   DefaultChunkSize,
			MinLength: DefaultChunkMinLength,
		},
		Search: SearchConfig{
			DefaultLimit: DefaultSearchLimit,
		},
		Watch: WatchConfig{
			Debounce: Duration(DefaultWatchDebounce),
		},
	}
}

// fillDefaults repairs zero values left by a sparse TOML file.
func fillDefaults(cfg *Config) {
	if cfg.OCR.Model == "" {
		cfg.OCR.Model = DefaultOCRModel
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = DefaultEmbeddingModel
	}
	if cfg.Embedding.BatchSize <= 0 {
		cfg.Embedding.BatchSize = DefaultBatchSize
	}
	if cfg.Embedding.BatchDelay <= 0 {
		cfg.Embedding.BatchDelay = Duration(DefaultBatchDelay)
	}
	if cfg.Chunking.MaxSize <= 0 {
		cfg.Chunking.MaxSize = DefaultChunkSize
	}
	if cfg.Chunking.MinLength < 0 {
		cfg.Chunking.MinLength = DefaultChunkMinLength
	}
	if cfg.Search.DefaultLimit <= 0 {
		cfg.Search.DefaultLimit = DefaultSearchLimit
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = Duration(DefaultWatchDebounce)
	}
}

// ValidateOCR checks everything the OCR stage needs before any work starts.
func (c *Config) ValidateOCR() error {
	if c.OCR.APIKey == "" {
		return fmt.Errorf("%s is not set", EnvMistralKey)
	}
	if c.PDFDir == "" {
		return fmt.Errorf("pdf_dir is not configured")
	}
	if _, err := os.Stat(c.PDFDir); err != nil {
		return fmt.Errorf("pdf directory not found: %s", c.PDFDir)
	}
	if c.MarkdownDir == "" {
		return fmt.Errorf("markdown_dir is not configured")
	}
	return nil
}

// ValidateEmbed checks everything the embedding stage needs before any work
// starts.
func (c *Config) ValidateEmbed() error {
	if c.Embedding.APIKey == "" {
		return fmt.Errorf("%s is not set", EnvOpenRouterKey)
	}
	if c.MarkdownDir == "" {
		return fmt.Errorf("markdown_dir is not configured")
	}
	if _, err := os.Stat(c.MarkdownDir); err != nil {
		return fmt.Errorf("markdown directory not found: %s", c.MarkdownDir)
	}
	return nil
}

// ValidateSearch checks everything the query path needs.
func (c *Config) ValidateSearch() error {
	if c.Embedding.APIKey == "" {
		return fmt.Errorf("%s is not set", EnvOpenRouterKey)
	}
	return nil
}

// WriteKey stores an API key in the .env file inside dir, creating or
// updating the entry in place. File mode is 0600; keys never touch the TOML
// file.
func WriteKey(dir, name, value string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(dir, ".env")
	entries := map[string]string{}

	if existing, err := godotenv.Read(path); err == nil {
		entries = existing
	}
	entries[name] = value

	var b strings.Builder
	for k, v := range entries {
		fmt.Fprintf(&b, "%s=%s\n", k, v)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("writing env file: %w", err)
	}
	return nil
}
