package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	t.Setenv(EnvMistralKey, "")
	t.Setenv(EnvOpenRouterKey, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultOCRModel, cfg.OCR.Model)
	assert.Equal(t, DefaultEmbeddingModel, cfg.Embedding.Model)
	assert.Equal(t, DefaultBatchSize, cfg.Embedding.BatchSize)
	assert.Equal(t, DefaultBatchDelay, cfg.Embedding.BatchDelay.Std())
	assert.Equal(t, DefaultWatchDebounce, cfg.Watch.Debounce.Std())
	assert.Equal(t, DefaultChunkSize, cfg.Chunking.MaxSize)
	assert.Equal(t, DefaultChunkMinLength, cfg.Chunking.MinLength)
	assert.Equal(t, DefaultSearchLimit, cfg.Search.DefaultLimit)
}

func TestLoad_ReadsTOML(t *testing.T) {
	t.Setenv(EnvMistralKey, "")
	t.Setenv(EnvOpenRouterKey, "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
pdf_dir = "/corpus/pdfs"
markdown_dir = "/corpus/mds"

[embedding]
model = "custom/embed-model"
batch_size = 5
batch_delay = "500ms"

[chunking]
max_size = 800
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/corpus/pdfs", cfg.PDFDir)
	assert.Equal(t, "/corpus/mds", cfg.MarkdownDir)
	assert.Equal(t, "custom/embed-model", cfg.Embedding.Model)
	assert.Equal(t, 5, cfg.Embedding.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Embedding.BatchDelay.Std())
	assert.Equal(t, 800, cfg.Chunking.MaxSize)
	// Untouched sections keep their defaults.
	assert.Equal(t, DefaultOCRModel, cfg.OCR.Model)
	assert.Equal(t, DefaultChunkMinLength, cfg.Chunking.MinLength)
}

func TestLoad_RejectsMalformedDuration(t *testing.T) {
	t.Setenv(EnvMistralKey, "")
	t.Setenv(EnvOpenRouterKey, "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[watch]
debounce = "soon"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "soon")
}

func TestDuration_RoundTrip(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Std())

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))

	assert.Error(t, d.UnmarshalText([]byte("fast")))
}

func TestLoad_KeysComeFromEnvFile(t *testing.T) {
	t.Setenv(EnvMistralKey, "")
	t.Setenv(EnvOpenRouterKey, "")

	dir := t.TempDir()
	envContent := EnvMistralKey + "=mk-123\n" + EnvOpenRouterKey + "=ok-456\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(envContent), 0600))

	cfg, err := Load(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)

	assert.Equal(t, "mk-123", cfg.OCR.APIKey)
	assert.Equal(t, "ok-456", cfg.Embedding.APIKey)
}

func TestLoad_EnvironmentBeatsEnvFile(t *testing.T) {
	t.Setenv(EnvMistralKey, "env-wins")
	t.Setenv(EnvOpenRouterKey, "")

	dir := t.TempDir()
	envContent := EnvMistralKey + "=file-loses\n" + EnvOpenRouterKey + "=file-fills\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(envContent), 0600))

	cfg, err := Load(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)

	assert.Equal(t, "env-wins", cfg.OCR.APIKey)
	// An empty-exported variable does not shadow the .env entry.
	assert.Equal(t, "file-fills", cfg.Embedding.APIKey)
}

func TestValidateOCR(t *testing.T) {
	dir := t.TempDir()

	cfg := defaults()
	cfg.PDFDir = dir
	cfg.MarkdownDir = filepath.Join(dir, "mds")

	t.Run("missing API key", func(t *testing.T) {
		err := cfg.ValidateOCR()
		require.Error(t, err)
		assert.Contains(t, err.Error(), EnvMistralKey)
	})

	t.Run("missing pdf dir", func(t *testing.T) {
		c := defaults()
		c.OCR.APIKey = "key"
		c.PDFDir = filepath.Join(dir, "nope")
		c.MarkdownDir = dir
		assert.Error(t, c.ValidateOCR())
	})

	t.Run("valid", func(t *testing.T) {
		cfg.OCR.APIKey = "key"
		assert.NoError(t, cfg.ValidateOCR())
	})
}

func TestValidateEmbed(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing API key", func(t *testing.T) {
		c := defaults()
		c.MarkdownDir = dir
		err := c.ValidateEmbed()
		require.Error(t, err)
		assert.Contains(t, err.Error(), EnvOpenRouterKey)
	})

	t.Run("valid", func(t *testing.T) {
		c := defaults()
		c.Embedding.APIKey = "key"
		c.MarkdownDir = dir
		assert.NoError(t, c.ValidateEmbed())
	})
}

func TestWriteKey(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, WriteKey(dir, EnvMistralKey, "first"))
	require.NoError(t, WriteKey(dir, EnvOpenRouterKey, "second"))
	// Updating an existing key must not duplicate it.
	require.NoError(t, WriteKey(dir, EnvMistralKey, "updated"))

	data, err := os.ReadFile(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.Contains(t, string(data), EnvMistralKey+"=updated")
	assert.Contains(t, string(data), EnvOpenRouterKey+"=second")
	assert.NotContains(t, string(data), "first")

	info, err := os.Stat(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
