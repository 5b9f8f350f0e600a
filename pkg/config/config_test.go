package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configData := `
llm:
  provider: "azure"
  model: "gpt-4"
  max_tokens: 1000
  temperature: 0.5

embedding:
  model: "text-embedding-3-large"
  batch_size: 16

extractor:
  method: "markup"
  timeout_secs: 10
  rate_limit: 1.5

processor:
  chunk_size: 500
  chunk_overlap: 100

retrieval:
  top_k: 6
`
	err := os.WriteFile(configPath, []byte(configData), 0644)
	require.NoError(t, err)

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "azure", config.LLM.Provider)
	assert.Equal(t, "gpt-4", config.LLM.Model)
	assert.Equal(t, 1000, config.LLM.MaxTokens)
	assert.Equal(t, 0.5, config.LLM.Temperature)
	assert.Equal(t, "text-embedding-3-large", config.Embedding.Model)
	assert.Equal(t, 16, config.Embedding.BatchSize)
	assert.Equal(t, "markup", config.Extractor.Method)
	assert.Equal(t, 500, config.Processor.ChunkSize)
	assert.Equal(t, 6, config.Retrieval.TopK)

	// Unset values fall back to defaults.
	assert.Equal(t, 30, config.Embedding.TimeoutSecs)
	assert.Equal(t, 3, config.Embedding.MaxRetries)
}

func TestDefaultConfig(t *testing.T) {
	config, err := getDefaultConfig()
	require.NoError(t, err)

	assert.Equal(t, "openai", config.LLM.Provider)
	assert.Equal(t, "gpt-3.5-turbo", config.LLM.Model)
	assert.Equal(t, "text-embedding-3-small", config.Embedding.Model)
	assert.Equal(t, "auto", config.Extractor.Method)
	assert.Equal(t, 1000, config.Processor.ChunkSize)
	assert.Equal(t, 200, config.Processor.ChunkOverlap)
	assert.Equal(t, 4, config.Retrieval.TopK)
	assert.Empty(t, config.Validate())
}

func TestExplicitZeroOverlapSurvives(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configData := `
processor:
  chunk_size: 500
  chunk_overlap: 0
`
	err := os.WriteFile(configPath, []byte(configData), 0644)
	require.NoError(t, err)

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, 500, config.Processor.ChunkSize)
	assert.Equal(t, 0, config.Processor.ChunkOverlap)
	assert.Empty(t, config.Validate())
}

func TestConfigValidation(t *testing.T) {
	config, err := getDefaultConfig()
	require.NoError(t, err)

	config.LLM.Provider = "anthropic"
	config.LLM.MaxTokens = 5000
	config.LLM.Temperature = 3.0
	config.Extractor.Method = "crawler"
	config.Processor.ChunkOverlap = config.Processor.ChunkSize

	errors := config.Validate()
	require.Len(t, errors, 5)

	messages := make([]string, 0, len(errors))
	for _, e := range errors {
		messages = append(messages, e.Error())
	}
	assert.Contains(t, messages[0], "llm.provider")
	assert.Contains(t, messages[1], "max_tokens must be between 1 and 4096")
	assert.Contains(t, messages[2], "temperature must be between 0 and 2")
	assert.Contains(t, messages[3], "extractor.method")
	assert.Contains(t, messages[4], "chunk_overlap must be non-negative and less than chunk_size")
}

func TestEnvironmentOverrides(t *testing.T) {
	os.Setenv("WEBSAGE_LLM_PROVIDER", "azure")
	os.Setenv("WEBSAGE_EMBEDDING_MODEL", "env-embedding-model")
	defer func() {
		os.Unsetenv("WEBSAGE_LLM_PROVIDER")
		os.Unsetenv("WEBSAGE_EMBEDDING_MODEL")
	}()

	config := &Config{}
	mergeWithEnv(config)

	assert.Equal(t, "azure", config.LLM.Provider)
	assert.Equal(t, "env-embedding-model", config.Embedding.Model)
}

func TestCredentialsForProvider(t *testing.T) {
	tests := []struct {
		name     string
		creds    Credentials
		provider string
		missing  []string
	}{
		{
			name:     "openai with key",
			creds:    Credentials{OpenAIKey: "sk-test"},
			provider: "openai",
		},
		{
			name:     "openai without key",
			creds:    Credentials{},
			provider: "openai",
			missing:  []string{"OPENAI_API_KEY"},
		},
		{
			name: "azure complete",
			creds: Credentials{
				AzureKey:        "key",
				AzureEndpoint:   "https://test.openai.azure.com/",
				AzureDeployment: "gpt-4",
			},
			provider: "azure",
		},
		{
			name:     "azure missing endpoint and deployment",
			creds:    Credentials{AzureKey: "key"},
			provider: "azure",
			missing:  []string{"AZURE_OPENAI_ENDPOINT", "AZURE_OPENAI_DEPLOYMENT_NAME"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.creds.ForProvider(tt.provider)
			if len(tt.missing) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			cfgErr, ok := err.(*ConfigurationError)
			require.True(t, ok)
			assert.Equal(t, tt.provider, cfgErr.Provider)
			assert.Equal(t, tt.missing, cfgErr.Missing)
		})
	}
}
