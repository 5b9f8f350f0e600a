package config

import (
	"fmt"
	"os"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConfigurationError reports missing or invalid credentials for the
// selected provider. It is returned before any network call is made.
type ConfigurationError struct {
	Provider string
	Missing  []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("provider %s is missing required configuration: %s",
		e.Provider, strings.Join(e.Missing, ", "))
}

// Credentials holds the opaque API credentials consumed by the LLM and
// embedding clients. Values never appear in error messages.
type Credentials struct {
	OpenAIKey       string
	AzureKey        string
	AzureEndpoint   string
	AzureDeployment string
	AzureAPIVersion string
}

// CredentialsFromEnv reads provider credentials from the environment.
func CredentialsFromEnv() Credentials {
	return Credentials{
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		AzureKey:        os.Getenv("AZURE_OPENAI_API_KEY"),
		AzureEndpoint:   os.Getenv("AZURE_OPENAI_ENDPOINT"),
		AzureDeployment: os.Getenv("AZURE_OPENAI_DEPLOYMENT_NAME"),
		AzureAPIVersion: os.Getenv("AZURE_OPENAI_API_VERSION"),
	}
}

// ForProvider checks that the credentials required by the selected
// provider are present.
func (c Credentials) ForProvider(provider string) error {
	var missing []string

	switch provider {
	case "openai":
		if c.OpenAIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	case "azure":
		if c.AzureKey == "" {
			missing = append(missing, "AZURE_OPENAI_API_KEY")
		}
		if c.AzureEndpoint == "" {
			missing = append(missing, "AZURE_OPENAI_ENDPOINT")
		}
		if c.AzureDeployment == "" {
			missing = append(missing, "AZURE_OPENAI_DEPLOYMENT_NAME")
		}
	default:
		return &ConfigurationError{Provider: provider, Missing: []string{"unknown provider"}}
	}

	if len(missing) > 0 {
		return &ConfigurationError{Provider: provider, Missing: missing}
	}
	return nil
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if c.LLM.Provider != "openai" && c.LLM.Provider != "azure" {
		errors = append(errors, ValidationError{
			Field:   "llm.provider",
			Message: fmt.Sprintf("provider must be openai or azure, got %q", c.LLM.Provider),
		})
	}

	if c.LLM.MaxTokens < 1 || c.LLM.MaxTokens > 4096 {
		errors = append(errors, ValidationError{
			Field:   "llm.max_tokens",
			Message: "max_tokens must be between 1 and 4096",
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "llm.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	if c.Embedding.Model == "" {
		errors = append(errors, ValidationError{
			Field:   "embedding.model",
			Message: "embedding model is required",
		})
	}

	if c.Embedding.BatchSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "embedding.batch_size",
			Message: "batch_size must be positive",
		})
	}

	if c.Extractor.Method != "loader" && c.Extractor.Method != "markup" && c.Extractor.Method != "auto" {
		errors = append(errors, ValidationError{
			Field:   "extractor.method",
			Message: fmt.Sprintf("method must be loader, markup or auto, got %q", c.Extractor.Method),
		})
	}

	if c.Extractor.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "extractor.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	if c.Processor.ChunkSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "processor.chunk_size",
			Message: "chunk_size must be positive",
		})
	}

	if c.Processor.ChunkOverlap < 0 || c.Processor.ChunkOverlap >= c.Processor.ChunkSize {
		errors = append(errors, ValidationError{
			Field:   "processor.chunk_overlap",
			Message: "chunk_overlap must be non-negative and less than chunk_size",
		})
	}

	if c.Retrieval.TopK < 1 {
		errors = append(errors, ValidationError{
			Field:   "retrieval.top_k",
			Message: "top_k must be positive",
		})
	}

	return errors
}
