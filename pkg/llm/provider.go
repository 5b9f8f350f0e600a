package llm

import (
	"fmt"

	"github.com/tmc/langchaingo/llms/openai"

	"websage/pkg/config"
)

// Provider selects the language-model backend. It is chosen once at
// configuration time; nothing downstream branches on it.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderAzure  Provider = "azure"
)

func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderOpenAI, ProviderAzure:
		return Provider(s), nil
	case "":
		return ProviderOpenAI, nil
	}
	return "", fmt.Errorf("unknown llm provider %q (want openai or azure)", s)
}

// ClientConfig configures the shared chat+embedding client.
type ClientConfig struct {
	Provider       Provider
	Model          string
	EmbeddingModel string
}

// NewClient builds the provider client. Credentials are validated before
// construction, so a missing key fails here with a ConfigurationError
// rather than on the first remote call.
func NewClient(cfg ClientConfig, creds config.Credentials) (*openai.LLM, error) {
	if err := creds.ForProvider(string(cfg.Provider)); err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		return openai.New(
			openai.WithToken(creds.OpenAIKey),
			openai.WithModel(cfg.Model),
			openai.WithEmbeddingModel(cfg.EmbeddingModel),
		)
	case ProviderAzure:
		opts := []openai.Option{
			openai.WithAPIType(openai.APITypeAzure),
			openai.WithToken(creds.AzureKey),
			openai.WithBaseURL(creds.AzureEndpoint),
			openai.WithModel(creds.AzureDeployment),
			openai.WithEmbeddingModel(cfg.EmbeddingModel),
		}
		if creds.AzureAPIVersion != "" {
			opts = append(opts, openai.WithAPIVersion(creds.AzureAPIVersion))
		}
		return openai.New(opts...)
	}

	return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
}
