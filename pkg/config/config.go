package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM struct {
		Provider    string  `yaml:"provider"`
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float64 `yaml:"temperature"`
	} `yaml:"llm"`

	Embedding struct {
		Model       string `yaml:"model"`
		BatchSize   int    `yaml:"batch_size"`
		TimeoutSecs int    `yaml:"timeout_secs"`
		MaxRetries  int    `yaml:"max_retries"`
	} `yaml:"embedding"`

	Extractor struct {
		Method      string  `yaml:"method"`
		TimeoutSecs int     `yaml:"timeout_secs"`
		RateLimit   float64 `yaml:"rate_limit"`
	} `yaml:"extractor"`

	Processor struct {
		ChunkSize    int `yaml:"chunk_size"`
		ChunkOverlap int `yaml:"chunk_overlap"`
	} `yaml:"processor"`

	Retrieval struct {
		TopK int `yaml:"top_k"`
	} `yaml:"retrieval"`
}

func LoadConfig(path string) (*Config, error) {
	// Pick up a .env file if present, before reading any env vars.
	_ = godotenv.Load()

	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/websage/config.yaml"),
			"/etc/websage/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	applyDefaults(config)
	mergeWithEnv(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.LLM.Provider == "" {
		config.LLM.Provider = "openai"
	}
	if config.LLM.Model == "" {
		config.LLM.Model = "gpt-3.5-turbo"
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 2000
	}

	if config.Embedding.Model == "" {
		config.Embedding.Model = "text-embedding-3-small"
	}
	if config.Embedding.BatchSize == 0 {
		config.Embedding.BatchSize = 32
	}
	if config.Embedding.TimeoutSecs == 0 {
		config.Embedding.TimeoutSecs = 30
	}
	if config.Embedding.MaxRetries == 0 {
		config.Embedding.MaxRetries = 3
	}

	if config.Extractor.Method == "" {
		config.Extractor.Method = "auto"
	}
	if config.Extractor.TimeoutSecs == 0 {
		config.Extractor.TimeoutSecs = 15
	}
	if config.Extractor.RateLimit == 0 {
		config.Extractor.RateLimit = 2.0
	}

	// Overlap defaults only alongside size: chunk_overlap: 0 with an
	// explicit chunk_size is a valid non-overlapping configuration.
	if config.Processor.ChunkSize == 0 {
		config.Processor.ChunkSize = 1000
		if config.Processor.ChunkOverlap == 0 {
			config.Processor.ChunkOverlap = 200
		}
	}

	if config.Retrieval.TopK == 0 {
		config.Retrieval.TopK = 4
	}
}

func mergeWithEnv(config *Config) {
	if provider := os.Getenv("WEBSAGE_LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = provider
	}
	if model := os.Getenv("WEBSAGE_LLM_MODEL"); model != "" {
		config.LLM.Model = model
	}
	if model := os.Getenv("WEBSAGE_EMBEDDING_MODEL"); model != "" {
		config.Embedding.Model = model
	}
}
