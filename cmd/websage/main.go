package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"websage/internal/types"
	"websage/pkg/config"
	"websage/pkg/extractor"
	"websage/pkg/llm"
	"websage/pkg/processor"
	"websage/pkg/session"
)

type Config struct {
	Provider     string
	Model        string
	EmbedModel   string
	Method       string
	ChunkSize    int
	ChunkOverlap int
	TopK         int
	RateLimit    float64
	MaxTokens    int
	Temperature  float64
	TimeoutSecs  int
}

func main() {
	config := parseFlags()

	if err := run(config); err != nil {
		log.Fatal(err)
	}
}

func parseFlags() Config {
	var cli Config
	var configPath string

	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&cli.Provider, "provider", "", "LLM provider (openai or azure)")
	flag.StringVar(&cli.Model, "model", "", "Chat model to use")
	flag.StringVar(&cli.EmbedModel, "embedding-model", "", "Embedding model to use")
	flag.StringVar(&cli.Method, "method", "", "Extraction method (loader, markup or auto)")
	flag.IntVar(&cli.ChunkSize, "chunk-size", 0, "Size of text chunks")
	flag.IntVar(&cli.ChunkOverlap, "chunk-overlap", 0, "Overlap between consecutive chunks")
	flag.IntVar(&cli.TopK, "top-k", 0, "Number of chunks retrieved per question")
	flag.Float64Var(&cli.RateLimit, "rate-limit", 0, "Rate limit for page fetching")
	flag.IntVar(&cli.MaxTokens, "max-tokens", 0, "Maximum tokens for LLM response")
	flag.Float64Var(&cli.Temperature, "temperature", 0, "Set the LLM temperature")
	flag.IntVar(&cli.TimeoutSecs, "timeout", 0, "Page fetch timeout in seconds")
	flag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Flags override the config file; zero values mean "not set".
	if cli.Provider == "" {
		cli.Provider = cfg.LLM.Provider
	}
	if cli.Model == "" {
		cli.Model = cfg.LLM.Model
	}
	if cli.EmbedModel == "" {
		cli.EmbedModel = cfg.Embedding.Model
	}
	if cli.Method == "" {
		cli.Method = cfg.Extractor.Method
	}
	if cli.ChunkSize == 0 {
		cli.ChunkSize = cfg.Processor.ChunkSize
	}
	if cli.ChunkOverlap == 0 {
		cli.ChunkOverlap = cfg.Processor.ChunkOverlap
	}
	if cli.TopK == 0 {
		cli.TopK = cfg.Retrieval.TopK
	}
	if cli.RateLimit == 0 {
		cli.RateLimit = cfg.Extractor.RateLimit
	}
	if cli.MaxTokens == 0 {
		cli.MaxTokens = cfg.LLM.MaxTokens
	}
	if cli.Temperature == 0 {
		cli.Temperature = cfg.LLM.Temperature
	}
	if cli.TimeoutSecs == 0 {
		cli.TimeoutSecs = cfg.Extractor.TimeoutSecs
	}

	return cli
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func run(cli Config) error {
	provider, err := llm.ParseProvider(cli.Provider)
	if err != nil {
		return err
	}

	method, err := types.ParseMethod(cli.Method)
	if err != nil {
		return err
	}

	creds := config.CredentialsFromEnv()
	client, err := llm.NewClient(llm.ClientConfig{
		Provider:       provider,
		Model:          cli.Model,
		EmbeddingModel: cli.EmbedModel,
	}, creds)
	if err != nil {
		return fmt.Errorf("failed to initialize llm client: %w", err)
	}

	embedder, err := llm.NewEmbedderWithConfig(client, llm.EmbedderConfig{
		Provider: provider,
		Model:    cli.EmbedModel,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize embedder: %w", err)
	}

	synthesizer := llm.NewSynthesizerWithConfig(client, llm.SynthesizerConfig{
		Provider:    provider,
		Model:       cli.Model,
		MaxTokens:   cli.MaxTokens,
		Temperature: cli.Temperature,
	})

	proc, err := processor.NewWithConfig(processor.ProcessorConfig{
		ChunkSize:    cli.ChunkSize,
		ChunkOverlap: cli.ChunkOverlap,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize processor: %w", err)
	}

	orchestrator := extractor.NewWithConfig(extractor.OrchestratorConfig{
		Timeout:   time.Duration(cli.TimeoutSecs) * time.Second,
		RateLimit: cli.RateLimit,
	})

	sess := session.New(orchestrator, proc, embedder, synthesizer, cli.TopK)

	// Interactive loop: paste URLs to (re)build the knowledge base, ask
	// anything else as a question.
	color.Cyan("\nAsk questions about any web page (paste URLs to load, 'exit' to quit)")

	scanner := bufio.NewScanner(os.Stdin)
	userPrompt := color.New(color.FgGreen).PrintfFunc()
	assistantPrompt := color.New(color.FgCyan).PrintfFunc()
	urlRegex := regexp.MustCompile(`https?://[^\s]+|www\.[^\s]+`)

	for {
		userPrompt("\nYou: ")
		if !scanner.Scan() {
			break
		}

		input := scanner.Text()
		if strings.ToLower(strings.TrimSpace(input)) == "exit" {
			break
		}

		if urls := urlRegex.FindAllString(input, -1); len(urls) > 0 {
			ingest(sess, urls, method)
			continue
		}

		if strings.TrimSpace(input) == "" {
			continue
		}

		spinner := getSpinner(" Thinking...")
		result, err := sess.Ask(context.Background(), input)
		spinner.Finish()
		fmt.Print("\r")

		if err != nil {
			color.Red("Error: %v\n", err)
			continue
		}

		assistantPrompt("\nAssistant: %s\n", result.AnswerText)

		if len(result.Citations) > 0 {
			color.Blue("\nSources:")
			for _, citation := range result.Citations {
				color.Blue("  %s", citation.SourceURL)
			}
		}
	}

	return nil
}

func ingest(sess *session.Session, urls []string, method types.Method) {
	color.Blue("\nLoading %d page(s)...", len(urls))

	spinner := getSpinner(" Building knowledge base...")
	stats, failures, err := sess.Ingest(context.Background(), urls, method)
	spinner.Finish()
	fmt.Print("\r")

	for _, failure := range failures {
		color.Red("✗ %s: %v", failure.URL, failure.Err)
	}

	if err != nil {
		color.Red("Failed to build knowledge base: %v\n", err)
		return
	}

	color.Green("✓ Loaded %d page(s) into %d chunks\n", stats.Documents, stats.Chunks)
}
