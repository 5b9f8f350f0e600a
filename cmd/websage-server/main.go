package main

import (
	"flag"
	"log"
	"os"
	"time"

	"websage/internal/types"
	"websage/pkg/config"
	"websage/pkg/extractor"
	"websage/pkg/llm"
	"websage/pkg/processor"
	"websage/pkg/session"
	"websage/server"
)

func main() {
	var configPath string
	var addr string

	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&addr, "addr", "", "Listen address (defaults to :$PORT or :8080)")
	flag.Parse()

	if addr == "" {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		addr = ":" + port
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			log.Printf("config: %v", e)
		}
		log.Fatal("invalid configuration")
	}

	provider, err := llm.ParseProvider(cfg.LLM.Provider)
	if err != nil {
		log.Fatal(err)
	}

	method, err := types.ParseMethod(cfg.Extractor.Method)
	if err != nil {
		log.Fatal(err)
	}

	creds := config.CredentialsFromEnv()
	client, err := llm.NewClient(llm.ClientConfig{
		Provider:       provider,
		Model:          cfg.LLM.Model,
		EmbeddingModel: cfg.Embedding.Model,
	}, creds)
	if err != nil {
		log.Fatalf("failed to initialize llm client: %v", err)
	}

	embedder, err := llm.NewEmbedderWithConfig(client, llm.EmbedderConfig{
		Provider:   provider,
		Model:      cfg.Embedding.Model,
		BatchSize:  cfg.Embedding.BatchSize,
		MaxRetries: cfg.Embedding.MaxRetries,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSecs) * time.Second,
	})
	if err != nil {
		log.Fatalf("failed to initialize embedder: %v", err)
	}

	synthesizer := llm.NewSynthesizerWithConfig(client, llm.SynthesizerConfig{
		Provider:    provider,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	})

	factory := func() *session.Session {
		// Sessions share the remote clients but nothing else. Each
		// gets its own processor so chunk IDs stay session-scoped.
		proc, err := processor.NewWithConfig(processor.ProcessorConfig{
			ChunkSize:    cfg.Processor.ChunkSize,
			ChunkOverlap: cfg.Processor.ChunkOverlap,
		})
		if err != nil {
			log.Fatalf("failed to initialize processor: %v", err)
		}

		orchestrator := extractor.NewWithConfig(extractor.OrchestratorConfig{
			Timeout:   time.Duration(cfg.Extractor.TimeoutSecs) * time.Second,
			RateLimit: cfg.Extractor.RateLimit,
		})

		return session.New(orchestrator, proc, embedder, synthesizer, cfg.Retrieval.TopK)
	}

	ws := server.NewWSServer(factory, method)
	if err := ws.Serve(addr); err != nil {
		log.Fatal(err)
	}
}
