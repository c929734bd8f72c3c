// Package main is the Tenin CLI entry point.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hyperjump/tenin/internal/assistant"
	"github.com/hyperjump/tenin/internal/chat"
	"github.com/hyperjump/tenin/internal/cli"
	"github.com/hyperjump/tenin/internal/config"
	"github.com/hyperjump/tenin/internal/corpus"
	"github.com/hyperjump/tenin/internal/embedding"
	"github.com/hyperjump/tenin/internal/llm"
	"github.com/hyperjump/tenin/internal/retrieval"
	"github.com/hyperjump/tenin/internal/server"
	"github.com/hyperjump/tenin/internal/watcher"
	"github.com/hyperjump/tenin/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/tenin/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used instead. Returns the config and the path actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// API keys usually live in a local .env during development.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "chat":
		runChat()
	case "load":
		runLoad()
	case "watch":
		runWatch()
	case "version", "--version", "-v":
		fmt.Printf("tenin version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`Usage: tenin <command> [flags]

Commands:
  server    Run the HTTP API (chat streaming, transcripts, admin)
  chat      Talk to the assistant in the terminal
  load      Load the product catalog, embed it, and build the indices
  watch     Watch the catalog directory and reload on changes
  version   Print the version

Run "tenin <command> -h" for command flags.
`)
}

// components bundles everything a command may need. Fields not built for a
// given command stay nil.
type components struct {
	Chats     chat.Store
	Catalog   *corpus.MemoryStore
	Keywords  *corpus.KeywordIndex
	Embedder  embedding.Embedder
	Generator llm.Generator
	Engine    *retrieval.Engine
	Loop      *assistant.Loop
}

func (c *components) Close() {
	if c.Generator != nil {
		_ = c.Generator.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Keywords != nil {
		_ = c.Keywords.Close()
	}
	if c.Chats != nil {
		_ = c.Chats.Close()
	}
}

type initOptions struct {
	mockEmbedder  bool
	needGenerator bool
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, opts initOptions) (*components, error) {
	c := &components{Catalog: corpus.NewMemoryStore()}

	chats, err := chat.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open chat store: %w", err)
	}
	c.Chats = chats

	keywords, err := corpus.NewKeywordIndex(cfg.Storage.KeywordIndexPath)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("open keyword index: %w", err)
	}
	c.Keywords = keywords

	if opts.mockEmbedder {
		c.Embedder = embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	} else {
		remote, err := embedding.NewOpenAIEmbedder(embedding.OpenAIConfig{
			BaseURL:    cfg.Embedding.BaseURL,
			APIKeyEnv:  cfg.Embedding.APIKeyEnv,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Timeout:    time.Duration(cfg.Embedding.TimeoutSeconds) * time.Second,
		})
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("create embedder: %w", err)
		}
		c.Embedder = embedding.NewCachedEmbedder(remote, cfg.Embedding.CacheSize)
	}

	if opts.needGenerator {
		generator, err := llm.NewOpenAIGenerator(llm.OpenAIConfig{
			BaseURL:     cfg.Generation.BaseURL,
			APIKeyEnv:   cfg.Generation.APIKeyEnv,
			Model:       cfg.Generation.Model,
			Temperature: cfg.Generation.Temperature,
			MaxTokens:   cfg.Generation.MaxTokens,
			Timeout:     time.Duration(cfg.Generation.TimeoutSeconds) * time.Second,
		})
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("create generator: %w", err)
		}
		c.Generator = generator
	}

	c.Engine = retrieval.NewEngine(c.Catalog, c.Keywords, c.Embedder, &cfg.Retrieval, logger)
	if c.Generator != nil {
		c.Loop = assistant.NewLoop(c.Engine, c.Generator, c.Chats, &cfg.Assistant, logger)
	}
	return c, nil
}

// loadCatalog reads the catalog directory into the in-memory corpus, reuses
// snapshotted embeddings where possible, embeds the rest, and rebuilds the
// keyword index.
func loadCatalog(ctx context.Context, cfg *config.Config, c *components, logger *zap.Logger) error {
	products, err := corpus.LoadCatalogDir(cfg.Storage.CatalogDir)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	c.Catalog.Replace(products)

	reused, err := c.Catalog.LoadSnapshot(cfg.Storage.SnapshotPath)
	if err != nil {
		logger.Warn("embedding snapshot unreadable, re-embedding", zap.Error(err))
	}
	if err := corpus.EmbedProducts(ctx, c.Embedder, products); err != nil {
		return err
	}
	if err := c.Catalog.SaveSnapshot(cfg.Storage.SnapshotPath); err != nil {
		logger.Warn("embedding snapshot save failed", zap.Error(err))
	}
	if err := c.Keywords.IndexAll(ctx, products); err != nil {
		return fmt.Errorf("build keyword index: %w", err)
	}

	logger.Info("catalog loaded",
		zap.Int("products", len(products)),
		zap.Int("embeddings_reused", reused))
	return nil
}

func newLogger(cfg *config.Config, debugFlag bool) *zap.Logger {
	logger, err := utils.NewLogger(cfg.Debug || debugFlag)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg, *debug)
	defer logger.Sync()
	logger.Info("config loaded", zap.String("config_path", resolvedPath))

	c, err := initializeComponents(cfg, logger, initOptions{needGenerator: true})
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer c.Close()

	ctx := context.Background()
	if err := loadCatalog(ctx, cfg, c, logger); err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}

	var watch *watcher.CatalogWatcher
	if cfg.Watch.Enabled {
		watch = watcher.NewCatalogWatcher(
			cfg.Storage.CatalogDir,
			time.Duration(cfg.Watch.DebounceSeconds)*time.Second,
			func() {
				if err := loadCatalog(context.Background(), cfg, c, logger); err != nil {
					logger.Error("catalog reload failed", zap.Error(err))
				}
			},
			logger,
		)
		watchCtx, watchCancel := context.WithCancel(ctx)
		defer watchCancel()
		if err := watch.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start catalog watcher", zap.Error(err))
		}
		defer watch.Stop()
	}

	srv := server.NewServer(c.Loop, c.Chats, c.Catalog, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(shutdownCtx)
}

func runChat() {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	chatID := fs.String("chat", "", "resume an existing chat ID")
	output := fs.String("output", "text", "format for /history: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseFormat(*output)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg, *debug)
	defer logger.Sync()

	c, err := initializeComponents(cfg, logger, initOptions{needGenerator: true})
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer c.Close()

	ctx := context.Background()
	if err := loadCatalog(ctx, cfg, c, logger); err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}

	id := *chatID
	if id == "" {
		id = uuid.NewString()[:8]
		if err := c.Chats.CreateChat(ctx, id); err != nil {
			logger.Fatal("Failed to create chat", zap.Error(err))
		}
	}
	fmt.Printf("Chat %s (%d products loaded). Type /history, /quit.\n", id, c.Catalog.Count())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			return
		case line == "/history":
			msgs, err := c.Chats.ReadMessages(ctx, id, 0)
			if err != nil {
				fmt.Printf("history: %v\n", err)
				continue
			}
			_ = cli.WriteTranscript(os.Stdout, id, msgs, format)
			continue
		}

		stream := c.Loop.Run(ctx, id, line)
		fmt.Print("assistant> ")
		for ev := range stream.Events() {
			switch ev.Type {
			case assistant.EventContent:
				fmt.Print(ev.Data)
			case assistant.EventError:
				fmt.Printf("\n[error] %s", ev.Data)
			}
		}
		fmt.Println()
	}
}

func runLoad() {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	mock := fs.Bool("mock-embedder", false, "use the deterministic offline embedder")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg, *debug)
	defer logger.Sync()

	c, err := initializeComponents(cfg, logger, initOptions{mockEmbedder: *mock})
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer c.Close()

	if err := loadCatalog(context.Background(), cfg, c, logger); err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}
	docs, _ := c.Keywords.DocCount()
	fmt.Printf("Loaded %d products, %d keyword documents.\n", c.Catalog.Count(), docs)
}

func runWatch() {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	mock := fs.Bool("mock-embedder", false, "use the deterministic offline embedder")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg, *debug)
	defer logger.Sync()

	c, err := initializeComponents(cfg, logger, initOptions{mockEmbedder: *mock})
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer c.Close()

	ctx := context.Background()
	if err := loadCatalog(ctx, cfg, c, logger); err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}

	watch := watcher.NewCatalogWatcher(
		cfg.Storage.CatalogDir,
		time.Duration(cfg.Watch.DebounceSeconds)*time.Second,
		func() {
			if err := loadCatalog(context.Background(), cfg, c, logger); err != nil {
				logger.Error("catalog reload failed", zap.Error(err))
			}
		},
		logger,
	)
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := watch.Start(watchCtx); err != nil {
		logger.Fatal("Failed to start catalog watcher", zap.Error(err))
	}
	defer watch.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Info("Stopping watch...")
}
