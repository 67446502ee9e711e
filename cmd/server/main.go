package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"stockgenius/internal/api"
	"stockgenius/internal/config"
	"stockgenius/internal/logging"
	"stockgenius/internal/trace"
	"stockgenius/pkg/stockgenius"
)

var version = "dev"

var getppid = os.Getppid
var sleep = time.Sleep
var exit = os.Exit

type flags struct {
	configPath string
	dataDir    string
	host       string
	port       int
	set        map[string]bool
}

func parseFlags(args []string, output io.Writer) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("stockgenius", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&f.configPath, "config", "", "Path to the YAML config file (default $CONFIG_PATH or configs/config.yaml)")
	fs.StringVar(&f.dataDir, "data-dir", "", "Directory for logs and the advice journal")
	fs.StringVar(&f.host, "host", "", "Host to bind the server to (overrides config)")
	fs.IntVar(&f.port, "port", 0, "Port to run the server on (overrides config)")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	f.set = map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, os.Args[1:], nil); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		slog.Error("server exited", "err", err)
		exit(1)
	}
}

// run starts the API server and blocks until ctx is cancelled. ready, when non-nil, receives
// the bound address once the listener is open.
func run(ctx context.Context, args []string, ready chan<- string) error {
	f, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	config.LoadDotEnv()
	cfg, err := config.Load(config.ResolvePath(f.configPath))
	if err != nil {
		return err
	}
	if f.set["host"] {
		cfg.Server.Host = f.host
	}
	if f.set["port"] {
		cfg.Server.Port = f.port
	}
	if f.dataDir != "" {
		config.SetRuntimeDataDir(f.dataDir)
	}

	dataDir, err := config.GetDataDir()
	if err != nil {
		return fmt.Errorf("resolve data directory: %w", err)
	}
	logger, writer, err := logging.NewLogger(cfg.ResolveLogDir(dataDir), logging.ParseLevel(cfg.Log.Level, slog.LevelInfo))
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			logger.Error("failed to close log writer", "err", err)
		}
	}()

	if cfg.MarketData.Provider == config.MarketAlphaVantage && cfg.MarketData.APIKey == "" {
		logger.Warn("ALPHAVANTAGE_API_KEY not set; serving the offline sample dataset")
		cfg.MarketData.Provider = config.MarketStatic
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := trace.Init(trace.Options{Enabled: cfg.Tracing.Enabled, Version: version}); err != nil {
		logger.Warn("tracing disabled", "err", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := trace.Shutdown(shutdownCtx); err != nil {
			logger.Error("trace shutdown failed", "err", err)
		}
	}()

	core, err := buildCore(ctx, cfg, dataDir, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := core.Close(); err != nil {
			logger.Error("failed to close core", "err", err)
		}
	}()

	if os.Getenv("STOCKGENIUS_PARENT_WATCH") == "1" {
		go watchParent(logger)
	}

	handler := api.NewRouter(core, api.Options{
		Logger:         logger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Version:        version,
	})
	handler = middleware.Compress(5)(handler)

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.LLMTimeout() + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("server starting",
		"addr", listener.Addr().String(),
		"version", version,
		"market_data", core.MarketName(),
		"llm", core.LLMName(),
		"journal", core.JournalPath(),
		"tracing", trace.Enabled(),
	)
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(listener)
	}()
	if ready != nil {
		ready <- listener.Addr().String()
	}

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "err", err)
	}
	return nil
}

// buildCore constructs the collaborators named by the config. Without an LLM key the advisor
// endpoints report the provider as unavailable.
func buildCore(ctx context.Context, cfg *config.Config, dataDir string, logger *slog.Logger) (*stockgenius.Core, error) {
	var market stockgenius.MarketDataFetcher
	switch cfg.MarketData.Provider {
	case config.MarketStatic:
		market = stockgenius.NewStaticFetcher(stockgenius.SampleFundamentals()...)
	default:
		opts := []stockgenius.AlphaVantageOption{
			stockgenius.WithAlphaVantageTimeout(cfg.MarketTimeout()),
			stockgenius.WithAlphaVantageLogger(logger),
		}
		if cfg.MarketData.BaseURL != "" {
			opts = append(opts, stockgenius.WithAlphaVantageBaseURL(cfg.MarketData.BaseURL))
		}
		market = stockgenius.NewAlphaVantageFetcher(cfg.MarketData.APIKey, opts...)
	}

	var llm stockgenius.LLMProvider
	if cfg.LLMEnabled() {
		provider, err := stockgenius.NewLLMProvider(ctx, stockgenius.LLMConfig{
			Provider: cfg.LLM.Provider,
			APIKey:   cfg.LLM.APIKey,
			Model:    cfg.LLM.Model,
			BaseURL:  cfg.LLM.BaseURL,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("initialize llm provider: %w", err)
		}
		llm = provider
	} else {
		logger.Warn("no llm api key configured; advice endpoints disabled", "provider", cfg.LLM.Provider)
	}

	core, err := stockgenius.OpenWithOptions(stockgenius.Options{
		Logger:       logger,
		Market:       market,
		LLM:          llm,
		FetchTimeout: cfg.MarketTimeout(),
		LLMTimeout:   cfg.LLMTimeout(),
		FetchWorkers: cfg.MarketData.Workers,
		JournalPath:  cfg.ResolveJournalPath(dataDir),
	})
	if err != nil {
		return nil, fmt.Errorf("initialize core: %w", err)
	}
	return core, nil
}

func watchParent(logger *slog.Logger) {
	for {
		sleep(1 * time.Second)
		if getppid() == 1 {
			logger.Info("parent process exited; shutting down")
			exit(0)
		}
	}
}
