package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"financegpt/internal/agent"
	"financegpt/internal/ai"
	"financegpt/internal/config"
	"financegpt/internal/logger"
	"financegpt/internal/market"
	alpacamkt "financegpt/internal/market/alpaca"
	"financegpt/internal/market/sim"
	"financegpt/internal/market/yahoo"
	"financegpt/internal/store"
)

const LogFile = "financegpt.log"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		dbPath     string
		provider   string
		configFile string
	)

	cmd := &cobra.Command{
		Use:   "financegpt",
		Short: "Conversational finance assistant with quote lookups and confirmed trading",
		Long: `FinanceGPT is an interactive finance assistant. It answers market
questions, tracks a portfolio and watchlist, and places simulated trades
behind an explicit confirmation step. Freeform questions are answered by a
local Ollama model.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if configFile != "" {
				if err := cfg.ApplyFile(configFile); err != nil {
					return fmt.Errorf("load config file: %w", err)
				}
			}
			if dbPath != "" {
				cfg.DBPath = dbPath
			}
			if provider != "" {
				cfg.MarketProvider = provider
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "path to the sqlite database (default financegpt.db)")
	cmd.Flags().StringVar(&provider, "provider", "", "market data provider: yahoo, alpaca or sim")
	cmd.Flags().StringVar(&configFile, "config", "", "YAML config file overlaying the environment")
	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	logger.Setup(LogFile, cfg.LogLevel, cfg.MaxLogSizeMB, cfg.MaxLogBackups)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Println("shutting down: signal received")
		cancel()
	}()

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}
	quotes := market.NewQuoteCache(provider,
		time.Duration(cfg.QuoteTTLSec)*time.Second,
		time.Duration(cfg.QuoteFetchDelayMs)*time.Millisecond)

	st, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	model := ai.NewClient(
		ai.WithBaseURL(cfg.OllamaBaseURL),
		ai.WithModel(cfg.OllamaModel),
		ai.WithTimeout(time.Duration(cfg.OllamaTimeout)*time.Second),
		ai.WithTemperature(cfg.Temperature),
	)

	session := agent.NewSession(cfg.HistoryPairs)
	validator := agent.NewTradeValidator(quotes, st, cfg.QuoteRetries,
		time.Duration(cfg.RetryBackoffSec)*time.Second)
	router := agent.NewRouter(session, validator, quotes, st, model)

	log.Printf("financegpt started: provider=%s db=%s model=%s",
		cfg.MarketProvider, cfg.DBPath, cfg.OllamaModel)

	return runShell(ctx, router, st)
}

func buildProvider(cfg *config.Config) (market.Provider, error) {
	switch cfg.MarketProvider {
	case "yahoo", "":
		return yahoo.NewProvider(), nil
	case "alpaca":
		return alpacamkt.NewProvider(), nil
	case "sim":
		return sim.NewProvider(), nil
	default:
		return nil, fmt.Errorf("unknown market provider %q (want yahoo, alpaca or sim)", cfg.MarketProvider)
	}
}
