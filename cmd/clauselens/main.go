package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/clauselens/clauselens/internal/analytics"
	"github.com/clauselens/clauselens/internal/compliance"
	"github.com/clauselens/clauselens/internal/compliance/evaluate"
	"github.com/clauselens/clauselens/internal/compliance/rules"
	"github.com/clauselens/clauselens/internal/compliance/service"
	"github.com/clauselens/clauselens/internal/config"
	"github.com/clauselens/clauselens/internal/server"
	"github.com/clauselens/clauselens/internal/storage"
	"github.com/clauselens/clauselens/internal/suggest"
	"github.com/clauselens/clauselens/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "clauselens: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	log, err := logger.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck
	sugar := log.Sugar()

	repo := rules.NewRepository(sugar)
	if cfg.RulesFile != "" {
		ruleSet, err := rules.LoadFromFile(cfg.RulesFile)
		if err != nil {
			return err
		}
		if err := repo.Update(ruleSet); err != nil {
			return err
		}
		sugar.Infow("initial rule snapshot loaded", "file", cfg.RulesFile, "rules", len(ruleSet))
	}

	store := storage.NewMemoryStore()
	complianceSvc := service.NewService(repo, compliance.ComplianceConfiguration{
		RiskThresholds: compliance.RiskThresholds{
			Low:    cfg.Engine.RiskThresholdLow,
			Medium: cfg.Engine.RiskThresholdMedium,
			High:   cfg.Engine.RiskThresholdHigh,
		},
		MaxAutoTags: cfg.Engine.MaxAutoTags,
	}, sugar)

	analyticsEngine := analytics.NewEngine(analytics.Config{
		TrendBand:      cfg.Engine.TrendBand,
		TopRiskFactors: cfg.Engine.TopRiskFactors,
	}, sugar)

	suggester := suggest.NewEngine(suggest.Config{
		MinConfidence:   cfg.Engine.MinConfidence,
		MaxSuggestions:  cfg.Engine.MaxSuggestions,
		ProviderTimeout: cfg.Engine.ProviderTimeout,
	}, repo, evaluate.NewEvaluator(sugar), nil, storage.NewTemplateSearcher(store), sugar)

	srv := server.NewServer(cfg.Server, log, complianceSvc, analyticsEngine, suggester, store)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Start(ctx)
}
