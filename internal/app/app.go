package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-matchsim/internal/config"
	"github.com/riskibarqy/fantasy-matchsim/internal/domain/match"
	"github.com/riskibarqy/fantasy-matchsim/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-matchsim/internal/infrastructure/jobqueue"
	"github.com/riskibarqy/fantasy-matchsim/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/fantasy-matchsim/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-matchsim/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/fantasy-matchsim/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/fantasy-matchsim/internal/platform/id"
	"github.com/riskibarqy/fantasy-matchsim/internal/platform/logging"
	"github.com/riskibarqy/fantasy-matchsim/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-matchsim/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const matchIDPrefix = "m_"

// App owns the HTTP server, the live simulation runner and the storage handles behind them.
type App struct {
	Server *http.Server
	Runner *usecase.SimulationRunner

	logger *logging.Logger
	db     *sqlx.DB
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	seedRules, err := loadRulesFile(cfg.ScoringRulesFile)
	if err != nil {
		return nil, err
	}

	a := &App{logger: logger}

	var (
		results   match.ResultRepository
		rulesRepo scoring.RulesRepository
	)
	if cfg.DBEnabled {
		db, err := openDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.db = db

		if err := postgres.BootstrapScoringRules(ctx, db, seedRules); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("bootstrap scoring rules: %w", err)
		}

		breaker := resilience.NewFromConfig(cfg.DBCircuit)
		results = postgres.NewMatchResultRepository(db, breaker)
		rulesRepo = postgres.NewScoringRulesRepository(db, breaker)
		logger.Info("storage ready", "backend", "postgres", "db_name", dbNameFromURL(cfg.DBURL), "seeded_leagues", len(seedRules))
	} else {
		results = memory.NewMatchResultRepository()
		rulesRepo = memory.NewScoringRulesRepository(seedRules)
		logger.Info("storage ready", "backend", "memory", "seeded_leagues", len(seedRules))
	}
	if cfg.CacheEnabled {
		rulesRepo = cache.NewScoringRulesRepository(rulesRepo, cfg.CacheTTL)
	}

	simulationSvc := usecase.NewSimulationService(
		memory.NewMatchSessionRepository(),
		results,
		idgen.NewNanoIDGenerator(matchIDPrefix, 12),
		usecase.SimulationConfig{
			WorkerCount: cfg.SimWorkerCount,
			Seed:        cfg.SimSeed,
		},
		logger,
	)
	if cfg.QStashEnabled {
		publisher, err := jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:       cfg.QStashBaseURL,
			Token:         cfg.QStashToken,
			TargetBaseURL: cfg.QStashTargetBaseURL,
			ResultPath:    cfg.QStashResultPath,
			Retries:       cfg.QStashRetries,
			Timeout:       cfg.QStashTimeout,
		}, resilience.NewFromConfig(cfg.QStashCircuit), logger)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		simulationSvc.WithResultPublisher(publisher)
		logger.Info("result publisher enabled", "target_base_url", cfg.QStashTargetBaseURL)
	}
	scoringSvc := usecase.NewScoringService(rulesRepo, simulationSvc, cfg.ScoringWorkerCount, logger)

	a.Runner = usecase.NewSimulationRunner(simulationSvc, usecase.RunnerConfig{
		TickInterval: cfg.SimTickInterval,
		MaxPolls:     cfg.SimMaxPolls,
		Concurrency:  cfg.SimRunnerConcurrency,
	}, logger)

	handler := httpapi.NewHandler(simulationSvc, scoringSvc, memory.SeedTeams(), logger)
	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return a, nil
}

// Close releases storage handles. The server must already be shut down.
func (a *App) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	a.logger.Info("db closed")
	return nil
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	db, err := otelsqlx.Open("postgres",
		normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

// loadRulesFile reads league scoring overrides. An empty path means no overrides.
func loadRulesFile(path string) (map[string]scoring.Rules, error) {
	if strings.TrimSpace(path) == "" {
		return map[string]scoring.Rules{}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("scoring rules file %s not found", path)
		}
		return nil, fmt.Errorf("open scoring rules file: %w", err)
	}
	defer f.Close()

	rules, err := scoring.DecodeLeagueRules(f)
	if err != nil {
		return nil, fmt.Errorf("load scoring rules file %s: %w", path, err)
	}
	return rules, nil
}
