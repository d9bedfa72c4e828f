package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skufu/cardiorisk/internal/align"
	"github.com/Skufu/cardiorisk/internal/assessment"
	"github.com/Skufu/cardiorisk/internal/cache"
	"github.com/Skufu/cardiorisk/internal/dataset"
	"github.com/Skufu/cardiorisk/internal/logger"
	"github.com/Skufu/cardiorisk/internal/model"
	"github.com/Skufu/cardiorisk/internal/store"
	"github.com/Skufu/cardiorisk/internal/treatment"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the wired collaborators the router serves.
type App struct {
	svc       *assessment.Service
	summary   dataset.Summary
	treatment *treatment.Directory
	store     store.Repository // nil when STORE_DRIVER=none
	cache     *cache.Redis     // nil when REDIS_ADDR is unset
	model     *model.Info
}

// Preflight describes which startup artifacts are present.
type Preflight struct {
	Dataset bool
	Model   bool
	Scaler  bool
}

func preflight(cfg *Config) (Preflight, error) {
	p := Preflight{
		Dataset: fileExists(cfg.ReferenceDataset),
		Model:   cfg.ModelPath != "" && fileExists(cfg.ModelPath),
		Scaler:  cfg.ScalerPath != "" && fileExists(cfg.ScalerPath),
	}
	if !p.Dataset {
		return p, fmt.Errorf("reference dataset %s not found", cfg.ReferenceDataset)
	}
	return p, nil
}

func buildApp(ctx context.Context, cfg *Config) (*App, error) {
	log := logger.Named("startup")

	pf, err := preflight(cfg)
	if err != nil {
		return nil, err
	}
	if !pf.Model {
		log.Warn().Str("path", cfg.ModelPath).Msg("model artifact not found, running in demo mode")
	}
	if pf.Model && !pf.Scaler {
		log.Warn().Str("path", cfg.ScalerPath).Msg("scaler artifact not found, predictions use unscaled features")
	}

	frame, err := dataset.Load(cfg.ReferenceDataset, cfg.ReferenceRows)
	if err != nil {
		return nil, err
	}
	schema, err := dataset.BuildSchema(frame, cfg.TargetColumn)
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	log.Info().Int("rows", len(frame.Rows)).Int("features", len(schema.Columns)).Msg("reference schema ready")

	app := &App{summary: frame.Summary(cfg.TargetColumn, "Yes")}

	var (
		classifier model.Classifier
		scaler     align.Scaler
	)
	if pf.Model {
		m, err := model.LoadLogistic(cfg.ModelPath)
		if err != nil {
			return nil, err
		}
		if err := model.CheckFeatures(m, schema.Names()); err != nil {
			return nil, fmt.Errorf("model %s: %w", cfg.ModelPath, err)
		}
		info := m.Info()
		app.model = &info
		classifier = m

		if pf.Scaler {
			s, err := model.LoadScaler(cfg.ScalerPath)
			if err != nil {
				return nil, err
			}
			scaler = s
		}
	}

	aligner, err := align.New(schema, scaler)
	if err != nil {
		return nil, err
	}

	if app.treatment, err = treatment.Load(); err != nil {
		return nil, err
	}

	opts := assessment.Options{
		Aligner:    aligner,
		Classifier: classifier,
		Treatment:  app.treatment,
	}

	if cfg.StoreDriver != "none" {
		dsn := cfg.DatabaseURL
		if cfg.StoreDriver == "sqlite" {
			dsn = cfg.SQLitePath
		}
		repo, err := store.Open(ctx, cfg.StoreDriver, dsn)
		if err != nil {
			return nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
		}
		app.store = repo
		opts.Store = repo
	}

	if cfg.RedisAddr != "" {
		app.cache = cache.NewRedis(cfg.RedisAddr, cfg.CacheTTL)
		if err := app.cache.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("prediction cache unreachable, continuing")
		}
		opts.Cache = app.cache
	}

	app.svc = assessment.New(opts)
	return app, nil
}

// Close releases the store and cache connections.
func (a *App) Close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	return errors.Join(errs...)
}
