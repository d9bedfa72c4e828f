package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"reflect"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/Skufu/cardiorisk/internal/cache"
	"github.com/Skufu/cardiorisk/internal/dataset"
	"github.com/Skufu/cardiorisk/internal/logger"
)

type Config struct {
	Port             string        `env:"PORT" validate:"required,numeric"`
	GinMode          string        `env:"GIN_MODE" validate:"oneof=debug release test"`
	LogLevel         string        `env:"LOG_LEVEL"`
	LogFormat        string        `env:"LOG_FORMAT" validate:"oneof=console json"`
	ReferenceDataset string        `env:"REFERENCE_DATASET" validate:"required"`
	ReferenceRows    int           `env:"REFERENCE_ROWS" validate:"gte=0"`
	TargetColumn     string        `env:"TARGET_COLUMN" validate:"required"`
	ModelPath        string        `env:"MODEL_PATH"`
	ScalerPath       string        `env:"SCALER_PATH"`
	StoreDriver      string        `env:"STORE_DRIVER" validate:"oneof=none postgres sqlite"`
	DatabaseURL      string        `env:"DATABASE_URL" validate:"required_if=StoreDriver postgres"`
	SQLitePath       string        `env:"SQLITE_PATH" validate:"required_if=StoreDriver sqlite"`
	RedisAddr        string        `env:"REDIS_ADDR" validate:"omitempty,hostname_port"`
	CacheTTL         time.Duration `env:"CACHE_TTL" validate:"gt=0"`
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		logger.Get().Fatal().Err(err).Msg("config error")
	}

	logger.Init(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "cardiorisk"})
	log := logger.Get()
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()
	app, err := buildApp(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	defer app.Close()

	router := setupRouter(app)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("mode", app.svc.Mode()).Msg("server listening")
	waitForShutdown(server)
}

func loadConfig() (*Config, error) {
	_ = godotenv.Load()

	rows, err := strconv.Atoi(getEnv("REFERENCE_ROWS", strconv.Itoa(dataset.DefaultRows)))
	if err != nil {
		return nil, fmt.Errorf("REFERENCE_ROWS: %w", err)
	}
	ttl, err := time.ParseDuration(getEnv("CACHE_TTL", cache.DefaultTTL.String()))
	if err != nil {
		return nil, fmt.Errorf("CACHE_TTL: %w", err)
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		GinMode:          getEnv("GIN_MODE", gin.ReleaseMode),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        strings.ToLower(getEnv("LOG_FORMAT", "json")),
		ReferenceDataset: getEnv("REFERENCE_DATASET", "dataset/CVD_2021_BRFSS.csv"),
		ReferenceRows:    rows,
		TargetColumn:     getEnv("TARGET_COLUMN", "Heart_Disease"),
		ModelPath:        getEnv("MODEL_PATH", "models/model.json"),
		ScalerPath:       getEnv("SCALER_PATH", "models/scaler.json"),
		StoreDriver:      strings.ToLower(getEnv("STORE_DRIVER", "none")),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		SQLitePath:       getEnv("SQLITE_PATH", "cardiorisk.db"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		CacheTTL:         ttl,
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

var configValidator = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("env")
	})
	return v
}()

// validateConfig reports every invalid key by its environment name.
func validateConfig(cfg *Config) error {
	err := configValidator.Struct(cfg)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required_if":
			msgs = append(msgs, fmt.Sprintf("%s is required when STORE_DRIVER=%s", fe.Field(), cfg.StoreDriver))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func waitForShutdown(server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log := logger.Get()
	log.Info().Msg("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
