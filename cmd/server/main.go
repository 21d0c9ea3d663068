package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/rental-pricing/internal/config"
	"github.com/iliyamo/rental-pricing/internal/database"
	"github.com/iliyamo/rental-pricing/internal/handler"
	"github.com/iliyamo/rental-pricing/internal/middleware"
	"github.com/iliyamo/rental-pricing/internal/pricing"
	"github.com/iliyamo/rental-pricing/internal/queue"
	"github.com/iliyamo/rental-pricing/internal/repository"
	"github.com/iliyamo/rental-pricing/internal/router"
	"github.com/iliyamo/rental-pricing/internal/service"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	pcfg := config.LoadPricingConfig()
	tables := pricing.DefaultTables()
	if pcfg.TablesPath != "" {
		t, err := pricing.LoadTablesFile(pcfg.TablesPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", pcfg.TablesPath).Msg("load pricing tables")
		}
		tables = t
	}
	engine := pricing.NewEngine(tables)
	first, last := tables.YearRange()
	log.Info().Str("version", tables.Version).Int("first_year", first).Int("last_year", last).Msg("pricing tables loaded")

	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}
	limiter := middleware.NewRateLimiter(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	qcfg := config.LoadQueueConfig()
	var events handler.EventPublisher = service.NopPublisher{}
	if qcfg.Enabled {
		events = service.NewPublisher(qcfg, log.Logger)
		go func() {
			if err := queue.StartPricingConsumer(ctx, qcfg, log.Logger); err != nil {
				log.Error().Err(err).Msg("pricing consumer exited")
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log.Logger))
	e.Use(echomw.Recover())

	ph := handler.NewPricingHandler(engine, pcfg)
	router.RegisterRoutes(e, tables.Version)
	router.RegisterPricing(e, ph, limiter, cache)

	var db *sql.DB
	if cfg.DatabaseEnabled() {
		var err error
		db, err = database.Open(database.Params{
			Driver:  cfg.DBDriver,
			User:    cfg.DBUser,
			Pass:    cfg.DBPass,
			Host:    cfg.DBHost,
			Port:    cfg.DBPort,
			Name:    cfg.DBName,
			SSLMode: cfg.DBSSLMode,
		})
		if err != nil {
			log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("open database")
		}
		defer db.Close()
		pp := handler.NewPropertyPricingHandler(ph,
			repository.NewPropertyRepo(db, cfg.DBDriver),
			repository.NewBookingRepo(db, cfg.DBDriver),
			events, log.Logger)
		router.RegisterOwnerPricing(e, pp, cfg.JWTSecret, limiter)
	} else {
		log.Warn().Msg("database not configured, property routes disabled")
	}

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	log.Info().Msg("server stopped")
}

func setupLogger(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.Env == "dev" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	log.Logger = log.With().Str("service", "rental-pricing").Logger()
}
