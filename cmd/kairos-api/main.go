// README: Entry point; loads config, wires the pipeline and providers, starts the HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"kairos/internal/ai"
	"kairos/internal/audit"
	"kairos/internal/cache"
	"kairos/internal/config"
	httptransport "kairos/internal/http"
	"kairos/internal/infra"
	"kairos/internal/maps"
	"kairos/internal/modules/usage"
	"kairos/internal/observability"
	"kairos/internal/places"
	"kairos/internal/planner"
	"kairos/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := observability.InitRegistry()

	auditSink, err := audit.New(cfg.Audit.Dir, log)
	if err != nil {
		log.Fatal().Err(err).Msg("audit sink init")
	}

	oracle, err := ai.NewGeminiOracle(ctx, cfg.AI.GeminiKey, ai.GeminiConfig{
		Model:       cfg.AI.Model,
		Temperature: float32(cfg.AI.Temperature),
		MaxTokens:   int32(cfg.AI.MaxTokens),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("gemini init")
	}
	defer oracle.Close()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres init")
	}
	defer dbPool.Close()
	usageSvc := usage.NewService(usage.NewStore(dbPool), log)

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	store := cache.New(redisClient)

	pipeline := planner.NewService(oracle, planner.NewSchema(cfg.Planner.SchemaVersion), planner.Deps{
		Audit:  auditSink,
		Usage:  usageSvc,
		Logger: log,
	})

	placesClient := places.NewClient(cfg.Places.NominatimBase, cfg.Places.RequestsPerSec, log)

	var geocoder service.Geocoder
	if cfg.Maps.APIKey != "" {
		g, err := maps.NewGeocoder(cfg.Maps.APIKey, auditSink, log)
		if err != nil {
			log.Fatal().Err(err).Msg("maps init")
		}
		geocoder = g
	} else {
		log.Info().Msg("MAPS_API_KEY not set; coordinate backfill disabled")
	}

	plannerSvc := service.NewPlanner(service.PlannerDeps{
		Pipeline:      pipeline,
		Places:        placesClient,
		Store:         store,
		Geocoder:      geocoder,
		SchemaVersion: cfg.Planner.SchemaVersion,
		ContextTTL:    cfg.Cache.ContextTTL,
		Logger:        log,
	})

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Stages:  pipeline,
		Planner: plannerSvc,
		Usage:   usageSvc,
		Metrics: registry,
		Logger:  log,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}
	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	log.Info().Str("addr", cfg.HTTP.Addr).Msg("kairos api listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server")
	}
}
