// screen-api serves the conflict screening pipeline over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rahardian/conflict-screen/internal/history"
	"github.com/rahardian/conflict-screen/internal/httpapi"
	"github.com/rahardian/conflict-screen/internal/render"
	"github.com/rahardian/conflict-screen/internal/screening"
	"github.com/rahardian/conflict-screen/internal/telemetry"
)

func main() {
	addr := flag.String("addr", ":8080", "Listen address")
	configPath := flag.String("config", "", "Path to the YAML config (optional)")
	historyPath := flag.String("history-db", "history.db", "SQLite path for analysis history")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, "screen-api")
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		shutdownCtx, c := context.WithTimeout(context.Background(), 5*time.Second)
		defer c()
		_ = shutdownTracing(shutdownCtx)
	}()

	cfg, err := screening.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	caller, err := screening.NewAnthropicCallerFromEnv(cfg.Model)
	if err != nil {
		log.Fatal(err)
	}
	geocoder, err := screening.NewGoogleGeocoder(screening.GeocoderConfig{APIKey: os.Getenv("GOOGLE_MAPS_API_KEY")})
	if err != nil {
		log.Fatal(err)
	}
	db, err := screening.OpenPostgres(requiredEnv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	hist, err := history.NewStore(*historyPath)
	if err != nil {
		log.Fatal(err)
	}
	defer hist.Close()

	pipeline := screening.NewPipeline(
		geocoder,
		screening.NewPostgresStore(db),
		screening.NewScorer(caller),
		screening.NewSynthesizer(caller, cfg.NewsCheck),
		cfg,
	)

	srv := &http.Server{
		Addr:    *addr,
		Handler: httpapi.NewServer(pipeline, hist, render.NewPDFRenderer()),
	}

	go func() {
		log.Printf("screen-api listening on %s (radius_m=%.0f threshold=%d news_check=%t)",
			*addr, cfg.RadiusMeters, cfg.SimilarityThreshold, cfg.NewsCheck)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, c := context.WithTimeout(context.Background(), 10*time.Second)
	defer c()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func requiredEnv(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		log.Fatalf("missing required env var %s", key)
	}
	return v
}
