// conflict-screen runs one screening from a request JSON file and writes the
// candidate table (CSV) and report (JSON, optionally PDF) next to it.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rahardian/conflict-screen/internal/render"
	"github.com/rahardian/conflict-screen/internal/screening"
)

func main() {
	requestPath := flag.String("request", "", "Path to the assignment request JSON")
	configPath := flag.String("config", "", "Path to the YAML config (optional)")
	outDir := flag.String("out", ".", "Directory for exported CSV/JSON")
	pdf := flag.Bool("pdf", false, "Also render the report as PDF")
	flag.Parse()

	if strings.TrimSpace(*requestPath) == "" {
		log.Fatal("missing -request")
	}

	cfg, err := screening.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	blob, err := os.ReadFile(*requestPath)
	if err != nil {
		log.Fatal(err)
	}
	var req screening.AssignmentRequest
	if err := json.Unmarshal(blob, &req); err != nil {
		log.Fatalf("parse request: %v", err)
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

	pipeline := screening.NewPipeline(
		geocoder,
		screening.NewPostgresStore(db),
		screening.NewScorer(caller),
		screening.NewSynthesizer(caller, cfg.NewsCheck),
		cfg,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	started := time.Now()
	res, err := pipeline.RunWithProgress(ctx, req, func(stage, message string) {
		log.Printf("%s %s", stage, message)
	})
	if err != nil {
		log.Fatalf("screening failed stage=%s err=%v", screening.StageNameFromError(err), err)
	}
	if res.Outcome == screening.OutcomeNoResult {
		log.Fatalf("no result: %s", res.AbortReason)
	}
	log.Printf("request_done request_id=%s neighbors=%d matches=%d llm_calls=%d elapsed_ms=%d",
		res.RequestID, res.Metadata.NeighborsFound, len(res.Candidates),
		res.Metadata.TotalLLMCalls, time.Since(started).Milliseconds())

	now := time.Now()
	csvPath := filepath.Join(*outDir, screening.CandidatesFilename(now))
	f, err := os.Create(csvPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := screening.WriteCandidatesCSV(f, res.Candidates); err != nil {
		log.Fatal(err)
	}
	_ = f.Close()

	reportBlob, err := screening.ReportJSON(res.Report)
	if err != nil {
		log.Fatal(err)
	}
	jsonPath := filepath.Join(*outDir, screening.ReportFilename(now))
	if err := os.WriteFile(jsonPath, reportBlob, 0o644); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %s and %s", csvPath, jsonPath)

	if *pdf {
		renderer := render.NewPDFRenderer()
		out, err := renderer.Render(ctx, screening.BuildMarkdown(res), "Laporan Analisis Konflik")
		if err != nil {
			log.Fatalf("render pdf: %v", err)
		}
		pdfPath := strings.TrimSuffix(jsonPath, ".json") + ".pdf"
		if err := os.WriteFile(pdfPath, out, 0o644); err != nil {
			log.Fatal(err)
		}
		log.Printf("wrote %s", pdfPath)
	}
}

func requiredEnv(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		log.Fatalf("missing required env var %s", key)
	}
	return v
}
