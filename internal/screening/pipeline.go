package screening

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type StageProgressFn func(stage, message string)

// Pipeline sequences one conflict screen end to end:
// resolve_coords, query_neighbors, score_candidates, filter_rank,
// synthesize_report. Collaborators are injected once at startup and shared
// read-only across runs; the pipeline itself keeps no cross-run state.
type Pipeline struct {
	geocoder Geocoder
	store    NeighborStore
	scorer   *Scorer
	synth    *Synthesizer
	cfg      Config
	tracer   trace.Tracer
}

func NewPipeline(geocoder Geocoder, store NeighborStore, scorer *Scorer, synth *Synthesizer, cfg Config) *Pipeline {
	cfg.applyDefaults()
	return &Pipeline{
		geocoder: geocoder,
		store:    store,
		scorer:   scorer,
		synth:    synth,
		cfg:      cfg,
		tracer:   otel.Tracer("screening"),
	}
}

func (p *Pipeline) Run(ctx context.Context, req AssignmentRequest) (ScreenResult, error) {
	return p.runWithProgress(ctx, req, nil)
}

func (p *Pipeline) RunWithProgress(ctx context.Context, req AssignmentRequest, progress StageProgressFn) (ScreenResult, error) {
	return p.runWithProgress(ctx, req, progress)
}

func (p *Pipeline) runWithProgress(ctx context.Context, req AssignmentRequest, progress StageProgressFn) (ScreenResult, error) {
	res := ScreenResult{
		RequestID:  uuid.NewString(),
		Outcome:    OutcomeComplete,
		Request:    req,
		Candidates: []ScoredCandidate{},
		Metadata: PipelineMetadata{
			StartedAt:        time.Now(),
			NewsCheckEnabled: p.synth.newsCheck,
		},
	}

	if strings.TrimSpace(req.Assignor) == "" {
		return res, &InputError{Field: "pemberi_tugas"}
	}
	if strings.TrimSpace(req.Address) == "" {
		return res, &InputError{Field: "alamat_lokasi"}
	}

	ctx, span := p.tracer.Start(ctx, "screening.run",
		trace.WithAttributes(attribute.String("request_id", res.RequestID)))
	defer span.End()

	emit(progress, "resolve_coords", "Resolving request coordinates...")
	lat, lon, usedGeocode, err := p.stageResolveCoords(ctx, req)
	if err != nil {
		// Unresolvable coordinates abort the run but are not an error to the
		// caller: the UI treats this like field validation.
		res.Outcome = OutcomeNoResult
		res.AbortReason = err.Error()
		return p.finalize(res, "resolve_coords"), nil
	}
	res.Latitude = lat
	res.Longitude = lon
	res.Metadata.GeocodeUsed = usedGeocode
	res.Metadata.StagesExecuted = append(res.Metadata.StagesExecuted, "resolve_coords")

	emit(progress, "query_neighbors", "Querying prior assignments nearby...")
	neighbors, err := p.stageQueryNeighbors(ctx, lat, lon)
	if err != nil {
		return res, &StageError{Stage: "query_neighbors", Err: err}
	}
	res.Metadata.NeighborsFound = len(neighbors)
	res.Metadata.StagesExecuted = append(res.Metadata.StagesExecuted, "query_neighbors")

	emit(progress, "score_candidates", "Scoring candidate similarity...")
	scored, failures := p.stageScore(ctx, req, neighbors)
	res.Metadata.TotalLLMCalls += len(neighbors)
	res.Metadata.ScoreFailures = failures
	res.Metadata.StagesExecuted = append(res.Metadata.StagesExecuted, "score_candidates")

	res.Candidates = FilterRank(scored, p.cfg.SimilarityThreshold)
	res.Metadata.StagesExecuted = append(res.Metadata.StagesExecuted, "filter_rank")

	emit(progress, "synthesize_report", "Synthesizing conflict report...")
	report, err := p.stageSynthesize(ctx, req, res.Candidates)
	if err != nil {
		return res, &StageError{Stage: "synthesize_report", Err: err}
	}
	res.Report = report
	res.Metadata.TotalLLMCalls += p.synth.LLMCalls()
	res.Metadata.StagesExecuted = append(res.Metadata.StagesExecuted, "synthesize_report")

	return p.finalize(res, ""), nil
}

func (p *Pipeline) stageResolveCoords(ctx context.Context, req AssignmentRequest) (float64, float64, bool, error) {
	ctx, span := p.tracer.Start(ctx, "screening.resolve_coords")
	defer span.End()
	lat, lon, usedGeocode, err := resolveCoordinates(ctx, p.geocoder, req)
	span.SetAttributes(attribute.Bool("geocode_used", usedGeocode))
	return lat, lon, usedGeocode, err
}

func (p *Pipeline) stageQueryNeighbors(ctx context.Context, lat, lon float64) ([]CandidateRecord, error) {
	ctx, span := p.tracer.Start(ctx, "screening.query_neighbors",
		trace.WithAttributes(attribute.Float64("radius_m", p.cfg.RadiusMeters)))
	defer span.End()
	records, err := p.store.FindNeighbors(ctx, lat, lon, p.cfg.RadiusMeters, p.cfg.MaxNeighbors)
	if err != nil {
		return nil, err
	}
	records = clampNeighbors(records, p.cfg.MaxNeighbors)
	span.SetAttributes(attribute.Int("neighbors", len(records)))
	return records, nil
}

func (p *Pipeline) stageScore(ctx context.Context, req AssignmentRequest, neighbors []CandidateRecord) ([]ScoredCandidate, int) {
	ctx, span := p.tracer.Start(ctx, "screening.score_candidates",
		trace.WithAttributes(attribute.Int("candidates", len(neighbors))))
	defer span.End()
	return p.scorer.ScoreAll(ctx, req, neighbors)
}

func (p *Pipeline) stageSynthesize(ctx context.Context, req AssignmentRequest, candidates []ScoredCandidate) (ConflictReport, error) {
	ctx, span := p.tracer.Start(ctx, "screening.synthesize_report")
	defer span.End()
	return p.synth.Synthesize(ctx, req, candidates)
}

func (p *Pipeline) finalize(res ScreenResult, abortedStage string) ScreenResult {
	if abortedStage != "" {
		res.Metadata.StagesExecuted = append(res.Metadata.StagesExecuted, abortedStage)
	}
	res.Metadata.CompletedAt = time.Now()
	return res
}

func emit(progress StageProgressFn, stage, message string) {
	if progress != nil {
		progress(stage, message)
	}
}
