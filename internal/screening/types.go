package screening

import "time"

const (
	// SentinelClear is the canonical "no adverse media found" answer for the
	// assignor reputation check. Returned verbatim when the check is disabled.
	SentinelClear = "Aman!"

	DefaultRadiusMeters        = 10000.0
	DefaultSimilarityThreshold = 30
	DefaultMaxNeighbors        = 20
)

type Outcome string

const (
	OutcomeComplete Outcome = "COMPLETE"
	// OutcomeNoResult means coordinates could not be resolved. The pipeline
	// aborts before any spatial query or scoring, but this is not an error to
	// the caller: the UI shows it as field-level validation feedback.
	OutcomeNoResult Outcome = "NO_RESULT"
)

// AssignmentRequest is a new-assignment prospect as entered on the intake form.
// Longitude/Latitude are optional; when absent the address is geocoded.
// JSON field names follow the firm's existing record layout.
type AssignmentRequest struct {
	Longitude         *float64 `json:"longitude"`
	Latitude          *float64 `json:"latitude"`
	Address           string   `json:"alamat_lokasi"`
	ObjectType        string   `json:"jenis_objek"`
	Assignor          string   `json:"pemberi_tugas"`
	ContractNumber    string   `json:"nomor_kontrak,omitempty"`
	ContractYear      int      `json:"tahun"`
	LandAreaM2        float64  `json:"luas_tanah"`
	BuildingAreaM2    float64  `json:"luas_bangunan"`
	Purpose           string   `json:"tujuan_penilaian"`
	TransactionType   string   `json:"jenis_transaksi"`
	Ownership         string   `json:"kepemilikan"`
	OwnershipDocument string   `json:"dokumen_kepemilikan"`
}

// CandidateRecord is a previously performed assignment returned by the spatial
// store, with the computed geodesic distance from the request point. Read-only;
// the pipeline never writes these back.
type CandidateRecord struct {
	Assignor          string  `db:"pemberi_tugas" json:"pemberi_tugas"`
	ObjectType        string  `db:"jenis_objek_text" json:"jenis_objek_text"`
	Branch            string  `db:"cabang_text" json:"cabang_text"`
	Division          string  `db:"divisi" json:"divisi"`
	ContractYear      int     `db:"tahun_kontrak" json:"tahun_kontrak"`
	Address           string  `db:"alamat_lokasi" json:"alamat_lokasi"`
	Notes             string  `db:"keterangan" json:"keterangan"`
	Ownership         string  `db:"kepemilikan" json:"kepemilikan"`
	OwnershipDocument string  `db:"dokumen_kepemilikan" json:"dokumen_kepemilikan"`
	Purpose           string  `db:"tujuan_penugasan_text" json:"tujuan_penugasan_text"`
	DistanceM         float64 `db:"distance_m" json:"distance_m"`
}

// ScoredCandidate pairs a candidate with its model-estimated likelihood
// (0-100) that it refers to the same physical object as the request.
type ScoredCandidate struct {
	CandidateRecord
	SimilarityPct int `json:"similarity_pct"`
}

// ConflictReport is the pipeline's narrative output: a conflict/duplicate-work
// summary and the assignor reputation check result.
type ConflictReport struct {
	Summary         string `json:"summary"`
	ClientSentiment string `json:"client_sentiment"`
}

type PipelineMetadata struct {
	StagesExecuted   []string  `json:"stages_executed"`
	TotalLLMCalls    int       `json:"total_llm_calls"`
	ScoreFailures    int       `json:"score_failures"`
	NeighborsFound   int       `json:"neighbors_found"`
	GeocodeUsed      bool      `json:"geocode_used"`
	NewsCheckEnabled bool      `json:"news_check_enabled"`
	StartedAt        time.Time `json:"started_at"`
	CompletedAt      time.Time `json:"completed_at"`
}

// ScreenResult is the single artifact of one pipeline run. Candidates holds the
// filtered, ranked table; Report the narrative pair. Nothing here outlives the
// run unless the caller records it in history.
type ScreenResult struct {
	RequestID   string            `json:"request_id"`
	Outcome     Outcome           `json:"outcome"`
	AbortReason string            `json:"abort_reason,omitempty"`
	Request     AssignmentRequest `json:"request"`
	Latitude    float64           `json:"latitude"`
	Longitude   float64           `json:"longitude"`
	Candidates  []ScoredCandidate `json:"candidates"`
	Report      ConflictReport    `json:"report"`
	Metadata    PipelineMetadata  `json:"metadata"`
}
