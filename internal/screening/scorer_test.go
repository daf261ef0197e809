package screening

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// scriptedCaller answers scoring calls by matching a substring of the prompt.
// Safe for concurrent use: the script is read-only after construction.
type scriptedCaller struct {
	replies map[string]string
	errOn   map[string]error
}

func (c *scriptedCaller) GenerateText(_ context.Context, req TextRequest) (string, error) {
	for key, err := range c.errOn {
		if strings.Contains(req.Prompt, key) {
			return "", err
		}
	}
	for key, reply := range c.replies {
		if strings.Contains(req.Prompt, key) {
			return reply, nil
		}
	}
	return "", fmt.Errorf("no scripted reply for prompt %q", req.Prompt)
}

func TestParsePercent(t *testing.T) {
	for _, tc := range []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "85%", want: 85},
		{in: "0%", want: 0},
		{in: "100%", want: 100},
		{in: "Similarity: 42%", want: 42},
		{in: "42", want: 42},
		{in: "42 % likely", want: 42},
		{in: "", wantErr: true},
		{in: "no number here", wantErr: true},
		{in: "150%", wantErr: true},
	} {
		got, err := parsePercent(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("parsePercent(%q) expected error, got %d", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parsePercent(%q) unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("parsePercent(%q) got %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestScoreAllPairsResultsToCandidates(t *testing.T) {
	candidates := []CandidateRecord{
		{Assignor: "PT Alpha", DistanceM: 120},
		{Assignor: "PT Beta", DistanceM: 450},
		{Assignor: "PT Gamma", DistanceM: 900},
	}
	caller := &scriptedCaller{replies: map[string]string{
		"PT Alpha": "85%",
		"PT Beta":  "20%",
		"PT Gamma": "45%",
	}}
	scorer := NewScorer(caller)

	scored, failures := scorer.ScoreAll(context.Background(), AssignmentRequest{Assignor: "PT Baru"}, candidates)
	if failures != 0 {
		t.Fatalf("expected no failures, got %d", failures)
	}
	if len(scored) != len(candidates) {
		t.Fatalf("expected %d scores, got %d", len(candidates), len(scored))
	}
	want := []int{85, 20, 45}
	for i, sc := range scored {
		if sc.Assignor != candidates[i].Assignor {
			t.Fatalf("score %d paired to %s, want %s", i, sc.Assignor, candidates[i].Assignor)
		}
		if sc.SimilarityPct != want[i] {
			t.Fatalf("candidate %s scored %d, want %d", sc.Assignor, sc.SimilarityPct, want[i])
		}
	}
}

func TestScoreAllMalformedReplyDegradesToZero(t *testing.T) {
	candidates := []CandidateRecord{
		{Assignor: "PT Alpha"},
		{Assignor: "PT Beta"},
		{Assignor: "PT Gamma"},
	}
	caller := &scriptedCaller{
		replies: map[string]string{
			"PT Alpha": "90%",
			"PT Beta":  "definitely the same object",
			"PT Gamma": "60%",
		},
	}
	scored, failures := NewScorer(caller).ScoreAll(context.Background(), AssignmentRequest{}, candidates)
	if failures != 1 {
		t.Fatalf("expected 1 failure, got %d", failures)
	}
	if len(scored) != 3 {
		t.Fatalf("malformed reply changed result count: %d", len(scored))
	}
	if scored[0].SimilarityPct != 90 || scored[2].SimilarityPct != 60 {
		t.Fatalf("other candidates affected: %d, %d", scored[0].SimilarityPct, scored[2].SimilarityPct)
	}
	if scored[1].SimilarityPct != 0 {
		t.Fatalf("malformed reply should degrade to 0, got %d", scored[1].SimilarityPct)
	}
}

func TestScoreAllTransportErrorDoesNotFailBatch(t *testing.T) {
	candidates := []CandidateRecord{
		{Assignor: "PT Alpha"},
		{Assignor: "PT Beta"},
	}
	caller := &scriptedCaller{
		replies: map[string]string{"PT Alpha": "70%"},
		errOn:   map[string]error{"PT Beta": errors.New("status code: 500")},
	}
	scored, failures := NewScorer(caller).ScoreAll(context.Background(), AssignmentRequest{}, candidates)
	if failures != 1 {
		t.Fatalf("expected 1 failure, got %d", failures)
	}
	if scored[0].SimilarityPct != 70 || scored[1].SimilarityPct != 0 {
		t.Fatalf("unexpected scores: %d, %d", scored[0].SimilarityPct, scored[1].SimilarityPct)
	}
}

func TestScoreAllEmptyInput(t *testing.T) {
	scored, failures := NewScorer(&scriptedCaller{}).ScoreAll(context.Background(), AssignmentRequest{}, nil)
	if len(scored) != 0 || failures != 0 {
		t.Fatalf("expected empty result, got %d scores %d failures", len(scored), failures)
	}
}

func TestScoreAllDeterministicAcrossRuns(t *testing.T) {
	candidates := make([]CandidateRecord, 12)
	replies := map[string]string{}
	for i := range candidates {
		name := fmt.Sprintf("PT Nomor %02d,", i)
		candidates[i] = CandidateRecord{Assignor: fmt.Sprintf("PT Nomor %02d", i)}
		replies[name] = fmt.Sprintf("%d%%", (i*7)%101)
	}
	scorer := NewScorer(&scriptedCaller{replies: replies})

	first, _ := scorer.ScoreAll(context.Background(), AssignmentRequest{}, candidates)
	second, _ := scorer.ScoreAll(context.Background(), AssignmentRequest{}, candidates)
	for i := range first {
		if first[i].SimilarityPct != second[i].SimilarityPct || first[i].Assignor != second[i].Assignor {
			t.Fatalf("run divergence at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}
