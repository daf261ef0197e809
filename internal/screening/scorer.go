package screening

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Fixed domain instructions for pairwise scoring. The certificate ranking is a
// similarity signal: records under documents of different strength are less
// likely to be the same object.
const scoringInstructions = `Dokumen kepemilikan levels (strongest to weakest):
1  Sertifikat Hak Milik (SHM) = full ownership
2  Sertifikat Hak Guna Bangunan (HGB) = right to build, upgradable to SHM
3  Sertifikat Hak Pakai (SHP) = right to use, time-limited

Compare the two short land-valuation records and answer with the single line: x% where x is an integer 0-100 expressing how likely these two records refer to the SAME object.`

// Scorer rates each neighbor candidate against the new request. All candidates
// are scored concurrently; results stay paired to their candidate by index
// regardless of completion order.
type Scorer struct {
	caller LLMCaller
}

func NewScorer(caller LLMCaller) *Scorer {
	return &Scorer{caller: caller}
}

// ScoreAll returns one ScoredCandidate per input candidate, in input order,
// plus the number of candidates whose score degraded to 0 because the model
// call failed or its reply did not parse. A bad reply never fails the batch.
func (s *Scorer) ScoreAll(ctx context.Context, req AssignmentRequest, candidates []CandidateRecord) ([]ScoredCandidate, int) {
	results := make([]ScoredCandidate, len(candidates))
	var failures int32

	var wg sync.WaitGroup
	for i, c := range candidates {
		wg.Add(1)
		go func(i int, c CandidateRecord) {
			defer wg.Done()
			pct, err := s.scoreOne(ctx, req, c)
			if err != nil {
				pct = 0
				atomic.AddInt32(&failures, 1)
			}
			results[i] = ScoredCandidate{CandidateRecord: c, SimilarityPct: pct}
		}(i, c)
	}
	wg.Wait()
	return results, int(atomic.LoadInt32(&failures))
}

func (s *Scorer) scoreOne(ctx context.Context, req AssignmentRequest, c CandidateRecord) (int, error) {
	prompt := fmt.Sprintf("User: %s\nDatabase: %s", describeRequest(req), describeCandidate(c))
	raw, err := s.caller.GenerateText(ctx, TextRequest{System: scoringInstructions, Prompt: prompt})
	if err != nil {
		return 0, err
	}
	return parsePercent(firstLine(raw))
}

func describeRequest(req AssignmentRequest) string {
	return fmt.Sprintf("Pemberi tugas: %s, tahun: %d, jenis objek: %s, kepemilikan: %s, dokumen: %s, tujuan: %s",
		req.Assignor, req.ContractYear, req.ObjectType, req.Ownership, req.OwnershipDocument, req.Purpose)
}

func describeCandidate(c CandidateRecord) string {
	return fmt.Sprintf("Pemberi tugas: %s, tahun: %d, jenis objek: %s, kepemilikan: %s, dokumen: %s, tujuan: %s",
		c.Assignor, c.ContractYear, c.ObjectType, c.Ownership, c.OwnershipDocument, c.Purpose)
}

// parsePercent extracts the integer from a "x%" answer line. Stray text around
// the number is tolerated; anything without a 0-100 integer is an error.
func parsePercent(line string) (int, error) {
	line = strings.TrimSpace(line)
	if idx := strings.IndexByte(line, '%'); idx >= 0 {
		line = line[:idx]
	}
	start := len(line)
	for start > 0 && line[start-1] >= '0' && line[start-1] <= '9' {
		start--
	}
	digits := line[start:]
	if digits == "" {
		return 0, fmt.Errorf("no percentage in %q", line)
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("parse percentage %q: %w", digits, err)
	}
	if n < 0 || n > 100 {
		return 0, fmt.Errorf("percentage %d out of range", n)
	}
	return n, nil
}
