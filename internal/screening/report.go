package screening

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Synthesizer produces the final narrative pair: the conflict summary over the
// filtered candidate set, and the optional assignor reputation check. The two
// calls run concurrently; with the news check disabled the sentinel is
// returned without a model call.
type Synthesizer struct {
	caller    LLMCaller
	newsCheck bool
}

func NewSynthesizer(caller LLMCaller, newsCheck bool) *Synthesizer {
	return &Synthesizer{caller: caller, newsCheck: newsCheck}
}

func (s *Synthesizer) Synthesize(ctx context.Context, req AssignmentRequest, candidates []ScoredCandidate) (ConflictReport, error) {
	summary := ""
	sentiment := SentinelClear

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := s.caller.GenerateText(gctx, TextRequest{Prompt: summaryPrompt(req, candidates)})
		if err != nil {
			return fmt.Errorf("conflict summary: %w", err)
		}
		summary = out
		return nil
	})
	if s.newsCheck {
		g.Go(func() error {
			out, err := s.caller.GenerateText(gctx, TextRequest{Prompt: newsPrompt(req.Assignor), WebSearch: true})
			if err != nil {
				return fmt.Errorf("assignor news check: %w", err)
			}
			sentiment = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ConflictReport{}, err
	}
	return ConflictReport{Summary: summary, ClientSentiment: sentiment}, nil
}

// LLMCalls reports how many model calls one Synthesize invocation makes.
func (s *Synthesizer) LLMCalls() int {
	if s.newsCheck {
		return 2
	}
	return 1
}

func summaryPrompt(req AssignmentRequest, candidates []ScoredCandidate) string {
	prospect, _ := json.Marshal(req)
	fetched, _ := json.Marshal(candidates)
	return fmt.Sprintf(`You are a speaking assistant tasked with assisting an assessment firm to:
1. Prevent conflicts of interest
2. Avoid duplication of work
3. Avoid re-evaluating the same object

The following is data on new assignment prospects :
%s

And the following is data on assignments previously performed by the firm :
%s

The similarity_pct column shows the level of similarity (0-100%%) between a user object and an object in the database.
Your task:
- Compare each object in prospected_jobs with the list in fetched_context.
- Identify any objects that are potentially identical, similar, or potentially conflicting.
- Explain the reasons for the similarity (e.g., similar addresses, close coordinates, same assignor name, high similarity_pct value, etc.).

NOTE : Use Bahasa Indonesia!`, prospect, fetched)
}

func newsPrompt(assignor string) string {
	return fmt.Sprintf(`News about the '%s' case in Indonesia, create a list!
The case : corruption, scandal, or anything bad about the company.
The output MUST in a list, and show ONLY the news and links (no need like 'Berikut adalah' or other, only show the list)!
The company name MUST the same, DONT show other news! If you found no news about this company, just give this output : 'Aman!'
NOTE : The company name MUST EXACTLY THE SAME and use Bahasa Indonesia.`, assignor)
}

// BuildMarkdown renders a ScreenResult as a standalone report document, used
// for PDF export and the CLI summary.
func BuildMarkdown(res ScreenResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Laporan Analisis Konflik Penugasan\n\n")
	fmt.Fprintf(&b, "- Request ID: %s\n", res.RequestID)
	fmt.Fprintf(&b, "- Pemberi Tugas: %s\n", res.Request.Assignor)
	fmt.Fprintf(&b, "- Alamat: %s\n", sanitizeLine(res.Request.Address))
	fmt.Fprintf(&b, "- Tanggal: %s\n\n", res.Metadata.CompletedAt.Format(time.RFC3339))

	if res.Outcome == OutcomeNoResult {
		fmt.Fprintf(&b, "Koordinat tidak dapat ditentukan: %s\n", res.AbortReason)
		return b.String()
	}

	fmt.Fprintf(&b, "## Objek Serupa\n\n")
	if len(res.Candidates) == 0 {
		fmt.Fprintf(&b, "Tidak ditemukan objek serupa dalam radius pencarian.\n\n")
	} else {
		fmt.Fprintf(&b, "| Pemberi Tugas | Jenis Objek | Tahun | Alamat | Jarak (m) | Kemiripan |\n")
		fmt.Fprintf(&b, "|---|---|---|---|---|---|\n")
		for _, c := range res.Candidates {
			fmt.Fprintf(&b, "| %s | %s | %d | %s | %.0f | %d%% |\n",
				sanitizeLine(c.Assignor), sanitizeLine(c.ObjectType), c.ContractYear,
				sanitizeLine(c.Address), c.DistanceM, c.SimilarityPct)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Ringkasan Analisis\n\n%s\n\n", res.Report.Summary)
	if res.Metadata.NewsCheckEnabled {
		fmt.Fprintf(&b, "## Cek Pemberi Tugas\n\n%s\n\n", res.Report.ClientSentiment)
	}

	fmt.Fprintf(&b, "## Metadata\n\n```json\n%s\n```\n", prettyJSON(res.Metadata))
	return b.String()
}

func prettyJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

func sanitizeLine(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	if s == "" {
		return "-"
	}
	return s
}
