package screening

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"
)

var csvHeader = []string{
	"pemberi_tugas", "jenis_objek_text", "cabang_text", "divisi", "tahun_kontrak",
	"alamat_lokasi", "keterangan", "kepemilikan", "dokumen_kepemilikan",
	"tujuan_penugasan_text", "distance_m", "similarity_pct",
}

// WriteCandidatesCSV writes the filtered candidate table as a flat CSV record
// set, one row per candidate in ranked order.
func WriteCandidatesCSV(w io.Writer, candidates []ScoredCandidate) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, c := range candidates {
		row := []string{
			c.Assignor, c.ObjectType, c.Branch, c.Division, strconv.Itoa(c.ContractYear),
			c.Address, c.Notes, c.Ownership, c.OwnershipDocument,
			c.Purpose, strconv.FormatFloat(c.DistanceM, 'f', 2, 64), strconv.Itoa(c.SimilarityPct),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReportJSON serializes the two-field report document for download.
func ReportJSON(report ConflictReport) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}

func CandidatesFilename(t time.Time) string {
	return fmt.Sprintf("similar_objects_%s.csv", t.Format("20060102_150405"))
}

func ReportFilename(t time.Time) string {
	return fmt.Sprintf("analysis_report_%s.json", t.Format("20060102_150405"))
}
