// Package export serializes a reconciled view to downloadable file formats.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/sapelo-labs/fishstock/internal/model"
)

// csvColumns defines the ordered CSV output columns.
var csvColumns = []string{
	"Species",
	"Stock Status",
	"B/BMSY",
	"F/FMSY",
	"SEDAR",
	"Actions",
	"FMPs",
}

const notAvailable = "N/A"

// CSV renders the view as delimited text. Every field is quoted, rows are
// newline-joined, and the header row is fixed; output is deterministic for a
// given view.
func CSV(stocks []model.MergedStock) string {
	rows := make([]string, 0, len(stocks)+1)
	rows = append(rows, renderRow(csvColumns))
	for i := range stocks {
		rows = append(rows, renderRow(buildRow(&stocks[i])))
	}
	return strings.Join(rows, "\n")
}

// Filename returns the dated download name for a CSV export.
func Filename(now time.Time) string {
	return fmt.Sprintf("species-stocks-%s.csv", now.Format("2006-01-02"))
}

func buildRow(s *model.MergedStock) []string {
	bRatio, fRatio, sedarNum := notAvailable, notAvailable, notAvailable
	if a := s.Assessment; a != nil {
		if a.BOverBmsy != nil {
			bRatio = fmt.Sprintf("%.2f", *a.BOverBmsy)
		}
		if a.FOverFmsy != nil {
			fRatio = fmt.Sprintf("%.2f", *a.FOverFmsy)
		}
		if a.SedarNumber != "" {
			sedarNum = a.SedarNumber
		}
	}
	return []string{
		s.Species.Name,
		s.Status.Label(),
		bRatio,
		fRatio,
		sedarNum,
		fmt.Sprintf("%d", s.Species.ActionCount),
		strings.Join(s.Species.FMPs, "; "),
	}
}

// renderRow quotes every field unconditionally; encoding/csv only quotes on
// demand, which the export contract does not allow.
func renderRow(fields []string) string {
	var b strings.Builder
	for i, field := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(field, `"`, `""`))
		b.WriteByte('"')
	}
	return b.String()
}
