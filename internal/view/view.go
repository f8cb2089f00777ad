// Package view applies search, filtering, and sorting over a reconciled
// collection. All stages are pure; sort runs last.
package view

import (
	"sort"
	"strings"

	"github.com/sapelo-labs/fishstock/internal/model"
)

// SortField names a sortable column of the merged view.
type SortField string

const (
	SortByName    SortField = "name"
	SortByStatus  SortField = "status"
	SortByActions SortField = "actions"
	SortByBRatio  SortField = "bratio"
	SortByFRatio  SortField = "fratio"
	SortBySedar   SortField = "sedar"
)

// SortDirection orders a sort ascending or descending.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// StatusAll passes every status through the status filter.
const StatusAll = "all"

// Query describes one pass over the merged view. The zero value plus
// Normalize yields the default view: everything, sorted by action count
// descending.
type Query struct {
	Search    string
	FMPs      []string
	Status    string
	SortBy    SortField
	Direction SortDirection
}

// Normalize fills in the default sort field and direction.
func (q Query) Normalize() Query {
	if q.SortBy == "" {
		q.SortBy = SortByActions
		if q.Direction == "" {
			q.Direction = Descending
		}
	}
	if q.Direction == "" {
		q.Direction = Ascending
	}
	if q.Status == "" {
		q.Status = StatusAll
	}
	return q
}

// Apply filters and sorts merged according to q. The input slice is never
// mutated; the result is a fresh slice sharing the input's entries.
func Apply(merged []model.MergedStock, q Query) []model.MergedStock {
	q = q.Normalize()

	out := make([]model.MergedStock, 0, len(merged))
	for _, entry := range merged {
		if matchesSearch(entry, q.Search) && matchesFMPs(entry, q.FMPs) && matchesStatus(entry, q.Status) {
			out = append(out, entry)
		}
	}

	sortStocks(out, q.SortBy, q.Direction)
	return out
}

// matchesSearch does a case-insensitive substring match against the species
// name, any FMP name, and the scientific name when present. An empty term
// passes everything.
func matchesSearch(entry model.MergedStock, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(entry.Species.Name), term) {
		return true
	}
	for _, fmp := range entry.Species.FMPs {
		if strings.Contains(strings.ToLower(fmp), term) {
			return true
		}
	}
	if entry.Assessment != nil && entry.Assessment.ScientificName != "" {
		if strings.Contains(strings.ToLower(entry.Assessment.ScientificName), term) {
			return true
		}
	}
	return false
}

// matchesFMPs has OR semantics: the entry passes when it belongs to any FMP
// in the filter set. An empty filter set passes everything.
func matchesFMPs(entry model.MergedStock, fmps []string) bool {
	if len(fmps) == 0 {
		return true
	}
	for _, want := range fmps {
		for _, have := range entry.Species.FMPs {
			if strings.EqualFold(have, want) {
				return true
			}
		}
	}
	return false
}

func matchesStatus(entry model.MergedStock, status string) bool {
	if status == "" || status == StatusAll {
		return true
	}
	return string(entry.Status) == status
}

// sortStocks stably sorts in place. String fields compare case-insensitively;
// absent numeric fields sort as missing-low.
func sortStocks(stocks []model.MergedStock, field SortField, dir SortDirection) {
	desc := dir == Descending
	sort.SliceStable(stocks, func(i, j int) bool {
		less, equal := compare(stocks[i], stocks[j], field)
		if equal {
			return false
		}
		if desc {
			return !less
		}
		return less
	})
}

func compare(a, b model.MergedStock, field SortField) (less, equal bool) {
	switch field {
	case SortByName:
		return compareStrings(a.Species.Name, b.Species.Name)
	case SortByStatus:
		return compareStrings(string(a.Status), string(b.Status))
	case SortByBRatio:
		return compareFloats(bRatio(a), bRatio(b))
	case SortByFRatio:
		return compareFloats(fRatio(a), fRatio(b))
	case SortBySedar:
		return compareStrings(sedar(a), sedar(b))
	default: // SortByActions
		ai, bi := a.Species.ActionCount, b.Species.ActionCount
		return ai < bi, ai == bi
	}
}

func compareStrings(a, b string) (less, equal bool) {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	return la < lb, la == lb
}

// compareFloats treats absent values as lower than any present value.
func compareFloats(a, b *float64) (less, equal bool) {
	switch {
	case a == nil && b == nil:
		return false, true
	case a == nil:
		return true, false
	case b == nil:
		return false, false
	default:
		return *a < *b, *a == *b
	}
}

func bRatio(s model.MergedStock) *float64 {
	if s.Assessment == nil {
		return nil
	}
	return s.Assessment.BOverBmsy
}

func fRatio(s model.MergedStock) *float64 {
	if s.Assessment == nil {
		return nil
	}
	return s.Assessment.FOverFmsy
}

func sedar(s model.MergedStock) string {
	if s.Assessment == nil {
		return ""
	}
	return s.Assessment.SedarNumber
}
