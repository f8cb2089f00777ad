// Package match resolves a species name to at most one assessment record via
// a fixed-priority cascade. The cascade returns on the first stage that yields
// any candidate; within a stage the first record in collection order wins. No
// scoring is performed.
package match

import (
	"strings"

	"github.com/sapelo-labs/fishstock/internal/model"
	"github.com/sapelo-labs/fishstock/internal/normalize"
	"github.com/sapelo-labs/fishstock/internal/synonym"
)

// Stage identifies which cascade stage produced a match.
type Stage string

const (
	StageExact       Stage = "exact"
	StageSynonym     Stage = "synonym"
	StageContainment Stage = "containment"
	StageScientific  Stage = "scientific"
)

// Matcher runs the cascade against an injected synonym table.
type Matcher struct {
	table synonym.Table
}

// New creates a Matcher using the given synonym table.
func New(table synonym.Table) *Matcher {
	return &Matcher{table: table}
}

// Find resolves speciesName against assessments. It returns the matched
// record and the stage that produced it, or (nil, "") when nothing matches.
// A missing match is an expected outcome, not an error.
func (m *Matcher) Find(speciesName string, assessments []model.AssessmentRecord) (*model.AssessmentRecord, Stage) {
	hits, stage := m.Candidates(speciesName, assessments)
	if len(hits) == 0 {
		return nil, ""
	}
	return hits[0], stage
}

// Candidates returns every assessment that qualifies at the winning stage,
// in collection order, plus the stage itself. Find always picks the first
// entry; the full list exists so callers can surface ambiguity when more than
// one record qualified.
func (m *Matcher) Candidates(speciesName string, assessments []model.AssessmentRecord) ([]*model.AssessmentRecord, Stage) {
	s := normalize.Name(speciesName)
	if s == "" {
		return nil, ""
	}

	// Stage 1: exact normalized-name match.
	if hits := collect(assessments, func(a *model.AssessmentRecord) bool {
		return normalize.Name(a.Species) == s
	}); len(hits) > 0 {
		return hits, StageExact
	}

	// Stage 2: synonym groups, tried in table order. A group applies when the
	// species name and any group member contain one another; within an
	// applicable group the same bidirectional-substring test runs against the
	// assessment names. The first group that yields candidates wins.
	for _, group := range m.table {
		names := normalizeAll(group.AllNames())
		if !anyEitherContains(names, s) {
			continue
		}
		if hits := collect(assessments, func(a *model.AssessmentRecord) bool {
			an := normalize.Name(a.Species)
			return an != "" && anyEitherContains(names, an)
		}); len(hits) > 0 {
			return hits, StageSynonym
		}
	}

	// Stage 3: partial containment in either direction.
	if hits := collect(assessments, func(a *model.AssessmentRecord) bool {
		an := normalize.Name(a.Species)
		return an != "" && eitherContains(an, s)
	}); len(hits) > 0 {
		return hits, StageContainment
	}

	// Stage 4: normalized scientific name contains the species name.
	if hits := collect(assessments, func(a *model.AssessmentRecord) bool {
		sci := normalize.Name(a.ScientificName)
		return sci != "" && strings.Contains(sci, s)
	}); len(hits) > 0 {
		return hits, StageScientific
	}

	return nil, ""
}

func normalizeAll(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, normalize.Name(name))
	}
	return out
}

func anyEitherContains(names []string, s string) bool {
	for _, name := range names {
		if eitherContains(name, s) {
			return true
		}
	}
	return false
}

// eitherContains reports whether a contains b or b contains a. Empty strings
// never qualify: a record with an empty normalized name must stay unmatchable
// rather than matching everything via substring-of-empty-string.
func eitherContains(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func collect(assessments []model.AssessmentRecord, pred func(*model.AssessmentRecord) bool) []*model.AssessmentRecord {
	var hits []*model.AssessmentRecord
	for i := range assessments {
		if pred(&assessments[i]) {
			hits = append(hits, &assessments[i])
		}
	}
	return hits
}
