// Package reconcile joins the species registry against the assessment
// registry and derives a stock-health classification per species.
package reconcile

import (
	"go.uber.org/zap"

	"github.com/sapelo-labs/fishstock/internal/match"
	"github.com/sapelo-labs/fishstock/internal/model"
)

// Reconcile produces one MergedStock per species: a left join carrying at
// most one assessment reference. It is a pure, deterministic function of its
// inputs and the matcher's synonym table; re-running it on unchanged inputs
// yields an identical view. Malformed records degrade to the unknown state,
// never to an error.
func Reconcile(species []model.SpeciesRecord, assessments []model.AssessmentRecord, m *match.Matcher) []model.MergedStock {
	merged := make([]model.MergedStock, 0, len(species))
	matched := 0
	for _, sp := range species {
		entry := model.MergedStock{Species: sp, Status: model.StatusUnknown}
		if hit, stage := m.Find(sp.Name, assessments); hit != nil {
			entry.Assessment = hit
			entry.MatchStage = string(stage)
			entry.Status = Classify(hit)
			matched++
		}
		merged = append(merged, entry)
	}
	zap.L().Debug("reconciliation pass complete",
		zap.Int("species", len(species)),
		zap.Int("assessments", len(assessments)),
		zap.Int("matched", matched),
	)
	return merged
}

// Classify derives the health classification from an assessment. Dominance
// order: critical beats the two single-flag states, which beat the
// narrative-only healthy signal, which beats the no-information default.
func Classify(a *model.AssessmentRecord) model.StockStatus {
	switch {
	case a == nil:
		return model.StatusUnknown
	case a.Overfished && a.OverfishingOccurring:
		return model.StatusCritical
	case a.Overfished:
		return model.StatusOverfished
	case a.OverfishingOccurring:
		return model.StatusOverfishing
	case a.StockStatus != "":
		return model.StatusHealthy
	default:
		return model.StatusUnknown
	}
}

// Summarize computes the raw counters directly over the assessment
// collection. This is deliberately not derived from the merged view: the
// overfished and overfishing counters count their flags independently (an
// assessment with both flags increments both), so these numbers are not
// expected to agree with per-species counts over the merge.
func Summarize(assessments []model.AssessmentRecord) model.Summary {
	s := model.Summary{Total: len(assessments)}
	for i := range assessments {
		a := &assessments[i]
		if a.Overfished {
			s.OverfishedCount++
		}
		if a.OverfishingOccurring {
			s.OverfishingCount++
		}
		if !a.Overfished && !a.OverfishingOccurring {
			if a.StockStatus != "" {
				s.HealthyCount++
			} else {
				s.UnknownCount++
			}
		}
	}
	return s
}
