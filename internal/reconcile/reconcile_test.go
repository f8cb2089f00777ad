package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sapelo-labs/fishstock/internal/match"
	"github.com/sapelo-labs/fishstock/internal/model"
	"github.com/sapelo-labs/fishstock/internal/synonym"
)

func newMatcher() *match.Matcher {
	return match.New(synonym.Default())
}

func f64(v float64) *float64 { return &v }

func TestClassify_Dominance(t *testing.T) {
	// Critical strictly dominates the single-flag states even when the
	// narrative is also present.
	assert.Equal(t, model.StatusCritical, Classify(&model.AssessmentRecord{
		Overfished: true, OverfishingOccurring: true, StockStatus: "Rebuilding plan in place",
	}))
	assert.Equal(t, model.StatusOverfished, Classify(&model.AssessmentRecord{
		Overfished: true, StockStatus: "Rebuilding",
	}))
	assert.Equal(t, model.StatusOverfishing, Classify(&model.AssessmentRecord{
		OverfishingOccurring: true,
	}))
	assert.Equal(t, model.StatusHealthy, Classify(&model.AssessmentRecord{
		StockStatus: "Not overfished, overfishing not occurring",
	}))
	assert.Equal(t, model.StatusUnknown, Classify(&model.AssessmentRecord{}))
	assert.Equal(t, model.StatusUnknown, Classify(nil))
}

func TestReconcile_LeftJoinAtMostOne(t *testing.T) {
	species := []model.SpeciesRecord{
		{Name: "Red Snapper", ActionCount: 12},
		{Name: "Swordfish", ActionCount: 3},
	}
	assessments := []model.AssessmentRecord{
		{Species: "South Atlantic Red Snapper", Overfished: true, BOverBmsy: f64(0.42), SedarNumber: "SEDAR 73"},
	}

	merged := Reconcile(species, assessments, newMatcher())
	require.Len(t, merged, 2)

	require.NotNil(t, merged[0].Assessment)
	assert.Equal(t, "SEDAR 73", merged[0].Assessment.SedarNumber)
	assert.Equal(t, model.StatusOverfished, merged[0].Status)
	assert.Equal(t, "exact", merged[0].MatchStage)

	// No match is not an error: the species is present with unknown status.
	assert.Nil(t, merged[1].Assessment)
	assert.Equal(t, model.StatusUnknown, merged[1].Status)
	assert.Empty(t, merged[1].MatchStage)
}

func TestReconcile_Deterministic(t *testing.T) {
	species := []model.SpeciesRecord{
		{Name: "Mahi Mahi"}, {Name: "Kingfish"}, {Name: "Gag"}, {Name: "Wreckfish"},
	}
	assessments := []model.AssessmentRecord{
		{Species: "Dolphin", StockStatus: "Healthy"},
		{Species: "King Mackerel", OverfishingOccurring: true},
		{Species: "Gag", Overfished: true},
	}

	m := newMatcher()
	first := Reconcile(species, assessments, m)
	for range 5 {
		assert.Equal(t, first, Reconcile(species, assessments, m))
	}
}

func TestReconcile_MalformedRecordsDegradeToUnknown(t *testing.T) {
	species := []model.SpeciesRecord{
		{Name: ""},
		{Name: "South Atlantic"},
	}
	assessments := []model.AssessmentRecord{
		{Species: "Red Snapper", Overfished: true},
	}

	merged := Reconcile(species, assessments, newMatcher())
	require.Len(t, merged, 2)
	for _, entry := range merged {
		assert.Nil(t, entry.Assessment)
		assert.Equal(t, model.StatusUnknown, entry.Status)
	}
}

func TestReconcile_EmptyInputs(t *testing.T) {
	m := newMatcher()
	assert.Empty(t, Reconcile(nil, nil, m))
	assert.Len(t, Reconcile([]model.SpeciesRecord{{Name: "Cobia"}}, nil, m), 1)
}

func TestSummarize_CountsFlagsIndependently(t *testing.T) {
	assessments := []model.AssessmentRecord{
		{Species: "A", Overfished: true, OverfishingOccurring: true}, // counts toward both
		{Species: "B", Overfished: true},
		{Species: "C", OverfishingOccurring: true},
		{Species: "D", StockStatus: "Healthy"},
		{Species: "E"},
	}

	s := Summarize(assessments)
	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 2, s.OverfishedCount)
	assert.Equal(t, 2, s.OverfishingCount)
	assert.Equal(t, 1, s.HealthyCount)
	assert.Equal(t, 1, s.UnknownCount)
}

func TestSummarize_IndependentOfMerge(t *testing.T) {
	// The counters run over the assessment collection alone: an assessment no
	// species links to still counts.
	assessments := []model.AssessmentRecord{
		{Species: "Orphan Stock", Overfished: true},
	}
	merged := Reconcile(nil, assessments, newMatcher())
	assert.Empty(t, merged)

	s := Summarize(assessments)
	assert.Equal(t, 1, s.Total)
	assert.Equal(t, 1, s.OverfishedCount)
}

func TestEngine_AppliesNewerGeneration(t *testing.T) {
	e := NewEngine(newMatcher())

	ok := e.Apply(1, []model.SpeciesRecord{{Name: "Cobia"}}, nil)
	assert.True(t, ok)
	assert.Len(t, e.Merged(), 1)
	assert.Equal(t, uint64(1), e.Generation())

	ok = e.Apply(2, []model.SpeciesRecord{{Name: "Cobia"}, {Name: "Gag"}}, nil)
	assert.True(t, ok)
	assert.Len(t, e.Merged(), 2)
}

func TestEngine_DiscardsStaleGeneration(t *testing.T) {
	e := NewEngine(newMatcher())

	require.True(t, e.Apply(2, []model.SpeciesRecord{{Name: "Cobia"}, {Name: "Gag"}}, nil))

	// A slow response from an older refresh arrives late and must not clobber
	// the fresher view.
	ok := e.Apply(1, []model.SpeciesRecord{{Name: "Stale"}}, nil)
	assert.False(t, ok)
	assert.Len(t, e.Merged(), 2)
	assert.Equal(t, uint64(2), e.Generation())
}
