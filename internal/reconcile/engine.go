package reconcile

import (
	"sync"

	"go.uber.org/zap"

	"github.com/sapelo-labs/fishstock/internal/match"
	"github.com/sapelo-labs/fishstock/internal/model"
)

// Engine holds the latest merged view and summary, recomputing them only when
// a newer pair of source collections is applied. Refreshes are stamped with a
// monotonically increasing generation; a response that resolves after a newer
// one has been applied is discarded so stale data cannot clobber fresher data.
type Engine struct {
	matcher *match.Matcher

	mu          sync.RWMutex
	gen         uint64
	merged      []model.MergedStock
	assessments []model.AssessmentRecord
	summary     model.Summary
}

// NewEngine creates an Engine around the given matcher.
func NewEngine(m *match.Matcher) *Engine {
	return &Engine{matcher: m}
}

// Apply reconciles the given collections and installs the result, unless a
// response stamped with an equal or newer generation has already been
// applied. It reports whether the result was installed.
func (e *Engine) Apply(gen uint64, species []model.SpeciesRecord, assessments []model.AssessmentRecord) bool {
	merged := Reconcile(species, assessments, e.matcher)
	summary := Summarize(assessments)

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen <= e.gen && e.merged != nil {
		zap.L().Warn("discarding stale reconciliation result",
			zap.Uint64("stale_generation", gen),
			zap.Uint64("current_generation", e.gen),
		)
		return false
	}
	e.gen = gen
	e.merged = merged
	e.assessments = assessments
	e.summary = summary
	return true
}

// Assessments returns the assessment collection behind the current view.
func (e *Engine) Assessments() []model.AssessmentRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.assessments
}

// Merged returns the current merged view. The returned slice must be treated
// as read-only; it is replaced, never mutated, on the next apply.
func (e *Engine) Merged() []model.MergedStock {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.merged
}

// Summary returns the assessment-level counters for the current generation.
func (e *Engine) Summary() model.Summary {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.summary
}

// Generation returns the generation of the currently applied view.
func (e *Engine) Generation() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.gen
}
