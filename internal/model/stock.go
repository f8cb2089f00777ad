// Package model defines the species and assessment record shapes and the
// merged view derived from them.
package model

import (
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// StockStatus is the derived health classification for a species.
type StockStatus string

const (
	StatusUnknown     StockStatus = "unknown"
	StatusHealthy     StockStatus = "healthy"
	StatusOverfished  StockStatus = "overfished"
	StatusOverfishing StockStatus = "overfishing"
	StatusCritical    StockStatus = "critical"
)

var titleCaser = cases.Title(language.AmericanEnglish)

// Label returns the display form of the status ("Overfished", "Unknown", ...).
func (s StockStatus) Label() string {
	if s == "" {
		return titleCaser.String(string(StatusUnknown))
	}
	return titleCaser.String(string(s))
}

// Valid reports whether s is one of the defined classifications.
func (s StockStatus) Valid() bool {
	switch s {
	case StatusUnknown, StatusHealthy, StatusOverfished, StatusOverfishing, StatusCritical:
		return true
	}
	return false
}

// SpeciesRecord is one entry in the species registry. Immutable once fetched.
type SpeciesRecord struct {
	Name         string     `json:"name"`
	FMPs         []string   `json:"fmps,omitempty"`
	ActionCount  int        `json:"actionCount"`
	FirstMention *time.Time `json:"firstMention,omitempty"`
	LastMention  *time.Time `json:"lastMention,omitempty"`
}

// AssessmentRecord is one entry in the assessment registry. Immutable once fetched.
type AssessmentRecord struct {
	Species              string   `json:"species"`
	ScientificName       string   `json:"scientificName,omitempty"`
	Overfished           bool     `json:"overfished"`
	OverfishingOccurring bool     `json:"overfishingOccurring"`
	StockStatus          string   `json:"stockStatus,omitempty"`
	BOverBmsy            *float64 `json:"bOverBmsy,omitempty"`
	FOverFmsy            *float64 `json:"fOverFmsy,omitempty"`
	SedarNumber          string   `json:"sedarNumber,omitempty"`
	FMPsAffected         []string `json:"fmpsAffected,omitempty"`
}

// MergedStock is one row of the reconciled view: a species plus at most one
// linked assessment and the classification derived from it. Rebuilt wholesale
// on every reconciliation pass, never persisted.
type MergedStock struct {
	Species    SpeciesRecord     `json:"species"`
	Assessment *AssessmentRecord `json:"assessment,omitempty"`
	MatchStage string            `json:"matchStage,omitempty"`
	Status     StockStatus       `json:"status"`
}

// Summary holds the raw counters computed directly over the assessment
// collection. These are intentionally independent of the per-species merge:
// an assessment counts here whether or not any species linked to it.
type Summary struct {
	Total            int `json:"total"`
	OverfishedCount  int `json:"overfishedCount"`
	OverfishingCount int `json:"overfishingCount"`
	HealthyCount     int `json:"healthyCount"`
	UnknownCount     int `json:"unknownCount"`
}
