// Package dto carries the external-facing request/response shapes of
// spec.md §6, validated with go-playground/validator, following the
// teacher's dto package convention.
package dto

import (
	"time"

	"github.com/grundschule/timetabler-core/internal/models"
	"github.com/grundschule/timetabler-core/internal/quality"
)

// GenerateConfig is the closed option set of spec.md §6, item 1.
type GenerateConfig struct {
	PreserveExisting bool      `json:"preserve_existing"`
	TimeLimitSeconds int       `json:"time_limit_seconds" validate:"required,gte=1,lte=3600"`
	ClearExisting    bool      `json:"clear_existing"`
	ReferenceDate    time.Time `json:"reference_date"`
	RandomSeed       *int64    `json:"random_seed,omitempty"`

	// Demand is not part of spec.md's literal config set, but is required to
	// resolve its own Open Question on the undefined demand model (spec.md
	// §9): an explicit (class, subject) -> weekly hour count map, defaulting
	// to 0 for any pair absent from it.
	Demand map[DemandEntry]int `json:"-"`
}

// DemandEntry identifies one (class, subject) demand pair. A plain struct
// key (rather than a nested map) lets the result cache's config hash render
// each pair as one sortable string.
type DemandEntry struct {
	ClassID   string
	SubjectID string
}

// SolveResult is the canonical field set spec.md §6 requires the REST layer
// to round-trip unchanged.
type SolveResult struct {
	Entries              []models.ScheduleEntry `json:"entries"`
	Quality               quality.Result         `json:"quality"`
	GenerationDuration    time.Duration          `json:"generation_duration_ns"`
	SatisfiedConstraints  []string               `json:"satisfied_constraints"`
	ViolatedConstraints   []string               `json:"violated_constraints"`
	ObjectiveValue        float64                `json:"objective_value"`
	Feasible              bool                   `json:"feasible"`
	Cancelled             bool                   `json:"cancelled"`
	TimedOut              bool                   `json:"timed_out"`
}

// ValidateResult answers the "validate(candidate)" operation of spec.md §6,
// item 3.
type ValidateResult struct {
	Valid     bool     `json:"valid"`
	Conflicts []string `json:"conflicts"`
}
