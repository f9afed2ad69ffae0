// Package objective implements the Objective Compiler (C5): the four
// weighted soft terms of spec.md §4.5, accumulated via
// solver.Backend.AddObjectiveTerm and finalized with Maximize.
package objective

import (
	"github.com/grundschule/timetabler-core/internal/domain"
	"github.com/grundschule/timetabler-core/internal/models"
	"github.com/grundschule/timetabler-core/internal/solver"
	"github.com/grundschule/timetabler-core/internal/variables"
)

// Weights holds the integer weights spec.md §4.5 assigns to each soft term.
// CP-SAT's objective requires integer coefficients, so every weight here is
// already an integer — no scale factor is needed.
type Weights struct {
	Preferred        int64
	Primary          int64
	Secondary        int64
	Substitute       int64
	CoreMorning      int64
	SportAfternoon   int64
}

// DefaultWeights returns the weights named in spec.md §4.5.
func DefaultWeights() Weights {
	return Weights{
		Preferred:      10,
		Primary:        5,
		Secondary:      0,
		Substitute:     -3,
		CoreMorning:    8,
		SportAfternoon: 3,
	}
}

// morningPeriodCutoff is the last period still considered "morning" for the
// core-subject-morning soft term (spec.md §4.5).
const morningPeriodCutoff = 3

// afternoonPeriodStart is the first period considered "afternoon" for the
// sport-afternoon soft term.
const afternoonPeriodStart = 4

// Compile adds one objective term per surviving variable for each soft-term
// family that applies to it, then finalizes the objective as a maximization.
func Compile(snapshot *domain.Snapshot, vars map[variables.Key]solver.BoolVar, weights Weights, backend solver.Backend) {
	qualLevel := qualificationLevelIndex(snapshot)

	for key, v := range vars {
		slot, ok := snapshot.TimeSlot(key.TimeSlotID)
		if !ok {
			continue
		}
		subject, ok := snapshot.Subject(key.SubjectID)
		if !ok {
			continue
		}

		if kind, ok := snapshot.Availability(key.TeacherID, slot.Weekday(), slot.Period); ok && kind == models.AvailabilityPreferred {
			backend.AddObjectiveTerm(v, float64(weights.Preferred))
		}

		switch qualLevel[[2]string{key.TeacherID, key.SubjectID}] {
		case models.QualificationPrimary:
			backend.AddObjectiveTerm(v, float64(weights.Primary))
		case models.QualificationSecondary:
			if weights.Secondary != 0 {
				backend.AddObjectiveTerm(v, float64(weights.Secondary))
			}
		case models.QualificationSubstitute:
			backend.AddObjectiveTerm(v, float64(weights.Substitute))
		}

		if subject.IsCore() && slot.Period <= morningPeriodCutoff {
			backend.AddObjectiveTerm(v, float64(weights.CoreMorning))
		}
		if subject.IsSport() && slot.Period >= afternoonPeriodStart {
			backend.AddObjectiveTerm(v, float64(weights.SportAfternoon))
		}
	}

	backend.Maximize()
}

func qualificationLevelIndex(snapshot *domain.Snapshot) map[[2]string]models.QualificationLevel {
	idx := make(map[[2]string]models.QualificationLevel)
	for _, subject := range snapshot.Subjects() {
		for _, qual := range snapshot.QualificationsFor(subject.ID) {
			idx[[2]string{qual.TeacherID, subject.ID}] = qual.Level
		}
	}
	return idx
}
