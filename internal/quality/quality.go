// Package quality implements the Quality Scorer (C8): a 0-100 score
// computed from an extracted schedule, independent of the solver's internal
// objective value, so two runs on different backends are comparable
// (spec.md §4.8).
package quality

import (
	"github.com/grundschule/timetabler-core/internal/conflict"
	"github.com/grundschule/timetabler-core/internal/domain"
	"github.com/grundschule/timetabler-core/internal/models"
)

// Rubric weights, fixed exactly per spec.md §4.8's table.
const (
	weightAvailability  = 25.0
	weightQualification = 20.0
	weightTiming        = 20.0
	weightWorkload      = 15.0
	weightEfficiency    = 10.0
	weightCompliance    = 10.0
)

// Result is the scored breakdown returned alongside a SolveResult.
type Result struct {
	Score                  float64
	AvailabilityScore      float64
	QualificationScore     float64
	PedagogicalTimingScore float64
	WorkloadBalanceScore   float64
	ScheduleEfficiency     float64
	ComplianceScore        float64
}

// Score computes the six rubrics and their weighted average. conflicts is
// the per-entry conflict map from conflict.Detector.Scan, used only by the
// compliance rubric; a correctly produced schedule passes an empty map.
func Score(snapshot *domain.Snapshot, entries []models.ScheduleEntry, conflicts map[string][]conflict.Conflict) Result {
	if len(entries) == 0 {
		return Result{100, 100, 100, 100, 100, 100, 100}
	}

	r := Result{
		AvailabilityScore:      availabilityScore(snapshot, entries),
		QualificationScore:     qualificationScore(snapshot, entries),
		PedagogicalTimingScore: timingScore(snapshot, entries),
		WorkloadBalanceScore:   workloadScore(entries),
		ScheduleEfficiency:     efficiencyScore(snapshot, entries),
		ComplianceScore:        complianceScore(conflicts),
	}
	r.Score = (r.AvailabilityScore*weightAvailability +
		r.QualificationScore*weightQualification +
		r.PedagogicalTimingScore*weightTiming +
		r.WorkloadBalanceScore*weightWorkload +
		r.ScheduleEfficiency*weightEfficiency +
		r.ComplianceScore*weightCompliance) / 100.0
	return r
}

func availabilityScore(snapshot *domain.Snapshot, entries []models.ScheduleEntry) float64 {
	var total float64
	for _, e := range entries {
		slot, ok := snapshot.TimeSlot(e.TimeSlotID)
		if !ok {
			continue
		}
		kind, has := snapshot.Availability(e.TeacherID, slot.Weekday(), slot.Period)
		if has && kind == models.AvailabilityPreferred {
			total += 100
		} else {
			total += 50
		}
	}
	return total / float64(len(entries))
}

func qualificationScore(snapshot *domain.Snapshot, entries []models.ScheduleEntry) float64 {
	levelOf := make(map[[2]string]models.QualificationLevel)
	for _, subject := range snapshot.Subjects() {
		for _, q := range snapshot.QualificationsFor(subject.ID) {
			levelOf[[2]string{q.TeacherID, subject.ID}] = q.Level
		}
	}
	var total float64
	for _, e := range entries {
		switch levelOf[[2]string{e.TeacherID, e.SubjectID}] {
		case models.QualificationPrimary:
			total += 100
		case models.QualificationSecondary:
			total += 70
		case models.QualificationSubstitute:
			total += 30
		}
	}
	return total / float64(len(entries))
}

func timingScore(snapshot *domain.Snapshot, entries []models.ScheduleEntry) float64 {
	var total float64
	for _, e := range entries {
		subject, ok := snapshot.Subject(e.SubjectID)
		if !ok {
			total += 100
			continue
		}
		slot, ok := snapshot.TimeSlot(e.TimeSlotID)
		if !ok {
			continue
		}
		switch {
		case subject.IsCore():
			if slot.Period <= 3 {
				total += 100
			} else {
				total += 50
			}
		case subject.IsSport():
			if slot.Period >= 4 {
				total += 100
			} else {
				total += 30
			}
		default:
			total += 100
		}
	}
	return total / float64(len(entries))
}

func workloadScore(entries []models.ScheduleEntry) float64 {
	counts := make(map[string]int)
	for _, e := range entries {
		counts[e.TeacherID]++
	}
	if len(counts) == 0 {
		return 100
	}
	var total float64
	for _, n := range counts {
		switch {
		case n >= 8 && n <= 15:
			total += 100
		case n >= 5 && n <= 20:
			total += 70
		case n > 0:
			total += 30
		}
	}
	return total / float64(len(counts))
}

func efficiencyScore(snapshot *domain.Snapshot, entries []models.ScheduleEntry) float64 {
	daysByClass := make(map[string]map[int]bool)
	for _, e := range entries {
		slot, ok := snapshot.TimeSlot(e.TimeSlotID)
		if !ok {
			continue
		}
		if daysByClass[e.ClassID] == nil {
			daysByClass[e.ClassID] = make(map[int]bool)
		}
		daysByClass[e.ClassID][slot.Day] = true
	}
	if len(daysByClass) == 0 {
		return 100
	}
	var total float64
	for _, days := range daysByClass {
		switch n := len(days); {
		case n >= 4:
			total += 100
		case n == 3:
			total += 70
		case n == 2:
			total += 40
		case n == 1:
			total += 10
		}
	}
	return total / float64(len(daysByClass))
}

func complianceScore(conflicts map[string][]conflict.Conflict) float64 {
	violations := 0
	for _, cs := range conflicts {
		violations += len(cs)
	}
	score := 100.0 - 10.0*float64(violations)
	if score < 0 {
		score = 0
	}
	return score
}
