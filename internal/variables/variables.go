// Package variables implements the Variable Builder (C3): translating a
// Domain Snapshot into sparse Boolean decision variables, pre-filtered so
// impossible tuples never reach the solver.
package variables

import (
	"fmt"

	"github.com/grundschule/timetabler-core/internal/domain"
	"github.com/grundschule/timetabler-core/internal/models"
	"github.com/grundschule/timetabler-core/internal/solver"
)

// Key identifies one decision variable x[t,c,s,τ] (spec.md §4.3).
type Key struct {
	TeacherID  string
	ClassID    string
	SubjectID  string
	TimeSlotID string
}

func (k Key) name() string {
	return fmt.Sprintf("x[%s,%s,%s,%s]", k.TeacherID, k.ClassID, k.SubjectID, k.TimeSlotID)
}

// Build creates x[t,c,s,τ] for every tuple that survives the three
// pre-filters of spec.md §4.3 (break, qualification, availability), then
// seeds every pinned entry to 1, creating its variable first if the
// pre-filters would otherwise have excluded it — a pinned assignment is, by
// construction, already valid, so it must be representable regardless of
// the sparse encoding's normal admission rules.
func Build(snapshot *domain.Snapshot, backend solver.Backend) map[Key]solver.BoolVar {
	return BuildFiltered(snapshot, backend, nil)
}

// BuildFiltered is Build with one addition: pinnedFilter, when non-nil,
// restricts which pinned entries get fixed to 1. This backs the week-type
// joint-solving split of spec.md §9 — the A∪ALL sub-instance fixes only
// entries whose week_type collides with A, the B∪ALL sub-instance only
// those colliding with B, while both enumerate the same full candidate
// space.
func BuildFiltered(snapshot *domain.Snapshot, backend solver.Backend, pinnedFilter func(models.ScheduleEntry) bool) map[Key]solver.BoolVar {
	vars := make(map[Key]solver.BoolVar)

	for _, class := range snapshot.Classes() {
		for _, subject := range snapshot.Subjects() {
			for _, qual := range snapshot.QualificationsFor(subject.ID) {
				if !qual.AllowedGrades.Allows(class.Grade) {
					continue
				}
				for _, slot := range snapshot.TeachingSlots() {
					if kind, ok := snapshot.Availability(qual.TeacherID, slot.Weekday(), slot.Period); ok && kind == models.AvailabilityBlocked {
						continue
					}
					key := Key{TeacherID: qual.TeacherID, ClassID: class.ID, SubjectID: subject.ID, TimeSlotID: slot.ID}
					vars[key] = backend.NewBoolVar(key.name())
				}
			}
		}
	}

	for _, pinned := range snapshot.Pinned() {
		if pinnedFilter != nil && !pinnedFilter(pinned) {
			continue
		}
		key := Key{TeacherID: pinned.TeacherID, ClassID: pinned.ClassID, SubjectID: pinned.SubjectID, TimeSlotID: pinned.TimeSlotID}
		v, ok := vars[key]
		if !ok {
			v = backend.NewBoolVar(key.name())
			vars[key] = v
		}
		backend.FixBoolVar(v, true)
	}

	return vars
}
