// Package conflict implements the pure, synchronous predicate checks of
// spec.md §4.2. It never raises an error — a caller reads the returned
// conflict list — matching the "C2 never raises" policy of spec.md §7.
// Grounded on the teacher's ScheduleService.ensureNoConflict /ScheduleService.wrapConflict
// (internal/service/schedule_service.go), generalized from three dimensions
// (CLASS/TEACHER/ROOM) to the full six-kind taxonomy spec.md §4.2 names.
package conflict

import (
	"fmt"
	"strings"

	"github.com/grundschule/timetabler-core/internal/domain"
	"github.com/grundschule/timetabler-core/internal/models"
)

// Kind is the closed set of conflict kinds from spec.md §4.2.
type Kind string

const (
	BreakConflict         Kind = "BREAK_CONFLICT"
	QualificationConflict Kind = "QUALIFICATION_CONFLICT"
	AvailabilityConflict  Kind = "AVAILABILITY_CONFLICT"
	TeacherConflict       Kind = "TEACHER_CONFLICT"
	ClassConflict         Kind = "CLASS_CONFLICT"
	RoomConflict          Kind = "ROOM_CONFLICT"
)

// Conflict is one typed violation, carrying the colliding existing entry id
// when one exists (break/qualification/availability conflicts have none).
type Conflict struct {
	Kind            Kind
	Message         string
	ExistingEntryID string
}

// Detector validates candidates and scans schedules against a frozen
// Domain Snapshot. It holds no mutable state of its own and is safe to call
// concurrently from request-serving goroutines (spec.md §5).
type Detector struct {
	snapshot *domain.Snapshot
}

// NewDetector builds a Detector bound to one snapshot.
func NewDetector(snapshot *domain.Snapshot) *Detector {
	return &Detector{snapshot: snapshot}
}

// ValidateCandidate checks one candidate entry against an existing schedule
// set, in the fixed order break -> qualification -> availability -> teacher
// -> class -> room (spec.md §4.2). The candidate is admissible iff the
// returned slice is empty.
func (d *Detector) ValidateCandidate(candidate models.ScheduleEntry, existing []models.ScheduleEntry) []Conflict {
	var conflicts []Conflict

	slot, hasSlot := d.snapshot.TimeSlot(candidate.TimeSlotID)
	if hasSlot && slot.IsBreak {
		conflicts = append(conflicts, Conflict{Kind: BreakConflict, Message: "time slot is a break"})
	}

	if c, ok := d.checkQualification(candidate); ok {
		conflicts = append(conflicts, c)
	}

	if hasSlot {
		if c, ok := d.checkAvailability(candidate, slot); ok {
			conflicts = append(conflicts, c)
		}
	}

	for _, other := range existing {
		if other.ID == candidate.ID {
			continue
		}
		if other.TimeSlotID != candidate.TimeSlotID {
			continue
		}
		if !other.WeekType.Collides(candidate.WeekType) {
			continue
		}
		if other.TeacherID == candidate.TeacherID {
			conflicts = append(conflicts, Conflict{Kind: TeacherConflict, Message: "teacher already scheduled for this slot", ExistingEntryID: other.ID})
		}
		if other.ClassID == candidate.ClassID {
			conflicts = append(conflicts, Conflict{Kind: ClassConflict, Message: "class already scheduled for this slot", ExistingEntryID: other.ID})
		}
		if candidate.Room != nil && other.Room != nil && strings.EqualFold(other.RoomValue(), candidate.RoomValue()) {
			conflicts = append(conflicts, Conflict{Kind: RoomConflict, Message: "room already booked for this slot", ExistingEntryID: other.ID})
		}
	}

	return conflicts
}

func (d *Detector) checkQualification(candidate models.ScheduleEntry) (Conflict, bool) {
	class, ok := d.snapshot.Class(candidate.ClassID)
	if !ok {
		return Conflict{}, false
	}
	for _, q := range d.snapshot.QualificationsFor(candidate.SubjectID) {
		if q.TeacherID == candidate.TeacherID && q.AllowedGrades.Allows(class.Grade) {
			return Conflict{}, false
		}
	}
	return Conflict{Kind: QualificationConflict, Message: fmt.Sprintf("teacher %s is not qualified for subject %s at grade %d", candidate.TeacherID, candidate.SubjectID, class.Grade)}, true
}

func (d *Detector) checkAvailability(candidate models.ScheduleEntry, slot models.TimeSlot) (Conflict, bool) {
	kind, ok := d.snapshot.Availability(candidate.TeacherID, slot.Weekday(), slot.Period)
	if !ok || kind != models.AvailabilityBlocked {
		return Conflict{}, false
	}
	return Conflict{Kind: AvailabilityConflict, Message: fmt.Sprintf("teacher %s is blocked at weekday %d period %d", candidate.TeacherID, slot.Weekday(), slot.Period)}, true
}

// Scan returns, for every entry, the conflicts it participates in against
// the rest of the set — the "list all conflicts" operation of spec.md §4.2.
func (d *Detector) Scan(entries []models.ScheduleEntry) map[string][]Conflict {
	result := make(map[string][]Conflict)
	for _, entry := range entries {
		rest := make([]models.ScheduleEntry, 0, len(entries)-1)
		for _, other := range entries {
			if other.ID != entry.ID {
				rest = append(rest, other)
			}
		}
		if conflicts := d.ValidateCandidate(entry, rest); len(conflicts) > 0 {
			result[entry.ID] = conflicts
		}
	}
	return result
}

// ValidateBatch checks candidates for the atomic bulk-create operation of
// spec.md §4.2: every candidate is checked against both the existing
// schedule and every candidate before it in the batch, so one candidate
// conflicting with another later in the same batch is still caught. It
// returns true only when every candidate is admissible; otherwise nothing
// should be written.
func (d *Detector) ValidateBatch(candidates []models.ScheduleEntry, existing []models.ScheduleEntry) (bool, map[int][]Conflict) {
	violations := make(map[int][]Conflict)
	accepted := append([]models.ScheduleEntry{}, existing...)
	for i, candidate := range candidates {
		conflicts := d.ValidateCandidate(candidate, accepted)
		if len(conflicts) > 0 {
			violations[i] = conflicts
		}
		accepted = append(accepted, candidate)
	}
	return len(violations) == 0, violations
}
