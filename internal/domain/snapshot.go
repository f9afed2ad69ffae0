// Package domain builds and freezes the Domain Snapshot (spec.md §4.1):
// a read-only, in-memory view of one solve's inputs, built once from the
// persistence-facing reader interfaces and shared by every later stage.
package domain

import (
	"context"
	"sort"
	"time"

	"github.com/grundschule/timetabler-core/internal/models"
)

// QualifiedTeacher is one row of the qual[s] index: a teacher qualified for
// a subject, at the rank the objective compiler and constraint compiler
// both rely on (PRIMARY before SECONDARY before SUBSTITUTE).
type QualifiedTeacher struct {
	TeacherID       string
	Level           models.QualificationLevel
	AllowedGrades   models.GradeMask
	MaxHoursPerWeek *int
}

type availKey struct {
	teacherID string
	weekday   int
	period    int
}

// Snapshot is the frozen, read-only view of one solve's domain inputs. Its
// fields are unexported and it exposes no mutator: once BuildSnapshot
// returns, every later stage (C3-C8) receives *Snapshot by pointer but can
// never obtain a writable reference (spec.md §9, "Global mutable session
// objects").
type Snapshot struct {
	referenceDate time.Time

	teachers map[string]models.Teacher
	classes  map[string]models.Class
	subjects map[string]models.Subject
	slots    map[string]models.TimeSlot

	teachingSlots []models.TimeSlot
	qualBySubject map[string][]QualifiedTeacher
	availability  map[availKey]models.AvailabilityKind
	pinned        []models.ScheduleEntry
}

// BuildSnapshot constructs a Snapshot from the given readers, resolving
// qualification and availability validity against referenceDate (spec.md
// §4.1; defaults to today when the zero value is passed).
func BuildSnapshot(ctx context.Context, readers Readers, referenceDate time.Time) (*Snapshot, error) {
	if referenceDate.IsZero() {
		referenceDate = time.Now().UTC()
	}

	teacherRows, err := readers.Teachers.ListTeachers(ctx)
	if err != nil {
		return nil, err
	}
	classRows, err := readers.Classes.ListClasses(ctx)
	if err != nil {
		return nil, err
	}
	subjectRows, err := readers.Subjects.ListSubjects(ctx)
	if err != nil {
		return nil, err
	}
	slotRows, err := readers.TimeSlots.ListTimeSlots(ctx)
	if err != nil {
		return nil, err
	}
	availRows, err := readers.Availability.ListAvailability(ctx)
	if err != nil {
		return nil, err
	}
	qualRows, err := readers.Qualifications.ListQualifications(ctx)
	if err != nil {
		return nil, err
	}
	pinnedRows, err := readers.Pinned.ListPinned(ctx)
	if err != nil {
		return nil, err
	}

	s := &Snapshot{
		referenceDate: referenceDate,
		teachers:      make(map[string]models.Teacher, len(teacherRows)),
		classes:       make(map[string]models.Class, len(classRows)),
		subjects:      make(map[string]models.Subject, len(subjectRows)),
		slots:         make(map[string]models.TimeSlot, len(slotRows)),
		qualBySubject: make(map[string][]QualifiedTeacher),
		availability:  make(map[availKey]models.AvailabilityKind, len(availRows)),
		pinned:        pinnedRows,
	}

	for _, t := range teacherRows {
		s.teachers[t.ID] = t
	}
	for _, c := range classRows {
		s.classes[c.ID] = c
	}
	for _, sub := range subjectRows {
		s.subjects[sub.ID] = sub
	}
	for _, slot := range slotRows {
		s.slots[slot.ID] = slot
		if !slot.IsBreak {
			s.teachingSlots = append(s.teachingSlots, slot)
		}
	}
	sort.Slice(s.teachingSlots, func(i, j int) bool {
		a, b := s.teachingSlots[i], s.teachingSlots[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		return a.Period < b.Period
	})

	for _, q := range qualRows {
		if !q.ValidAt(referenceDate) {
			continue
		}
		s.qualBySubject[q.SubjectID] = append(s.qualBySubject[q.SubjectID], QualifiedTeacher{
			TeacherID:       q.TeacherID,
			Level:           q.Level,
			AllowedGrades:   q.AllowedGrades,
			MaxHoursPerWeek: q.MaxHoursPerWeek,
		})
	}
	for subjectID := range s.qualBySubject {
		list := s.qualBySubject[subjectID]
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Level.Rank() < list[j].Level.Rank()
		})
		s.qualBySubject[subjectID] = list
	}

	// Later rows win when more than one availability row covers the same
	// (teacher, weekday, period) at the reference date; rows arrive ordered
	// by effective_from ascending from the repository, so the most recent
	// applicable window takes precedence.
	for _, a := range availRows {
		if !a.ValidAt(referenceDate) {
			continue
		}
		s.availability[availKey{a.TeacherID, a.Weekday, a.Period}] = a.Kind
	}

	return s, nil
}

// ReferenceDate returns the date qualification and availability validity
// were resolved against.
func (s *Snapshot) ReferenceDate() time.Time { return s.referenceDate }

// Teacher looks up a teacher by id.
func (s *Snapshot) Teacher(id string) (models.Teacher, bool) {
	t, ok := s.teachers[id]
	return t, ok
}

// Teachers returns every teacher, sorted by id.
func (s *Snapshot) Teachers() []models.Teacher {
	out := make([]models.Teacher, 0, len(s.teachers))
	for _, t := range s.teachers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Class looks up a class by id.
func (s *Snapshot) Class(id string) (models.Class, bool) {
	c, ok := s.classes[id]
	return c, ok
}

// Classes returns every class, sorted by id.
func (s *Snapshot) Classes() []models.Class {
	out := make([]models.Class, 0, len(s.classes))
	for _, c := range s.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Subject looks up a subject by id.
func (s *Snapshot) Subject(id string) (models.Subject, bool) {
	sub, ok := s.subjects[id]
	return sub, ok
}

// Subjects returns every subject, sorted by id.
func (s *Snapshot) Subjects() []models.Subject {
	out := make([]models.Subject, 0, len(s.subjects))
	for _, sub := range s.subjects {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// TimeSlot looks up a time slot by id, including break slots.
func (s *Snapshot) TimeSlot(id string) (models.TimeSlot, bool) {
	slot, ok := s.slots[id]
	return slot, ok
}

// TeachingSlots returns every non-break time slot ordered by (day, period).
func (s *Snapshot) TeachingSlots() []models.TimeSlot {
	return s.teachingSlots
}

// QualificationsFor returns the teachers qualified for a subject, ordered
// PRIMARY -> SECONDARY -> SUBSTITUTE, restricted to rows valid at the
// snapshot's reference date.
func (s *Snapshot) QualificationsFor(subjectID string) []QualifiedTeacher {
	return s.qualBySubject[subjectID]
}

// Availability resolves a teacher's availability kind at (weekday, period).
// ok is false when no row covers that slot at the reference date — spec.md
// §4.1's "∅" case — callers treat an unresolved slot as not BLOCKED.
func (s *Snapshot) Availability(teacherID string, weekday, period int) (kind models.AvailabilityKind, ok bool) {
	kind, ok = s.availability[availKey{teacherID, weekday, period}]
	return kind, ok
}

// Pinned returns the fixed/preserved schedule entries seeded into this
// solve (spec.md §4.3, "preserve_existing").
func (s *Snapshot) Pinned() []models.ScheduleEntry {
	return s.pinned
}
