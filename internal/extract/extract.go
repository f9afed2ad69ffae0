// Package extract implements the Solution Extractor (C7): reading solved
// variable values back into concrete models.ScheduleEntry rows.
package extract

import (
	"sort"

	"github.com/google/uuid"

	"github.com/grundschule/timetabler-core/internal/domain"
	"github.com/grundschule/timetabler-core/internal/models"
	"github.com/grundschule/timetabler-core/internal/solver"
	"github.com/grundschule/timetabler-core/internal/variables"
)

// ValueReader is the minimal surface extract needs from a solved backend —
// satisfied by both solver.Driver and any solver.Backend directly.
type ValueReader interface {
	Value(v solver.BoolVar) bool
}

// FromBackend walks every decision variable with a solved value of true and
// builds the resulting schedule. Pinned entries keep their original room and
// week type rather than inventing new ones, since they were never a
// decision the solver made (spec.md §4.3, §4.7). The result is sorted by
// (day, period, class, teacher) for deterministic output (spec.md §4.6
// property 9, §8).
func FromBackend(snapshot *domain.Snapshot, vars map[variables.Key]solver.BoolVar, reader ValueReader, weekType models.WeekType) []models.ScheduleEntry {
	pinnedByKey := make(map[variables.Key]models.ScheduleEntry)
	for _, p := range snapshot.Pinned() {
		key := variables.Key{TeacherID: p.TeacherID, ClassID: p.ClassID, SubjectID: p.SubjectID, TimeSlotID: p.TimeSlotID}
		pinnedByKey[key] = p
	}

	var entries []models.ScheduleEntry
	for key, v := range vars {
		if !reader.Value(v) {
			continue
		}
		if pinned, ok := pinnedByKey[key]; ok {
			entries = append(entries, pinned)
			continue
		}
		entries = append(entries, models.ScheduleEntry{
			ID:         uuid.NewString(),
			ClassID:    key.ClassID,
			TeacherID:  key.TeacherID,
			SubjectID:  key.SubjectID,
			TimeSlotID: key.TimeSlotID,
			WeekType:   weekType,
		})
	}

	sortEntries(snapshot, entries)
	return entries
}

func sortEntries(snapshot *domain.Snapshot, entries []models.ScheduleEntry) {
	slotOf := func(id string) models.TimeSlot {
		slot, _ := snapshot.TimeSlot(id)
		return slot
	}
	sort.Slice(entries, func(i, j int) bool {
		si, sj := slotOf(entries[i].TimeSlotID), slotOf(entries[j].TimeSlotID)
		if si.Day != sj.Day {
			return si.Day < sj.Day
		}
		if si.Period != sj.Period {
			return si.Period < sj.Period
		}
		if entries[i].ClassID != entries[j].ClassID {
			return entries[i].ClassID < entries[j].ClassID
		}
		return entries[i].TeacherID < entries[j].TeacherID
	})
}
