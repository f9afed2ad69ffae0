// Package constraints implements the Constraint Compiler (C4): the closed,
// normative set of hard constraints from spec.md §4.4, emitted through the
// solver.Backend adapter so no concrete CP-SAT type leaks into this package.
package constraints

import (
	"fmt"
	"sort"

	"github.com/grundschule/timetabler-core/internal/domain"
	"github.com/grundschule/timetabler-core/internal/solver"
	"github.com/grundschule/timetabler-core/internal/variables"
)

// DemandKey identifies a (class, subject) pair for the explicit demand
// model resolving spec.md §9's "undefined demand model" Open Question.
type DemandKey struct {
	ClassID   string
	SubjectID string
}

// Demand maps (class, subject) to the exact weekly hour count the solver
// must assign. A pair absent from the map defaults to 0, per spec.md §9's
// own recommendation.
type Demand map[DemandKey]int

// Compile emits every hard constraint family of spec.md §4.4 against the
// given variable set. Families 3, 4, and 5 (availability, qualification,
// break enforcement) are already satisfied by construction — variables.Build
// never creates a variable for a blocked, unqualified, or break tuple — so
// they need no redundant assertion here; the sparse encoding itself is the
// proof. Family 11 (fixed assignments) is not emitted here either:
// variables.BuildFiltered fixes each pinned variable to 1 when it creates it.
func Compile(snapshot *domain.Snapshot, vars map[variables.Key]solver.BoolVar, demand Demand, backend solver.Backend) {
	compileTeacherUniqueness(vars, backend)
	compileClassUniqueness(vars, backend)
	compileWeeklyTeacherCap(snapshot, vars, backend)
	compilePerSubjectTeacherCap(snapshot, vars, backend)
	compileDailyTeacherCap(snapshot, vars, backend)
	compilePartTimeWorkingDays(snapshot, vars, backend)
	compileRunLengthBound(snapshot, vars, backend)
	compileDemand(snapshot, vars, demand, backend)
}

// compileTeacherUniqueness: for each (t, τ), at most one (c, s) may use it.
func compileTeacherUniqueness(vars map[variables.Key]solver.BoolVar, backend solver.Backend) {
	groups := make(map[[2]string][]solver.Term)
	for key, v := range vars {
		g := [2]string{key.TeacherID, key.TimeSlotID}
		groups[g] = append(groups[g], solver.Term{Var: v, Coeff: 1})
	}
	forEachSortedGroup(groups, func(terms []solver.Term) {
		backend.AddLinearLE(terms, 1)
	})
}

// compileClassUniqueness: for each (c, τ), at most one (t, s) may use it.
func compileClassUniqueness(vars map[variables.Key]solver.BoolVar, backend solver.Backend) {
	groups := make(map[[2]string][]solver.Term)
	for key, v := range vars {
		g := [2]string{key.ClassID, key.TimeSlotID}
		groups[g] = append(groups[g], solver.Term{Var: v, Coeff: 1})
	}
	forEachSortedGroup(groups, func(terms []solver.Term) {
		backend.AddLinearLE(terms, 1)
	})
}

// compileWeeklyTeacherCap: Σ x[t,·,·,·] <= teacher.max_hours_per_week.
func compileWeeklyTeacherCap(snapshot *domain.Snapshot, vars map[variables.Key]solver.BoolVar, backend solver.Backend) {
	groups := make(map[string][]solver.Term)
	for key, v := range vars {
		groups[key.TeacherID] = append(groups[key.TeacherID], solver.Term{Var: v, Coeff: 1})
	}
	for _, teacherID := range sortedKeys1(groups) {
		teacher, ok := snapshot.Teacher(teacherID)
		if !ok {
			continue
		}
		backend.AddLinearLE(groups[teacherID], int64(teacher.MaxHoursPerWeek))
	}
}

// compilePerSubjectTeacherCap: Σ x[t,·,s,·] <= qual.max_hours_per_week, only
// for qualifications that set a per-pair cap.
func compilePerSubjectTeacherCap(snapshot *domain.Snapshot, vars map[variables.Key]solver.BoolVar, backend solver.Backend) {
	caps := make(map[[2]string]int)
	for _, subject := range snapshot.Subjects() {
		for _, qual := range snapshot.QualificationsFor(subject.ID) {
			if qual.MaxHoursPerWeek != nil {
				caps[[2]string{qual.TeacherID, subject.ID}] = *qual.MaxHoursPerWeek
			}
		}
	}
	groups := make(map[[2]string][]solver.Term)
	for key, v := range vars {
		g := [2]string{key.TeacherID, key.SubjectID}
		if _, capped := caps[g]; capped {
			groups[g] = append(groups[g], solver.Term{Var: v, Coeff: 1})
		}
	}
	forEachSortedGroupWithBound(groups, caps, backend)
}

// compileDailyTeacherCap: Σ_{τ: day(τ)=day} x[t,·,·,τ] <= D, D = 6 full-time
// / 3 part-time.
func compileDailyTeacherCap(snapshot *domain.Snapshot, vars map[variables.Key]solver.BoolVar, backend solver.Backend) {
	slotDay := slotDayIndex(snapshot)
	groups := make(map[[2]string][]solver.Term)
	for key, v := range vars {
		day, ok := slotDay[key.TimeSlotID]
		if !ok {
			continue
		}
		g := [2]string{key.TeacherID, fmt.Sprintf("%d", day)}
		groups[g] = append(groups[g], solver.Term{Var: v, Coeff: 1})
	}
	for _, g := range sortedKeys2(groups) {
		teacher, ok := snapshot.Teacher(g[0])
		if !ok {
			continue
		}
		backend.AddLinearLE(groups[g], int64(teacher.DailyCap()))
	}
}

// compilePartTimeWorkingDays introduces auxiliary y[t,day] per spec.md §4.4
// item 9: y >= x for every x that day, y <= Σx that day, Σ_day y <= 3.
func compilePartTimeWorkingDays(snapshot *domain.Snapshot, vars map[variables.Key]solver.BoolVar, backend solver.Backend) {
	slotDay := slotDayIndex(snapshot)

	dayGroups := make(map[[2]string][]solver.Term) // (teacher, day) -> terms
	for key, v := range vars {
		day, ok := slotDay[key.TimeSlotID]
		if !ok {
			continue
		}
		g := [2]string{key.TeacherID, fmt.Sprintf("%d", day)}
		dayGroups[g] = append(dayGroups[g], solver.Term{Var: v, Coeff: 1})
	}

	yByTeacher := make(map[string][]solver.Term)
	for _, g := range sortedKeys2(dayGroups) {
		teacher, ok := snapshot.Teacher(g[0])
		if !ok || !teacher.PartTime {
			continue
		}
		terms := dayGroups[g]
		y := backend.NewBoolVar(fmt.Sprintf("y[%s,day=%s]", g[0], g[1]))

		for _, t := range terms {
			backend.AddLinearLE([]solver.Term{{Var: t.Var, Coeff: 1}, {Var: y, Coeff: -1}}, 0)
		}
		geTerms := append(append([]solver.Term{}, terms...), solver.Term{Var: y, Coeff: -1})
		backend.AddLinearGE(geTerms, 0)

		yByTeacher[g[0]] = append(yByTeacher[g[0]], solver.Term{Var: y, Coeff: 1})
	}
	for _, teacherID := range sortedKeys1(yByTeacher) {
		if days, bounded := mustPartTimeCap(snapshot, teacherID); bounded {
			backend.AddLinearLE(yByTeacher[teacherID], int64(days))
		}
	}
}

func mustPartTimeCap(snapshot *domain.Snapshot, teacherID string) (int, bool) {
	teacher, ok := snapshot.Teacher(teacherID)
	if !ok {
		return 0, false
	}
	return teacher.WorkingDaysCap()
}

// compileRunLengthBound: for each (class, subject, day) and each window of
// three consecutive non-break periods, Σ x over that triple <= 2 (spec.md
// §4.4 item 10).
func compileRunLengthBound(snapshot *domain.Snapshot, vars map[variables.Key]solver.BoolVar, backend solver.Backend) {
	slotsByDay := make(map[int][]string) // day -> slot ids ordered by period
	periodOf := make(map[string]int)
	for _, slot := range snapshot.TeachingSlots() {
		slotsByDay[slot.Day] = append(slotsByDay[slot.Day], slot.ID)
		periodOf[slot.ID] = slot.Period
	}

	termsByKey := make(map[[3]string][]solver.Term) // (class, subject, slot) -> terms over teachers
	for key, v := range vars {
		g := [3]string{key.ClassID, key.SubjectID, key.TimeSlotID}
		termsByKey[g] = append(termsByKey[g], solver.Term{Var: v, Coeff: 1})
	}

	classSubjectPairs := make(map[[2]string]bool)
	for key := range vars {
		classSubjectPairs[[2]string{key.ClassID, key.SubjectID}] = true
	}

	for _, pair := range sortedKeys2Set(classSubjectPairs) {
		for _, day := range sortedIntKeys(slotsByDay) {
			slots := slotsByDay[day]
			for i := 0; i+2 < len(slots); i++ {
				triple := slots[i : i+3]
				if !consecutivePeriods(triple, periodOf) {
					continue
				}
				var triTerms []solver.Term
				for _, slotID := range triple {
					triTerms = append(triTerms, termsByKey[[3]string{pair[0], pair[1], slotID}]...)
				}
				if len(triTerms) > 0 {
					backend.AddLinearLE(triTerms, 2)
				}
			}
		}
	}
}

func consecutivePeriods(slotIDs []string, periodOf map[string]int) bool {
	for i := 1; i < len(slotIDs); i++ {
		if periodOf[slotIDs[i]] != periodOf[slotIDs[i-1]]+1 {
			return false
		}
	}
	return true
}

// compileDemand resolves spec.md §9's demand Open Question: an explicit
// demand[class,subject] input compiled into equality constraints, defaulting
// to 0 when a pair is absent from the map.
func compileDemand(snapshot *domain.Snapshot, vars map[variables.Key]solver.BoolVar, demand Demand, backend solver.Backend) {
	groups := make(map[DemandKey][]solver.Term)
	for key, v := range vars {
		dk := DemandKey{ClassID: key.ClassID, SubjectID: key.SubjectID}
		groups[dk] = append(groups[dk], solver.Term{Var: v, Coeff: 1})
	}
	for _, dk := range sortedDemandKeys(groups) {
		n := demand[dk]
		backend.AddLinearEQ(groups[dk], int64(n))
	}
}

func slotDayIndex(snapshot *domain.Snapshot) map[string]int {
	idx := make(map[string]int)
	for _, slot := range snapshot.TeachingSlots() {
		idx[slot.ID] = slot.Day
	}
	return idx
}

func forEachSortedGroup(groups map[[2]string][]solver.Term, f func(terms []solver.Term)) {
	for _, g := range sortedKeys2(groups) {
		f(groups[g])
	}
}

func forEachSortedGroupWithBound(groups map[[2]string][]solver.Term, bounds map[[2]string]int, backend solver.Backend) {
	for _, g := range sortedKeys2(groups) {
		backend.AddLinearLE(groups[g], int64(bounds[g]))
	}
}

func sortedKeys1(m map[string][]solver.Term) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedKeys2(m map[[2]string][]solver.Term) [][2]string {
	out := make([][2]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out
}

func sortedKeys2Set(m map[[2]string]bool) [][2]string {
	out := make([][2]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out
}

func sortedIntKeys(m map[int][]string) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func sortedDemandKeys(m map[DemandKey][]solver.Term) []DemandKey {
	out := make([]DemandKey, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ClassID != out[j].ClassID {
			return out[i].ClassID < out[j].ClassID
		}
		return out[i].SubjectID < out[j].SubjectID
	})
	return out
}
