// Package generator orchestrates one end-to-end solve: build Domain
// Snapshot, compile variables/constraints/objective, drive the solver,
// extract and score the result, and persist it — the external operations of
// spec.md §6.
package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/grundschule/timetabler-core/internal/conflict"
	"github.com/grundschule/timetabler-core/internal/constraints"
	"github.com/grundschule/timetabler-core/internal/domain"
	"github.com/grundschule/timetabler-core/internal/dto"
	"github.com/grundschule/timetabler-core/internal/extract"
	"github.com/grundschule/timetabler-core/internal/models"
	"github.com/grundschule/timetabler-core/internal/objective"
	"github.com/grundschule/timetabler-core/internal/quality"
	"github.com/grundschule/timetabler-core/internal/solver"
	"github.com/grundschule/timetabler-core/internal/variables"
	"github.com/grundschule/timetabler-core/pkg/cache"
	"github.com/grundschule/timetabler-core/pkg/errors"
	"github.com/grundschule/timetabler-core/pkg/metrics"
)

// BackendFactory constructs a fresh, empty solver.Backend for one
// sub-instance solve. Each call to Generate/Optimize, and each of its two
// week-type sub-instances, gets its own Backend — no package-level or
// cross-solve shared state (spec.md §9, §5).
type BackendFactory func() solver.Backend

// Service is the core's single orchestration entry point. It holds only
// read-only collaborators set once at construction.
type Service struct {
	readers domain.Readers
	writer  domain.ScheduleWriter
	backend BackendFactory
	logger  *zap.Logger
	metrics *metrics.SolveMetrics
	cache   *cache.SolveResultCache
	weights objective.Weights
	validate *validator.Validate
}

// NewService builds a Service. cache may be nil to run with caching
// disabled; metrics may be nil to run with instrumentation disabled.
func NewService(readers domain.Readers, writer domain.ScheduleWriter, backend BackendFactory, logger *zap.Logger, m *metrics.SolveMetrics, resultCache *cache.SolveResultCache) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		readers: readers,
		writer:  writer,
		backend: backend,
		logger:  logger,
		metrics: m,
		cache:   resultCache,
		weights: objective.DefaultWeights(),
		validate: validator.New(),
	}
}

// Generate implements spec.md §6 item 1.
func (s *Service) Generate(ctx context.Context, cfg dto.GenerateConfig) (*dto.SolveResult, error) {
	if err := s.validate.Struct(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation.Code, errors.ErrValidation.Status, errors.ErrValidation.Message)
	}

	readers := s.readers
	readers.Pinned = &conditionalPinnedReader{inner: s.readers.Pinned, enabled: cfg.PreserveExisting}

	snapshot, err := domain.BuildSnapshot(ctx, readers, cfg.ReferenceDate)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal.Code, errors.ErrInternal.Status, "failed to build domain snapshot")
	}

	demand := toConstraintDemand(cfg.Demand)

	snapshotHash := hashSnapshot(snapshot)
	cfgHash := hashConfig(cfg)
	var cached dto.SolveResult
	if ok, err := s.cache.Get(ctx, snapshotHash, cfgHash, &cached); err == nil && ok {
		s.logger.Info("solve result cache hit", zap.String("snapshot_hash", snapshotHash))
		return &cached, nil
	}

	start := time.Now()

	outcomeA, entriesA, varCountA, err := s.solveWeekType(ctx, snapshot, demand, cfg, models.WeekA)
	if err != nil {
		return nil, err
	}
	outcomeB, entriesB, varCountB, err := s.solveWeekType(ctx, snapshot, demand, cfg, models.WeekB)
	if err != nil {
		return nil, err
	}

	merged := mergeWeekEntries(entriesA, entriesB)
	detector := conflict.NewDetector(snapshot)
	conflicts := detector.Scan(merged)
	scored := quality.Score(snapshot, merged, conflicts)

	result := &dto.SolveResult{
		Entries:            merged,
		Quality:            scored,
		GenerationDuration: time.Since(start),
		ObjectiveValue:     outcomeA.ObjectiveValue + outcomeB.ObjectiveValue,
		Feasible:           outcomeA.Feasible && outcomeB.Feasible,
		Cancelled:          outcomeA.Cancelled || outcomeB.Cancelled,
		TimedOut:           outcomeA.TimedOut || outcomeB.TimedOut,
	}
	result.SatisfiedConstraints, result.ViolatedConstraints = constraintNames(conflicts)

	switch {
	case result.Cancelled:
		return result, errors.Clone(errors.ErrCancelled, "")
	case outcomeA.Infeasible || outcomeB.Infeasible:
		return result, errors.Clone(errors.ErrInfeasible, "")
	case !result.Feasible:
		return result, errors.Clone(errors.ErrTimeout, "")
	case len(conflicts) > 0:
		s.logger.Error("solver produced a schedule with conflicts", zap.Int("conflict_count", len(conflicts)))
		return result, errors.Clone(errors.ErrInternal, "solver returned a schedule that violates a hard invariant")
	}

	if err := s.persist(ctx, cfg, snapshot, merged); err != nil {
		return result, errors.Wrap(err, errors.ErrPersistence.Code, errors.ErrPersistence.Status, errors.ErrPersistence.Message)
	}

	varCount := varCountA + varCountB
	s.logger.Info("generate completed",
		zap.Int("entry_count", len(merged)),
		zap.Int("variable_count", varCount),
		zap.Float64("quality_score", scored.Score),
	)

	_ = s.cache.Set(ctx, snapshotHash, cfgHash, result)
	return result, nil
}

// Optimize is Generate with preserve_existing forced true and
// clear_existing forced false (spec.md §6 item 2) — no separate code path
// to drift out of sync with Generate.
func (s *Service) Optimize(ctx context.Context, cfg dto.GenerateConfig) (*dto.SolveResult, error) {
	cfg.PreserveExisting = true
	cfg.ClearExisting = false
	return s.Generate(ctx, cfg)
}

// persist writes the solved schedule. On clear_existing, the full set
// replaces whatever the store held. Otherwise only entries that did not
// already exist as pinned rows are inserted — pinned entries are, by
// definition, already persisted, so re-inserting them would collide on
// their primary key.
func (s *Service) persist(ctx context.Context, cfg dto.GenerateConfig, snapshot *domain.Snapshot, entries []models.ScheduleEntry) error {
	if cfg.ClearExisting {
		return s.writer.ReplaceSchedule(ctx, entries)
	}

	pinnedIDs := make(map[string]bool)
	for _, p := range snapshot.Pinned() {
		pinnedIDs[p.ID] = true
	}
	var fresh []models.ScheduleEntry
	for _, e := range entries {
		if !pinnedIDs[e.ID] {
			fresh = append(fresh, e)
		}
	}
	return s.writer.BulkInsert(ctx, fresh)
}

// solveWeekType drives one of the two independent sub-instances (A∪ALL or
// B∪ALL) that realize spec.md §9's resolved week-type joint-solving
// decision: both sub-instances see the full candidate variable space, but
// each fixes only the pinned entries whose week_type collides with its own,
// and explicitly excludes the other sub-instance's own pinned entries so
// the solver cannot silently reuse them.
func (s *Service) solveWeekType(ctx context.Context, snapshot *domain.Snapshot, demand constraints.Demand, cfg dto.GenerateConfig, weekType models.WeekType) (solver.Outcome, []models.ScheduleEntry, int, error) {
	backend := s.backend()

	ownsPinned := func(p models.ScheduleEntry) bool { return p.WeekType.Collides(weekType) }
	vars := variables.BuildFiltered(snapshot, backend, ownsPinned)

	for _, p := range snapshot.Pinned() {
		if ownsPinned(p) {
			continue
		}
		key := variables.Key{TeacherID: p.TeacherID, ClassID: p.ClassID, SubjectID: p.SubjectID, TimeSlotID: p.TimeSlotID}
		if v, ok := vars[key]; ok {
			backend.FixBoolVar(v, false)
		}
	}

	constraints.Compile(snapshot, vars, demand, backend)
	objective.Compile(snapshot, vars, s.weights, backend)

	driver := solver.NewDriver(backend, s.logger, s.metrics)

	seed := int64(0)
	if cfg.RandomSeed != nil {
		seed = *cfg.RandomSeed
	}
	timeLimit := time.Duration(cfg.TimeLimitSeconds) * time.Second

	outcome, err := driver.Solve(ctx, "generate:"+string(weekType), timeLimit, seed, len(vars))
	if err != nil {
		return outcome, nil, len(vars), errors.Wrap(err, errors.ErrInternal.Code, errors.ErrInternal.Status, "solver backend failed")
	}
	if outcome.Cancelled || outcome.Infeasible || (!outcome.Feasible) {
		return outcome, nil, len(vars), nil
	}

	entries := extract.FromBackend(snapshot, vars, driver, weekType)
	return outcome, entries, len(vars), nil
}

// mergeWeekEntries combines the A∪ALL and B∪ALL sub-instance results,
// deduping ALL-type entries that both sub-instances independently
// re-derive from the same shared pinned variables.
func mergeWeekEntries(a, b []models.ScheduleEntry) []models.ScheduleEntry {
	seen := make(map[string]bool)
	var merged []models.ScheduleEntry
	for _, e := range append(append([]models.ScheduleEntry{}, a...), b...) {
		k := e.TeacherID + "|" + e.ClassID + "|" + e.SubjectID + "|" + e.TimeSlotID + "|" + string(e.WeekType)
		if seen[k] {
			continue
		}
		seen[k] = true
		merged = append(merged, e)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].TimeSlotID != merged[j].TimeSlotID {
			return merged[i].TimeSlotID < merged[j].TimeSlotID
		}
		if merged[i].ClassID != merged[j].ClassID {
			return merged[i].ClassID < merged[j].ClassID
		}
		return merged[i].TeacherID < merged[j].TeacherID
	})
	return merged
}

func toConstraintDemand(d map[dto.DemandEntry]int) constraints.Demand {
	out := make(constraints.Demand, len(d))
	for k, v := range d {
		out[constraints.DemandKey{ClassID: k.ClassID, SubjectID: k.SubjectID}] = v
	}
	return out
}

func constraintNames(conflicts map[string][]conflict.Conflict) (satisfied, violated []string) {
	all := []string{
		"teacher_uniqueness", "class_uniqueness", "availability", "qualification",
		"break_exclusion", "weekly_cap", "daily_cap", "part_time_days", "run_length_bound",
	}
	violatedSet := make(map[string]bool)
	for _, cs := range conflicts {
		for _, c := range cs {
			switch c.Kind {
			case conflict.TeacherConflict:
				violatedSet["teacher_uniqueness"] = true
			case conflict.ClassConflict:
				violatedSet["class_uniqueness"] = true
			case conflict.AvailabilityConflict:
				violatedSet["availability"] = true
			case conflict.QualificationConflict:
				violatedSet["qualification"] = true
			case conflict.BreakConflict:
				violatedSet["break_exclusion"] = true
			}
		}
	}
	for _, name := range all {
		if violatedSet[name] {
			violated = append(violated, name)
		} else {
			satisfied = append(satisfied, name)
		}
	}
	return satisfied, violated
}

// conditionalPinnedReader forwards to the underlying reader only when
// enabled (preserve_existing=true); otherwise a solve sees no pinned
// entries at all (spec.md §6 item 1: "else if preserve_existing, all
// current entries are pinned").
type conditionalPinnedReader struct {
	inner   domain.PinnedEntryReader
	enabled bool
}

func (r *conditionalPinnedReader) ListPinned(ctx context.Context) ([]models.ScheduleEntry, error) {
	if !r.enabled || r.inner == nil {
		return nil, nil
	}
	return r.inner.ListPinned(ctx)
}

func hashSnapshot(snapshot *domain.Snapshot) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	_ = enc.Encode(snapshot.Teachers())
	_ = enc.Encode(snapshot.Classes())
	_ = enc.Encode(snapshot.Subjects())
	_ = enc.Encode(snapshot.TeachingSlots())
	_ = enc.Encode(snapshot.Pinned())
	for _, subject := range snapshot.Subjects() {
		_ = enc.Encode(snapshot.QualificationsFor(subject.ID))
	}
	for _, teacher := range snapshot.Teachers() {
		for weekday := 0; weekday <= 4; weekday++ {
			for period := 1; period <= 8; period++ {
				if kind, ok := snapshot.Availability(teacher.ID, weekday, period); ok {
					_ = enc.Encode([]any{teacher.ID, weekday, period, kind})
				}
			}
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

func hashConfig(cfg dto.GenerateConfig) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	_ = enc.Encode(cfg)
	// cfg.Demand carries json:"-" (it is not part of spec.md's wire config),
	// so it is hashed explicitly to keep the cache key sensitive to it.
	demandKeys := make([]string, 0, len(cfg.Demand))
	for k := range cfg.Demand {
		demandKeys = append(demandKeys, fmt.Sprintf("%s/%s=%d", k.ClassID, k.SubjectID, cfg.Demand[k]))
	}
	sort.Strings(demandKeys)
	for _, k := range demandKeys {
		_, _ = h.Write([]byte(k))
	}
	return hex.EncodeToString(h.Sum(nil))
}
