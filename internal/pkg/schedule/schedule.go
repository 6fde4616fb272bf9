// Package schedule holds the pure calendar math for project step schedules:
// deriving the initial plan from a product's step list, deciding what a
// status transition changes, and re-baselining downstream steps when actual
// execution drifts from plan. Nothing in here touches storage.
package schedule

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/obraplan/obraplan/internal/pkg/apperr"
)

// Step is one product step as the calculator sees it.
type Step struct {
	ID    uuid.UUID
	Days  int
	Order int
}

// Entry is one planned interval of the initial schedule.
type Entry struct {
	ProductStepID uuid.UUID
	PlannedStart  time.Time
	PlannedEnd    time.Time
}

// Calculate walks the steps in order and lays them out back to back from
// start: each step begins where the previous one ends. Calendar days only,
// no weekend or holiday handling. Zero steps yields an empty schedule.
func Calculate(start time.Time, steps []Step) []Entry {
	sorted := make([]Step, len(steps))
	copy(sorted, steps)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	entries := make([]Entry, 0, len(sorted))
	cursor := start
	for _, st := range sorted {
		end := cursor.AddDate(0, 0, st.Days)
		entries = append(entries, Entry{
			ProductStepID: st.ID,
			PlannedStart:  cursor,
			PlannedEnd:    end,
		})
		cursor = end
	}
	return entries
}

// DiffDays is the signed whole-day variance between an actual and a planned
// end, floored toward negative infinity: +2 means two days late, -2 two days
// early.
func DiffDays(actualEnd, plannedEnd time.Time) int {
	return int(math.Floor(actualEnd.Sub(plannedEnd).Hours() / 24))
}

// TargetStatus is a status value a caller may drive a step to. There is no
// way back to pending.
type TargetStatus string

const (
	TargetInProgress TargetStatus = "in_progress"
	TargetCompleted  TargetStatus = "completed"
)

func (t TargetStatus) Valid() bool {
	return t == TargetInProgress || t == TargetCompleted
}

// StepState is the current state of the schedule row being transitioned.
type StepState struct {
	Status       string
	PlannedStart time.Time
	PlannedEnd   time.Time
	ActualStart  *time.Time
}

// Transition is what a status change writes to the step, plus the shift the
// rest of the project must absorb.
type Transition struct {
	Status      TargetStatus
	ActualStart *time.Time // nil means leave untouched
	ActualEnd   *time.Time
	DiffDays    int
	Shift       bool // when true, later steps move by DiffDays
}

// BuildTransition decides the effect of driving a step to target. actual
// overrides now as the observed date when provided.
//
// in_progress sets the actual start only if it was never set, so repeating
// the transition never overwrites the first observation. completed sets the
// actual end and, if the step was never marked in progress, assumes it
// silently started on schedule and backfills the actual start from the
// planned start.
func BuildTransition(st StepState, target TargetStatus, actual *time.Time, now time.Time) (Transition, error) {
	if !target.Valid() {
		return Transition{}, apperr.Validationf("status must be %q or %q", TargetInProgress, TargetCompleted)
	}
	if st.Status == string(TargetCompleted) {
		return Transition{}, apperr.Validation("step is already completed")
	}

	observed := now
	if actual != nil {
		observed = *actual
	}

	tr := Transition{Status: target}
	switch target {
	case TargetInProgress:
		if st.ActualStart == nil {
			tr.ActualStart = &observed
		}
	case TargetCompleted:
		tr.ActualEnd = &observed
		if st.ActualStart == nil {
			start := st.PlannedStart
			tr.ActualStart = &start
		}
		tr.DiffDays = DiffDays(observed, st.PlannedEnd)
		tr.Shift = true
	}
	return tr, nil
}

// ReplanStep is one schedule row as the start-date replan sees it.
type ReplanStep struct {
	ScheduleID  uuid.UUID
	Days        int
	Order       int
	ActualStart *time.Time
	ActualEnd   *time.Time
}

// ReplanUpdate is a new planned interval for one schedule row.
type ReplanUpdate struct {
	ScheduleID   uuid.UUID
	PlannedStart time.Time
	PlannedEnd   time.Time
}

// Replan recomputes the planned dates of steps that have not started yet,
// walking from the new start date. Steps already begun keep their dates; a
// finished step moves the cursor to its actual end so the next pending step
// is anchored on reality rather than the old plan.
func Replan(start time.Time, steps []ReplanStep) []ReplanUpdate {
	sorted := make([]ReplanStep, len(steps))
	copy(sorted, steps)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	updates := make([]ReplanUpdate, 0, len(sorted))
	cursor := start
	for _, st := range sorted {
		if st.ActualStart == nil {
			end := cursor.AddDate(0, 0, st.Days)
			updates = append(updates, ReplanUpdate{
				ScheduleID:   st.ScheduleID,
				PlannedStart: cursor,
				PlannedEnd:   end,
			})
			cursor = end
		} else if st.ActualEnd != nil {
			cursor = *st.ActualEnd
		}
	}
	return updates
}

// ShiftDays moves t by the given number of calendar days (negative shifts
// move it earlier).
func ShiftDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}
