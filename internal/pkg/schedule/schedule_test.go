package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.UTC)
}

func TestCalculate(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	t.Run("steps laid out back to back", func(t *testing.T) {
		entries := Calculate(day("2024-01-01"), []Step{
			{ID: a, Days: 5, Order: 1},
			{ID: b, Days: 3, Order: 2},
			{ID: c, Days: 10, Order: 3},
		})

		assert.Len(t, entries, 3)
		assert.Equal(t, day("2024-01-01"), entries[0].PlannedStart)
		assert.Equal(t, day("2024-01-06"), entries[0].PlannedEnd)
		assert.Equal(t, day("2024-01-06"), entries[1].PlannedStart)
		assert.Equal(t, day("2024-01-09"), entries[1].PlannedEnd)
		assert.Equal(t, day("2024-01-09"), entries[2].PlannedStart)
		assert.Equal(t, day("2024-01-19"), entries[2].PlannedEnd)
	})

	t.Run("input order does not matter", func(t *testing.T) {
		entries := Calculate(day("2024-01-01"), []Step{
			{ID: c, Days: 10, Order: 3},
			{ID: a, Days: 5, Order: 1},
			{ID: b, Days: 3, Order: 2},
		})

		assert.Equal(t, a, entries[0].ProductStepID)
		assert.Equal(t, b, entries[1].ProductStepID)
		assert.Equal(t, c, entries[2].ProductStepID)
		assert.Equal(t, day("2024-01-01"), entries[0].PlannedStart)
	})

	t.Run("each step starts where the previous ends", func(t *testing.T) {
		entries := Calculate(day("2024-03-15"), []Step{
			{ID: a, Days: 7, Order: 1},
			{ID: b, Days: 2, Order: 2},
			{ID: c, Days: 4, Order: 3},
		})

		for i := 1; i < len(entries); i++ {
			assert.Equal(t, entries[i-1].PlannedEnd, entries[i].PlannedStart)
		}
	})

	t.Run("total span equals sum of days", func(t *testing.T) {
		start := day("2024-06-01")
		entries := Calculate(start, []Step{
			{ID: a, Days: 5, Order: 1},
			{ID: b, Days: 3, Order: 2},
			{ID: c, Days: 10, Order: 3},
		})

		last := entries[len(entries)-1]
		assert.Equal(t, start.AddDate(0, 0, 18), last.PlannedEnd)
	})

	t.Run("empty step list yields empty schedule", func(t *testing.T) {
		entries := Calculate(day("2024-01-01"), nil)
		assert.Empty(t, entries)
	})
}

func TestDiffDays(t *testing.T) {
	tests := []struct {
		name    string
		actual  time.Time
		planned time.Time
		want    int
	}{
		{"on time", day("2024-01-10"), day("2024-01-10"), 0},
		{"two days late", day("2024-01-12"), day("2024-01-10"), 2},
		{"two days early", day("2024-01-08"), day("2024-01-10"), -2},
		{"partial day late floors to zero", day("2024-01-10").Add(6 * time.Hour), day("2024-01-10"), 0},
		{"partial day early floors down", day("2024-01-10").Add(-6 * time.Hour), day("2024-01-10"), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DiffDays(tt.actual, tt.planned))
		})
	}
}

func TestBuildTransition_InProgress(t *testing.T) {
	now := day("2024-02-01")

	t.Run("sets actual start on first transition", func(t *testing.T) {
		tr, err := BuildTransition(StepState{
			Status:       "pending",
			PlannedStart: day("2024-02-01"),
			PlannedEnd:   day("2024-02-06"),
		}, TargetInProgress, nil, now)

		assert.NoError(t, err)
		assert.Equal(t, TargetInProgress, tr.Status)
		assert.NotNil(t, tr.ActualStart)
		assert.Equal(t, now, *tr.ActualStart)
		assert.Nil(t, tr.ActualEnd)
		assert.False(t, tr.Shift)
	})

	t.Run("repeating keeps the first observation", func(t *testing.T) {
		started := day("2024-01-30")
		tr, err := BuildTransition(StepState{
			Status:      "in_progress",
			ActualStart: &started,
		}, TargetInProgress, nil, now)

		assert.NoError(t, err)
		assert.Nil(t, tr.ActualStart)
	})

	t.Run("explicit actual date wins over now", func(t *testing.T) {
		actual := day("2024-01-28")
		tr, err := BuildTransition(StepState{Status: "pending"}, TargetInProgress, &actual, now)

		assert.NoError(t, err)
		assert.Equal(t, actual, *tr.ActualStart)
	})
}

func TestBuildTransition_Completed(t *testing.T) {
	st := StepState{
		Status:       "in_progress",
		PlannedStart: day("2024-02-01"),
		PlannedEnd:   day("2024-02-06"),
	}

	t.Run("late finish shifts later steps forward", func(t *testing.T) {
		actual := day("2024-02-08")
		started := day("2024-02-01")
		s := st
		s.ActualStart = &started

		tr, err := BuildTransition(s, TargetCompleted, &actual, day("2024-02-08"))

		assert.NoError(t, err)
		assert.Equal(t, TargetCompleted, tr.Status)
		assert.Equal(t, actual, *tr.ActualEnd)
		assert.Equal(t, 2, tr.DiffDays)
		assert.True(t, tr.Shift)
		assert.Nil(t, tr.ActualStart)
	})

	t.Run("early finish shifts later steps back", func(t *testing.T) {
		actual := day("2024-02-04")
		started := day("2024-02-01")
		s := st
		s.ActualStart = &started

		tr, err := BuildTransition(s, TargetCompleted, &actual, actual)

		assert.NoError(t, err)
		assert.Equal(t, -2, tr.DiffDays)
		assert.True(t, tr.Shift)
	})

	t.Run("backfills actual start from planned start", func(t *testing.T) {
		actual := day("2024-02-06")
		tr, err := BuildTransition(st, TargetCompleted, &actual, actual)

		assert.NoError(t, err)
		assert.NotNil(t, tr.ActualStart)
		assert.Equal(t, st.PlannedStart, *tr.ActualStart)
		assert.Equal(t, 0, tr.DiffDays)
	})

	t.Run("completed step cannot transition again", func(t *testing.T) {
		_, err := BuildTransition(StepState{Status: "completed"}, TargetCompleted, nil, day("2024-02-08"))
		assert.Error(t, err)

		_, err = BuildTransition(StepState{Status: "completed"}, TargetInProgress, nil, day("2024-02-08"))
		assert.Error(t, err)
	})

	t.Run("invalid target rejected", func(t *testing.T) {
		_, err := BuildTransition(st, TargetStatus("pending"), nil, day("2024-02-08"))
		assert.Error(t, err)

		_, err = BuildTransition(st, TargetStatus("done"), nil, day("2024-02-08"))
		assert.Error(t, err)
	})
}

func TestReplan(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	t.Run("recomputes all pending steps from new start", func(t *testing.T) {
		updates := Replan(day("2024-05-01"), []ReplanStep{
			{ScheduleID: a, Days: 5, Order: 1},
			{ScheduleID: b, Days: 3, Order: 2},
			{ScheduleID: c, Days: 4, Order: 3},
		})

		assert.Len(t, updates, 3)
		assert.Equal(t, day("2024-05-01"), updates[0].PlannedStart)
		assert.Equal(t, day("2024-05-06"), updates[0].PlannedEnd)
		assert.Equal(t, day("2024-05-06"), updates[1].PlannedStart)
		assert.Equal(t, day("2024-05-09"), updates[1].PlannedEnd)
		assert.Equal(t, day("2024-05-13"), updates[2].PlannedEnd)
	})

	t.Run("started steps keep their dates", func(t *testing.T) {
		started := day("2024-04-28")
		updates := Replan(day("2024-05-01"), []ReplanStep{
			{ScheduleID: a, Days: 5, Order: 1, ActualStart: &started},
			{ScheduleID: b, Days: 3, Order: 2},
		})

		assert.Len(t, updates, 1)
		assert.Equal(t, b, updates[0].ScheduleID)
	})

	t.Run("finished step anchors the cursor at its actual end", func(t *testing.T) {
		started := day("2024-04-28")
		finished := day("2024-05-04")
		updates := Replan(day("2024-05-01"), []ReplanStep{
			{ScheduleID: a, Days: 5, Order: 1, ActualStart: &started, ActualEnd: &finished},
			{ScheduleID: b, Days: 3, Order: 2},
		})

		assert.Len(t, updates, 1)
		assert.Equal(t, finished, updates[0].PlannedStart)
		assert.Equal(t, finished.AddDate(0, 0, 3), updates[0].PlannedEnd)
	})

	t.Run("no pending steps yields no updates", func(t *testing.T) {
		started := day("2024-04-28")
		updates := Replan(day("2024-05-01"), []ReplanStep{
			{ScheduleID: a, Days: 5, Order: 1, ActualStart: &started},
		})
		assert.Empty(t, updates)
	})
}

func TestShiftDays(t *testing.T) {
	assert.Equal(t, day("2024-01-12"), ShiftDays(day("2024-01-10"), 2))
	assert.Equal(t, day("2024-01-08"), ShiftDays(day("2024-01-10"), -2))
	assert.Equal(t, day("2024-01-10"), ShiftDays(day("2024-01-10"), 0))
}
