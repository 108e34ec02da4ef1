package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(t *testing.T, date, clock string) time.Time {
	t.Helper()
	due, err := ParseDue(date, clock)
	require.NoError(t, err)
	return due
}

func TestDraftNormalize(t *testing.T) {
	tests := []struct {
		name    string
		draft   Draft
		wantErr error
	}{
		{name: "complete", draft: Draft{Name: "Pay bills", Date: "2025-01-01", Time: "10:00"}},
		{name: "seconds accepted", draft: Draft{Name: "Pay bills", Date: "2025-01-01", Time: "10:00:30"}},
		{name: "missing name", draft: Draft{Date: "2025-01-01", Time: "10:00"}, wantErr: ErrMissingField},
		{name: "blank name", draft: Draft{Name: "   ", Date: "2025-01-01", Time: "10:00"}, wantErr: ErrMissingField},
		{name: "missing date", draft: Draft{Name: "Pay bills", Time: "10:00"}, wantErr: ErrMissingField},
		{name: "missing time", draft: Draft{Name: "Pay bills", Date: "2025-01-01"}, wantErr: ErrMissingField},
		{name: "bad date", draft: Draft{Name: "Pay bills", Date: "01/01/2025", Time: "10:00"}, wantErr: ErrInvalidDate},
		{name: "bad time", draft: Draft{Name: "Pay bills", Date: "2025-01-01", Time: "25:00"}, wantErr: ErrInvalidTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.draft.Normalize()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDraftNormalizeTrims(t *testing.T) {
	d, err := Draft{Name: "  Pay bills ", Date: " 2025-01-01", Time: "10:00 "}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, Draft{Name: "Pay bills", Date: "2025-01-01", Time: "10:00"}, d)
}

func TestParseDueIsLocal(t *testing.T) {
	due := at(t, "2025-03-04", "09:15")
	assert.Equal(t, time.Date(2025, time.March, 4, 9, 15, 0, 0, time.Local), due)
}

func TestOverdue(t *testing.T) {
	now := at(t, "2025-01-01", "12:00")

	past := Task{Name: "late", Date: "2025-01-01", Time: "11:59"}
	future := Task{Name: "soon", Date: "2025-01-01", Time: "12:01"}
	exact := Task{Name: "now", Date: "2025-01-01", Time: "12:00"}

	assert.True(t, past.Overdue(now))
	assert.False(t, future.Overdue(now))
	assert.False(t, exact.Overdue(now))

	past.Completed = true
	assert.False(t, past.Overdue(now), "completed tasks are never overdue")
}

func TestSortedByDueInstant(t *testing.T) {
	tasks := []Task{
		{ID: 1, Name: "third", Date: "2025-01-02", Time: "08:00"},
		{ID: 2, Name: "first", Date: "2025-01-01", Time: "09:00"},
		{ID: 3, Name: "second", Date: "2025-01-01", Time: "17:30"},
	}

	got := Sorted(tasks)

	names := []string{got[0].Name, got[1].Name, got[2].Name}
	assert.Equal(t, []string{"first", "second", "third"}, names)
	assert.Equal(t, int64(1), tasks[0].ID, "input is left untouched")
}

func TestSortedKeepsInsertionOrderOnTies(t *testing.T) {
	tasks := []Task{
		{ID: 1, Name: "a", Date: "2025-01-01", Time: "10:00"},
		{ID: 2, Name: "early", Date: "2025-01-01", Time: "09:00"},
		{ID: 3, Name: "b", Date: "2025-01-01", Time: "10:00"},
		{ID: 4, Name: "c", Date: "2025-01-01", Time: "10:00:00"},
	}

	got := Sorted(tasks)

	ids := make([]int64, 0, len(got))
	for _, tk := range got {
		ids = append(ids, tk.ID)
	}
	assert.Equal(t, []int64{2, 1, 3, 4}, ids)
}

func TestDisplayDue(t *testing.T) {
	tk := Task{Date: "2025-01-06", Time: "15:04"}
	assert.Equal(t, "Mon, Jan 6, 3:04 PM", tk.DisplayDue())
}

func TestIndexOf(t *testing.T) {
	tasks := []Task{{ID: 7}, {ID: 9}}
	assert.Equal(t, 1, IndexOf(tasks, 9))
	assert.Equal(t, -1, IndexOf(tasks, 3))
}
