package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVisitDuration(t *testing.T) {
	entry := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		exit time.Time
		want string
	}{
		{name: "hours and minutes", exit: entry.Add(2*time.Hour + 30*time.Minute), want: "2h 30min"},
		{name: "minutes only", exit: entry.Add(45 * time.Minute), want: "45min"},
		{name: "exact hour", exit: entry.Add(time.Hour), want: "1h 0min"},
		{name: "seconds truncated", exit: entry.Add(59 * time.Second), want: "0min"},
		{name: "exit before entry clamps", exit: entry.Add(-time.Minute), want: "0min"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			exit := tc.exit
			v := Visit{EntryTime: entry, ExitTime: &exit}
			assert.Equal(t, tc.want, v.Duration(time.Time{}))
		})
	}
}

func TestVisitDuration_ActiveUsesNow(t *testing.T) {
	entry := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	v := Visit{EntryTime: entry}

	assert.True(t, v.Active())
	assert.Equal(t, VisitStatusActive, v.Status())
	assert.Equal(t, "3h 5min", v.Duration(entry.Add(3*time.Hour+5*time.Minute+20*time.Second)))
}

func TestVisitStatus_Completed(t *testing.T) {
	exit := time.Now()
	v := Visit{EntryTime: exit.Add(-time.Hour), ExitTime: &exit}

	assert.False(t, v.Active())
	assert.Equal(t, VisitStatusCompleted, v.Status())
	assert.Equal(t, "Finalizada", string(v.Status()))
}
