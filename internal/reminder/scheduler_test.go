package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerFiresOnStartAndStopsOnCancel(t *testing.T) {
	now := baseNow()
	store := newStore(t)
	_, err := store.Add(draftAt("Pay bills", now, time.Minute))
	require.NoError(t, err)

	fired := make(chan Reminder, 1)
	s := NewScheduler(NewEngine(store, NopSink{}), time.Hour, func(r Reminder) { fired <- r }, nil)
	s.now = func() time.Time { return now }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case r := <-fired:
		assert.Equal(t, "Pay bills", r.Task.Name)
	case <-time.After(5 * time.Second):
		t.Fatal("no reminder from the initial check")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}

func TestSchedulerRejectsBadInterval(t *testing.T) {
	s := NewScheduler(NewEngine(newStore(t), nil), 0, nil, nil)
	assert.Error(t, s.Run(context.Background()))
}
