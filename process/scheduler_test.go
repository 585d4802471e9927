package process

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSchedulerPointInTime(t *testing.T) {
	s, err := NewScheduler("2026-08-20T09:30:00Z")
	require.NoError(t, err)

	ref, err := time.Parse(time.RFC3339, "2026-08-20T09:29:00Z")
	require.NoError(t, err)

	d, err := s.NextAfter(ref)
	require.NoError(t, err)
	require.Equal(t, time.Minute, d)

	ref, err = time.Parse(time.RFC3339, "2026-08-20T09:31:00Z")
	require.NoError(t, err)

	_, err = s.NextAfter(ref)
	require.Error(t, err)
}

func TestSchedulerCron(t *testing.T) {
	s, err := NewScheduler("* * * * *")
	require.NoError(t, err)

	sc := s.(*scheduler)
	require.True(t, sc.isCron)

	ref, err := time.Parse(time.RFC3339, "2026-08-20T09:29:39Z")
	require.NoError(t, err)

	d, err := s.NextAfter(ref)
	require.NoError(t, err)
	require.Equal(t, 21*time.Second, d)

	d, err = s.NextAfter(ref.Add(21 * time.Second))
	require.NoError(t, err)
	require.Equal(t, 60*time.Second, d)
}

func TestSchedulerInvalidPattern(t *testing.T) {
	_, err := NewScheduler("not a schedule")
	require.Error(t, err)
}
