package setup

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy() Policy {
	return NewExponentialPolicy(time.Millisecond, 4*time.Millisecond)
}

func TestRunnerFirstAttemptSucceeds(t *testing.T) {
	r := NewRunner(fastPolicy())

	calls := 0
	messages := []string{}

	err := r.Run(context.Background(), "check", 3, func(ctx context.Context) error {
		calls++
		return nil
	}, func(message string) {
		messages = append(messages, message)
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, len(messages), "no retry messages on first-attempt success")
}

func TestRunnerRetriesThenSucceeds(t *testing.T) {
	r := NewRunner(fastPolicy())

	calls := 0
	messages := []string{}

	err := r.Run(context.Background(), "venv", 3, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return fmt.Errorf("attempt %d refused", calls)
		}
		return nil
	}, func(message string) {
		messages = append(messages, message)
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	require.Equal(t, 4, len(messages))
	assert.Equal(t, "venv: retry 1/2 in 0s", messages[0])
	assert.Equal(t, "venv: retrying 1/2", messages[1])
	assert.Equal(t, "venv: retry 2/2 in 0s", messages[2])
	assert.Equal(t, "venv: retrying 2/2", messages[3])
}

func TestRunnerExhaustionReturnsLastFailure(t *testing.T) {
	r := NewRunner(fastPolicy())

	reasons := []string{"R1", "R2", "R3"}
	calls := 0

	err := r.Run(context.Background(), "sdk", 3, func(ctx context.Context) error {
		err := fmt.Errorf("%s", reasons[calls])
		calls++
		return err
	}, nil)

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, "R3", err.Error())
}

func TestRunnerAttemptFloor(t *testing.T) {
	r := NewRunner(fastPolicy())

	calls := 0

	err := r.Run(context.Background(), "check", 0, func(ctx context.Context) error {
		calls++
		return fmt.Errorf("nope")
	}, nil)

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRunnerContextCancelledDuringBackoff(t *testing.T) {
	r := NewRunner(NewExponentialPolicy(10*time.Second, 10*time.Second))

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	done := make(chan error, 1)

	go func() {
		done <- r.Run(ctx, "check", 3, func(ctx context.Context) error {
			calls++
			return fmt.Errorf("nope")
		}, nil)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls, "no further attempt after cancellation")
	case <-time.After(3 * time.Second):
		t.Fatal("runner did not return after cancellation")
	}
}
