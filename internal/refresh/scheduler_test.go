package refresh

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	mu   sync.Mutex
	runs int
}

func (s *stubRunner) Run(_ context.Context) {
	s.mu.Lock()
	s.runs++
	s.mu.Unlock()
}

func (s *stubRunner) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

func TestStartDailySchedule_RunsEagerlyAtStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := &stubRunner{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	// An hour safely in the future so no scheduled fire interferes.
	hour := (time.Now().Hour() + 2) % 24
	done := StartDailySchedule(ctx, runner, hour, log)

	require.Eventually(t, func() bool { return runner.count() == 1 },
		time.Second, 10*time.Millisecond, "scheduler must fire once at startup")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on context cancellation")
	}
}

func TestStartDailySchedule_StopsWithoutExtraRuns(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := &stubRunner{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	hour := (time.Now().Hour() + 2) % 24
	done := StartDailySchedule(ctx, runner, hour, log)
	require.Eventually(t, func() bool { return runner.count() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	<-done
	assert.Equal(t, 1, runner.count(), "no scheduled run should fire after cancellation")
}

func TestNextFire_BeforeHour(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 30, 0, 0, time.Local)
	next := nextFire(now, 12)
	assert.Equal(t, time.Date(2024, 3, 10, 12, 0, 0, 0, time.Local), next)
}

func TestNextFire_AfterHour(t *testing.T) {
	now := time.Date(2024, 3, 10, 13, 0, 0, 0, time.Local)
	next := nextFire(now, 12)
	assert.Equal(t, time.Date(2024, 3, 11, 12, 0, 0, 0, time.Local), next)
}

func TestNextFire_ExactlyAtHour(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.Local)
	next := nextFire(now, 12)
	assert.Equal(t, time.Date(2024, 3, 11, 12, 0, 0, 0, time.Local), next, "the current instant never fires twice")
}
