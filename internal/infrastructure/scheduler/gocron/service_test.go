package scheduler_test

import (
	"sync/atomic"
	"testing"
	"time"

	scheduler "github.com/LockboxHQ/lockboxd/internal/infrastructure/scheduler/gocron"
	"github.com/stretchr/testify/require"
)

func TestScheduleRecurring(t *testing.T) {
	svc := scheduler.NewScheduler()

	var runs int32
	err := svc.ScheduleRecurring(10*time.Millisecond, func() {
		atomic.AddInt32(&runs, 1)
	})
	require.NoError(t, err)

	svc.Start()
	defer svc.Stop()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&runs) >= 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestInvalidInterval(t *testing.T) {
	svc := scheduler.NewScheduler()
	err := svc.ScheduleRecurring(0, func() {})
	require.Error(t, err)
}
