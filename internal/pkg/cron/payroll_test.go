package cron

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type enqueueCall struct {
	month, year int
}

type fakeEnqueuer struct {
	mu    sync.Mutex
	calls []enqueueCall
	err   error
}

func (f *fakeEnqueuer) EnqueueMonthlyGeneration(ctx context.Context, month, year int) (jobs.EnqueueResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return jobs.EnqueueResult{}, f.err
	}
	f.calls = append(f.calls, enqueueCall{month: month, year: year})
	return jobs.EnqueueResult{TaskID: jobs.GenerateMonthlyTaskID(month, year), Queue: jobs.QueueDefault}, nil
}

func newPayrollJobsAt(enq jobs.Enqueuer, now time.Time) *PayrollJobs {
	j := NewPayrollJobs(enq, time.Hour, nil)
	j.now = func() time.Time { return now }
	return j
}

func TestEnqueuePreviousMonth_FirstOfMonth(t *testing.T) {
	enq := &fakeEnqueuer{}
	j := newPayrollJobsAt(enq, time.Date(2024, time.July, 1, 0, 30, 0, 0, time.UTC))

	require.NoError(t, j.EnqueuePreviousMonth(context.Background()))
	require.Len(t, enq.calls, 1)
	assert.Equal(t, enqueueCall{month: 6, year: 2024}, enq.calls[0])

	// later ticks on the same day do nothing
	require.NoError(t, j.EnqueuePreviousMonth(context.Background()))
	assert.Len(t, enq.calls, 1)
}

func TestEnqueuePreviousMonth_January(t *testing.T) {
	enq := &fakeEnqueuer{}
	j := newPayrollJobsAt(enq, time.Date(2025, time.January, 1, 5, 0, 0, 0, time.UTC))

	require.NoError(t, j.EnqueuePreviousMonth(context.Background()))
	require.Len(t, enq.calls, 1)
	assert.Equal(t, enqueueCall{month: 12, year: 2024}, enq.calls[0])
}

func TestEnqueuePreviousMonth_OtherDays(t *testing.T) {
	enq := &fakeEnqueuer{}
	j := newPayrollJobsAt(enq, time.Date(2024, time.July, 2, 0, 0, 0, 0, time.UTC))

	require.NoError(t, j.EnqueuePreviousMonth(context.Background()))
	assert.Empty(t, enq.calls)
}

func TestEnqueuePreviousMonth_UsesUTC(t *testing.T) {
	enq := &fakeEnqueuer{}
	// 1 July 02:00 in UTC+7 is still 30 June in UTC
	loc := time.FixedZone("WIB", 7*60*60)
	j := newPayrollJobsAt(enq, time.Date(2024, time.July, 1, 2, 0, 0, 0, loc))

	require.NoError(t, j.EnqueuePreviousMonth(context.Background()))
	assert.Empty(t, enq.calls)
}

func TestEnqueuePreviousMonth_RetriesAfterError(t *testing.T) {
	enq := &fakeEnqueuer{err: errors.New("redis down")}
	j := newPayrollJobsAt(enq, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC))

	require.Error(t, j.EnqueuePreviousMonth(context.Background()))

	enq.err = nil
	require.NoError(t, j.EnqueuePreviousMonth(context.Background()))
	assert.Len(t, enq.calls, 1)
}

func TestScheduler_RunOnce(t *testing.T) {
	s := NewScheduler(nil)

	var ran []string
	s.AddJob("ok", time.Hour, func(ctx context.Context) error {
		ran = append(ran, "ok")
		return nil
	})
	s.AddJob("failing", time.Hour, func(ctx context.Context) error {
		ran = append(ran, "failing")
		return errors.New("boom")
	})

	s.RunOnce(context.Background())
	assert.Equal(t, []string{"ok", "failing"}, ran)
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(nil)

	done := make(chan struct{}, 1)
	s.AddJob("tick", time.Hour, func(ctx context.Context) error {
		select {
		case done <- struct{}{}:
		default:
		}
		return nil
	})

	s.Start()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not run on start")
	}
	s.Stop()
}
