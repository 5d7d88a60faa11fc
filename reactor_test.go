package shard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReactor_UrgentRunsBeforeNormal(t *testing.T) {
	r, err := NewReactor(WithTaskQuota(time.Second))
	require.NoError(t, err)

	var order []int
	r.Schedule(TaskFunc(func() { order = append(order, 1) }))
	r.ScheduleUrgent(TaskFunc(func() { order = append(order, 0) }))
	r.Schedule(TaskFunc(func() { order = append(order, 2) }))

	require.Equal(t, 0, r.Run(context.Background()))
	require.Equal(t, []int{0, 1, 2}, order)
}

func TestReactor_PanicInTaskIsContainedAndReported(t *testing.T) {
	r, err := NewReactor(WithTaskQuota(time.Second))
	require.NoError(t, err)

	var reported error
	r.failedFutureSink = failedFutureSinkFunc(func(err error) { reported = err })

	r.Schedule(TaskFunc(func() { panic("kaboom") }))
	require.Equal(t, 0, r.Run(context.Background()))

	require.Error(t, reported)
	require.Contains(t, reported.Error(), "kaboom")
}

func TestReactor_ExitDrainsReadyQueueThenReturnsCode(t *testing.T) {
	r, err := NewReactor(WithTaskQuota(time.Second))
	require.NoError(t, err)

	ran := 0
	for i := 0; i < 3; i++ {
		r.Schedule(TaskFunc(func() { ran++ }))
	}
	r.Exit(7)

	code := r.Run(context.Background())
	require.Equal(t, 7, code)
	require.Equal(t, 3, ran)
}

func TestReactor_RunReturnsIdleWhenPollerProducesNoWork(t *testing.T) {
	r, err := NewReactor(WithTaskQuota(time.Second))
	require.NoError(t, err)
	r.RegisterPoller(pollerFunc(func() bool { return false }))

	require.Equal(t, 0, r.Run(context.Background()))
}

func TestReactor_RunStopsOnContextCancellation(t *testing.T) {
	r, err := NewReactor(WithTaskQuota(time.Second))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Equal(t, -1, r.Run(ctx))
}

type failedFutureSinkFunc func(error)

func (f failedFutureSinkFunc) ReportFailedFuture(err error) { f(err) }

type pollerFunc func() bool

func (f pollerFunc) Poll() bool { return f() }
