package shard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestThen_ChainOfValueTransforms(t *testing.T) {
	r, err := NewReactor(WithTaskQuota(time.Second))
	require.NoError(t, err)

	p := NewPromise[int](r)
	f := p.GetFuture()

	chained := Then[int, int](f, func(x int) int { return x + 1 })
	chained = Then[int, int](chained, func(x int) int { return x * 2 })

	require.NoError(t, p.SetValue(7))
	require.Equal(t, 0, r.Run(context.Background()))

	v, err := chained.Get()
	require.NoError(t, err)
	require.Equal(t, 16, v)
}

func TestHandleException_RecoversFromFailure(t *testing.T) {
	f := ExceptionFuture[int](errors.New("boom"))
	recovered := f.HandleException(func(err error) (int, error) {
		return 42, nil
	})
	v, err := recovered.Get()
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

func TestPromise_PendingThenSetValue_RunsScheduledContinuation(t *testing.T) {
	r, err := NewReactor(WithTaskQuota(time.Second))
	require.NoError(t, err)

	p := NewPromise[int](r)
	f := p.GetFuture()
	chained := Then[int, int](f, func(x int) int { return x + 1 })

	require.False(t, chained.Available())

	require.NoError(t, p.SetValue(10))
	require.Equal(t, 0, r.Run(context.Background()))

	v, err := chained.Get()
	require.NoError(t, err)
	require.Equal(t, 11, v)
}

func TestPromise_Discard_WhilePendingWithContinuation_BecomesBrokenPromise(t *testing.T) {
	r, err := NewReactor(WithTaskQuota(time.Second))
	require.NoError(t, err)

	p := NewPromise[int](r)
	f := p.GetFuture()
	chained := Then[int, int](f, func(x int) int { return x + 1 })

	p.Discard("abandoned")
	require.Equal(t, 0, r.Run(context.Background()))

	_, err = chained.Get()
	require.Error(t, err)
	var broken *BrokenPromiseError
	require.ErrorAs(t, err, &broken)
	require.Equal(t, "abandoned", broken.Label)
}

func TestFinally_ChainsCauseWhenCallbackFails(t *testing.T) {
	f := ReadyFuture(5)
	ferr := errors.New("cleanup failed")
	out := f.Finally(func() error { return ferr })

	_, err := out.Get()
	require.Error(t, err)
	var fe *FinallyError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, ferr, fe.Cause)
	require.Nil(t, fe.Original)
}

func TestHandleExceptionAs_OnlyMatchesRequestedType(t *testing.T) {
	target := &BrokenPromiseError{Label: "x"}
	f := ExceptionFuture[int](target)

	handled := HandleExceptionAs[int, *BrokenPromiseError](f, func(e *BrokenPromiseError) (int, error) {
		return 99, nil
	})
	v, err := handled.Get()
	require.NoError(t, err)
	require.Equal(t, 99, v)
}

func TestWhenAll_CollectsValuesInOrder(t *testing.T) {
	r, err := NewReactor(WithTaskQuota(time.Second))
	require.NoError(t, err)

	futures := make([]Future[int], 0, 3)
	promises := make([]*Promise[int], 0, 3)
	for i := 0; i < 3; i++ {
		p := NewPromise[int](r)
		promises = append(promises, p)
		futures = append(futures, p.GetFuture())
	}

	all := WhenAll(r, futures)

	require.NoError(t, promises[2].SetValue(30))
	require.NoError(t, promises[0].SetValue(10))
	require.NoError(t, promises[1].SetValue(20))
	require.Equal(t, 0, r.Run(context.Background()))

	v, err := all.Get()
	require.NoError(t, err)
	require.Equal(t, []int{10, 20, 30}, v)
}
