package shard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestThenWrapped_ObservesFailureDirectly(t *testing.T) {
	f := ExceptionFuture[int](errors.New("nope"))
	out := ThenWrapped[int, string](f, func(in Future[int]) string {
		if in.Failed() {
			return "recovered"
		}
		return "ok"
	})
	v, err := out.Get()
	require.NoError(t, err)
	require.Equal(t, "recovered", v)
}

func TestMapFutures_FansOutAndCollects(t *testing.T) {
	r, err := NewReactor(WithTaskQuota(time.Second))
	require.NoError(t, err)

	items := []int{1, 2, 3}
	out := MapFutures(r, items, func(x int) Future[int] {
		return ReadyFuture(x * x)
	})

	require.Equal(t, 0, r.Run(context.Background()))
	v, err := out.Get()
	require.NoError(t, err)
	require.Equal(t, []int{1, 4, 9}, v)
}

func TestDiscardResult_PreservesFailure(t *testing.T) {
	boom := errors.New("boom")
	f := ExceptionFuture[int](boom)
	out := f.DiscardResult()
	_, err := out.Get()
	require.ErrorIs(t, err, boom)
}

func TestOrTerminate_CallsHandlerOnFailure(t *testing.T) {
	orig := OrTerminateHandler
	defer func() { OrTerminateHandler = orig }()

	var got error
	OrTerminateHandler = func(err error) { got = err }

	boom := errors.New("fatal")
	f := ExceptionFuture[int](boom)
	out := f.OrTerminate()

	// OrTerminateHandler stands in for the process exit a real failure would
	// trigger; the downstream future is left pending, matching "this path
	// never returns" in the non-test build.
	_, err := out.Get()
	require.ErrorIs(t, err, ErrNotReady)
	require.ErrorIs(t, got, boom)
}
