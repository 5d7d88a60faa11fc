package shard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/shard/fairqueue"
	"github.com/ygrebnov/shard/ioqueue"
	"github.com/ygrebnov/shard/metrics"
)

type syncSubmitter struct{}

func (syncSubmitter) SubmitIO(d *ioqueue.Descriptor, req ioqueue.Request) {
	d.CompleteWith(req.Len)
}

func TestReactor_SubmitIO_ResolvesFutureOnCompletion(t *testing.T) {
	r, err := NewReactor(WithTaskQuota(time.Second))
	require.NoError(t, err)

	q := ioqueue.New(ioqueue.Config{
		Config: fairqueue.Config{Capacity: fairqueue.Ticket{Weight: 8, Size: 1 << 16}},
	}, syncSubmitter{}, metrics.NewNoopProvider())
	r.RegisterPoller(NewIOQueuePoller(q))

	f := r.SubmitIO(q, "default", 100, ioqueue.Request{Kind: ioqueue.Read, Len: 512})

	require.Equal(t, 0, r.Run(context.Background()))

	v, err := f.Get()
	require.NoError(t, err)
	require.Equal(t, uint64(512), v)
}
