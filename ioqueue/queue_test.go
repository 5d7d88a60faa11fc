package ioqueue

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/shard/fairqueue"
	"github.com/ygrebnov/shard/metrics"
)

type fakeSubmitter struct {
	completions []func()
	submitted   []*Descriptor
}

func (f *fakeSubmitter) SubmitIO(d *Descriptor, req Request) {
	f.submitted = append(f.submitted, d)
	f.completions = append(f.completions, func() { d.CompleteWith(req.Len) })
}

func newTestQueue(sub Submitter) *Queue {
	return New(Config{
		DiskReqWriteToReadMultiplier:   2,
		DiskBytesWriteToReadMultiplier: 2,
		Config: fairqueue.Config{
			Capacity: fairqueue.Ticket{Weight: 64, Size: 1 << 20},
		},
	}, sub, metrics.NewNoopProvider())
}

func TestQueue_SubmitReadCompletesWithLen(t *testing.T) {
	sub := &fakeSubmitter{}
	q := newTestQueue(sub)

	var gotN uint64
	var gotErr error
	require.NoError(t, q.Submit("default", 100, Request{Kind: Read, Len: 4096}, func(n uint64, err error) {
		gotN, gotErr = n, err
	}))

	q.DispatchRequests()
	require.Len(t, sub.completions, 1)
	sub.completions[0]()

	require.NoError(t, gotErr)
	require.Equal(t, uint64(4096), gotN)
}

func TestQueue_SubmitFailurePropagates(t *testing.T) {
	sub := &fakeSubmitter{}
	q := newTestQueue(sub)

	boom := errors.New("disk error")
	var gotErr error
	require.NoError(t, q.Submit("default", 100, Request{Kind: Write, Len: 1024}, func(n uint64, err error) {
		gotErr = err
	}))

	q.DispatchRequests()
	require.Len(t, sub.submitted, 1)

	sub.submitted[0].Fail(boom)
	require.ErrorIs(t, gotErr, boom)
}

func TestQueue_UnknownKindRejected(t *testing.T) {
	q := newTestQueue(&fakeSubmitter{})
	err := q.Submit("default", 100, Request{Kind: Kind(99), Len: 1}, func(uint64, error) {})
	require.Error(t, err)
}

func TestQueue_RenameAndUpdateShares(t *testing.T) {
	q := newTestQueue(&fakeSubmitter{})
	pc := q.classFor("orig", 50)
	q.Rename("orig", "renamed")
	require.Equal(t, "renamed", pc.Name())

	q.UpdateShares("renamed", 777)
	require.Equal(t, uint32(777), pc.Shares())
}
