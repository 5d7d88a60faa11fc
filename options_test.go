package shard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)
	require.Equal(t, uint(1), cfg.ShardCount)
	require.Contains(t, cfg.IOQueues, "default")
}

func TestWithCPUSet_InfersShardCount(t *testing.T) {
	cfg, err := NewConfig(WithCPUSet([]int{0, 1, 2}))
	require.NoError(t, err)
	require.Equal(t, uint(3), cfg.ShardCount)
}

func TestWithShardCount_ConflictingCPUSet_Panics(t *testing.T) {
	require.Panics(t, func() {
		_, _ = NewConfig(WithCPUSet([]int{0, 1}), WithShardCount(5))
	})
}

func TestWithTaskQuota_RejectsNonPositive(t *testing.T) {
	require.Panics(t, func() {
		_, _ = NewConfig(WithTaskQuota(0))
	})
}

func TestValidateConfig_RejectsZeroCapacityIOQueue(t *testing.T) {
	_, err := NewConfig(WithIOQueueConfig("scratch", IOQueueConfig{}))
	require.Error(t, err)
}

func TestWithIOQueueConfig_Build_RoundTrips(t *testing.T) {
	q := IOQueueConfig{
		MaxRequestCount:              10,
		MaxBytesCount:                20,
		DiskReqWriteToReadMultiplier: 3,
		Tau:                          time.Millisecond,
	}
	built := q.Build()
	require.Equal(t, uint32(10), built.Capacity.Weight)
	require.Equal(t, uint32(20), built.Capacity.Size)
	require.Equal(t, uint32(3), built.DiskReqWriteToReadMultiplier)
}
