package shard

import (
	"fmt"
	"time"

	"github.com/ygrebnov/shard/fairqueue"
	"github.com/ygrebnov/shard/ioqueue"
	"github.com/ygrebnov/shard/metrics"
)

// IOQueueConfig carries the per-device I/O queue parameters recognised by
// the `io-queue` configuration option in spec.md §6: the capacity envelope
// (max outstanding request count / byte count), the default shares given to
// the queue's priority classes, and the read/write cost multipliers
// ioqueue.Config needs to build a device's fair queue.
type IOQueueConfig struct {
	MaxRequestCount uint64
	MaxBytesCount   uint64
	Shares          uint32

	DiskReqWriteToReadMultiplier   uint32
	DiskBytesWriteToReadMultiplier uint32
	Tau                            time.Duration
}

func defaultIOQueueConfig() IOQueueConfig {
	return IOQueueConfig{
		MaxRequestCount:                128,
		MaxBytesCount:                  16 << 20,
		Shares:                         100,
		DiskReqWriteToReadMultiplier:   1,
		DiskBytesWriteToReadMultiplier: 1,
		Tau:                            100 * time.Millisecond,
	}
}

// Build realizes cfg as the ioqueue.Config its Queue constructor needs.
func (cfg IOQueueConfig) Build() ioqueue.Config {
	return ioqueue.Config{
		DiskReqWriteToReadMultiplier:   cfg.DiskReqWriteToReadMultiplier,
		DiskBytesWriteToReadMultiplier: cfg.DiskBytesWriteToReadMultiplier,
		Config: fairqueue.Config{
			Capacity: fairqueue.Ticket{
				Weight: uint32(cfg.MaxRequestCount),
				Size:   uint32(cfg.MaxBytesCount),
			},
			Tau: cfg.Tau,
		},
	}
}

// Config holds Reactor configuration, covering the options table in
// spec.md §6 (smp, cpuset, memory, reserve-memory, task-quota-ms,
// io-queue). smp/cpuset/memory are recorded here for the (out-of-scope)
// app-template/topology collaborator to act on; this core neither spawns
// OS threads nor pins CPUs itself (spec.md §1 "out of scope").
type Config struct {
	// ShardCount is the `smp` option: number of shards the embedding
	// application intends to start.
	ShardCount uint

	// CPUSet is the `cpuset` option: OS CPU ids to pin shards to. Empty
	// means "let the topology collaborator decide".
	CPUSet []int

	// Memory is the `memory` option: total memory to reserve across shards.
	// Zero means "unspecified", deferring to the collaborator's default.
	Memory uint64

	// ReserveMemory is the `reserve-memory` option: memory left for the OS.
	ReserveMemory uint64

	// TaskQuota is the `task-quota-ms` option: the scheduler's continuous
	// execution budget between preemption checks (spec.md §4.E, §5).
	TaskQuota time.Duration

	// IOQueues is the `io-queue` option: per-device queue parameters,
	// keyed by a device label. "default" is always present.
	IOQueues map[string]IOQueueConfig

	// MetricsProvider is where the reactor and fair queue record
	// instrumentation (spec.md §1 names metrics as an external
	// collaborator; this is the seam). Defaults to a no-op provider.
	MetricsProvider metrics.Provider

	// FailedFutureSink receives leaked-exception reports (spec.md §6
	// report_failed_future). Defaults to nil (no-op).
	FailedFutureSink FailedFutureSink
}

func defaultConfig() Config {
	return Config{
		ShardCount: 1,
		TaskQuota:  500 * time.Microsecond,
		IOQueues:   map[string]IOQueueConfig{"default": defaultIOQueueConfig()},
	}
}

// validateConfig performs the lightweight invariant checks the teacher's
// config.go reserves room for; unlike the teacher's current no-op body,
// this core does have invariants worth enforcing before a Reactor starts.
func validateConfig(cfg *Config) error {
	if cfg.ShardCount == 0 {
		return fmt.Errorf("%s: ShardCount must be > 0", Namespace)
	}
	if len(cfg.CPUSet) > 0 && uint(len(cfg.CPUSet)) != cfg.ShardCount {
		return fmt.Errorf("%s: len(CPUSet) (%d) must equal ShardCount (%d)", Namespace, len(cfg.CPUSet), cfg.ShardCount)
	}
	if cfg.TaskQuota <= 0 {
		return fmt.Errorf("%s: TaskQuota must be > 0", Namespace)
	}
	for name, q := range cfg.IOQueues {
		if q.MaxRequestCount == 0 && q.MaxBytesCount == 0 {
			return fmt.Errorf("%s: io-queue %q has zero capacity on both axes", Namespace, name)
		}
	}
	return nil
}
