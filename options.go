package shard

import (
	"time"

	"github.com/ygrebnov/shard/metrics"
)

// Option configures a Reactor. Use NewConfig(opts...) or NewReactor(opts...)
// to build from them — the same functional-options shape as the teacher's
// options.go, including its posture of panicking at build time on
// conflicting choices rather than returning a validation error for
// programmer mistakes (reserving returned errors for data the caller
// couldn't have caught at compile time, e.g. an I/O queue with zero capacity
// on both axes).
type Option func(*configOptions)

type configOptions struct {
	cfg            Config
	shardsSelected bool
	cpusetSelected bool
}

// WithShardCount sets the `smp` option.
func WithShardCount(n uint) Option {
	return func(co *configOptions) {
		if co.cpusetSelected && uint(len(co.cfg.CPUSet)) != n {
			panic("shard: WithShardCount conflicts with a previously set WithCPUSet of different length")
		}
		co.cfg.ShardCount = n
		co.shardsSelected = true
	}
}

// WithCPUSet sets the `cpuset` option, implying a shard count equal to
// len(ids) unless WithShardCount already picked a different one.
func WithCPUSet(ids []int) Option {
	return func(co *configOptions) {
		if co.shardsSelected && co.cfg.ShardCount != uint(len(ids)) {
			panic("shard: WithCPUSet conflicts with a previously set WithShardCount of different value")
		}
		co.cfg.CPUSet = append([]int(nil), ids...)
		co.cpusetSelected = true
		if !co.shardsSelected {
			co.cfg.ShardCount = uint(len(ids))
		}
	}
}

// WithMemory sets the `memory` option.
func WithMemory(bytes uint64) Option {
	return func(co *configOptions) { co.cfg.Memory = bytes }
}

// WithReserveMemory sets the `reserve-memory` option.
func WithReserveMemory(bytes uint64) Option {
	return func(co *configOptions) { co.cfg.ReserveMemory = bytes }
}

// WithTaskQuota sets the `task-quota-ms` option (the scheduler's
// preemption-check budget).
func WithTaskQuota(d time.Duration) Option {
	return func(co *configOptions) {
		if d <= 0 {
			panic("shard: WithTaskQuota requires d > 0")
		}
		co.cfg.TaskQuota = d
	}
}

// WithIOQueueConfig sets the `io-queue` parameters for the named device,
// overwriting the default if device == "default".
func WithIOQueueConfig(device string, q IOQueueConfig) Option {
	return func(co *configOptions) {
		if co.cfg.IOQueues == nil {
			co.cfg.IOQueues = make(map[string]IOQueueConfig)
		}
		co.cfg.IOQueues[device] = q
	}
}

// WithMetricsProvider wires a metrics.Provider into the reactor and any
// fair queues it constructs (spec.md §1's metrics external collaborator).
func WithMetricsProvider(p metrics.Provider) Option {
	return func(co *configOptions) { co.cfg.MetricsProvider = p }
}

// WithFailedFutureSink wires the leaked-exception sink (spec.md §6
// report_failed_future).
func WithFailedFutureSink(s FailedFutureSink) Option {
	return func(co *configOptions) { co.cfg.FailedFutureSink = s }
}

// NewConfig assembles a Config from opts, applying defaults first.
func NewConfig(opts ...Option) (Config, error) {
	co := configOptions{cfg: defaultConfig()}
	for _, opt := range opts {
		if opt == nil {
			panic("shard: nil Option")
		}
		opt(&co)
	}
	if err := validateConfig(&co.cfg); err != nil {
		return Config{}, err
	}
	return co.cfg, nil
}
