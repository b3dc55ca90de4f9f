package metrics

import (
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
)

// SystemSampler tracks process resource usage for the ops /healthz
// endpoint, adapted from the teacher's SystemMetrics. The teacher's
// second CPUTracker type (a goroutine-scheduler-latency proxy for CPU
// usage) is dropped here — gopsutil's cpu.Percent already gives a real
// reading, so a proxy estimate alongside it served no purpose.
type SystemSampler struct {
	mu          sync.RWMutex
	cpuPercent  float64
	memoryStats runtime.MemStats
	sampledAt   time.Time
}

// NewSystemSampler constructs a sampler with an initial reading taken.
func NewSystemSampler() *SystemSampler {
	s := &SystemSampler{}
	s.Sample()
	return s
}

// Sample refreshes the memory and CPU readings. cpu.Percent blocks for
// one second to measure an interval, so callers should not invoke this
// from a latency-sensitive path — the ops server calls it lazily, on
// /healthz requests, not from the reactor.
func (s *SystemSampler) Sample() {
	runtime.ReadMemStats(&s.memoryStats)

	percents, err := cpu.Percent(time.Second, false)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil && len(percents) > 0 {
		s.cpuPercent = percents[0]
	}
	s.sampledAt = time.Now()
}

// Snapshot is the JSON-serializable view returned by /healthz.
type Snapshot struct {
	HeapAllocMB float64   `json:"heap_alloc_mb"`
	HeapSysMB   float64   `json:"heap_sys_mb"`
	GCCount     uint32    `json:"gc_count"`
	Goroutines  int       `json:"goroutines"`
	CPUPercent  float64   `json:"cpu_percent"`
	SampledAt   time.Time `json:"sampled_at"`
}

// Snapshot returns the most recent reading without blocking.
func (s *SystemSampler) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		HeapAllocMB: float64(s.memoryStats.HeapAlloc) / 1024 / 1024,
		HeapSysMB:   float64(s.memoryStats.HeapSys) / 1024 / 1024,
		GCCount:     s.memoryStats.NumGC,
		Goroutines:  runtime.NumGoroutine(),
		CPUPercent:  s.cpuPercent,
		SampledAt:   s.sampledAt,
	}
}
