package observability

import (
	"sort"
	"time"
)

// Stage names recorded by the batch pipeline.
const (
	StageRead     = "read"
	StageClassify = "classify"
	StageMerge    = "merge"
)

// StageStat is the accumulated timing of one named stage.
type StageStat struct {
	Name  string
	Total time.Duration
	Calls int64
}

// Avg returns the mean duration per call.
func (s StageStat) Avg() time.Duration {
	if s.Calls == 0 {
		return 0
	}

	return s.Total / time.Duration(s.Calls)
}

// Profiler accumulates stage timings. It is not safe for concurrent use:
// each goroutine owns one and the owners are merged afterwards.
// A disabled profiler records nothing.
type Profiler struct {
	enabled bool
	stages  map[string]*StageStat
}

func NewProfiler(enabled bool) *Profiler {
	return &Profiler{
		enabled: enabled,
		stages:  make(map[string]*StageStat),
	}
}

// Enabled reports whether timings are being recorded.
func (p *Profiler) Enabled() bool {
	return p != nil && p.enabled
}

// Start begins timing a stage call. Invoke the returned func to stop it.
func (p *Profiler) Start(name string) func() {
	if !p.Enabled() {
		return func() {}
	}

	started := time.Now()

	return func() {
		p.Observe(name, time.Since(started))
	}
}

// Observe adds one call of duration d to the named stage.
func (p *Profiler) Observe(name string, d time.Duration) {
	if !p.Enabled() {
		return
	}

	s, ok := p.stages[name]
	if !ok {
		s = &StageStat{Name: name}
		p.stages[name] = s
	}

	s.Total += d
	s.Calls++
}

// Merge folds other into p.
func (p *Profiler) Merge(other *Profiler) {
	if !p.Enabled() || other == nil {
		return
	}

	for name, s := range other.stages {
		dst, ok := p.stages[name]
		if !ok {
			dst = &StageStat{Name: name}
			p.stages[name] = dst
		}

		dst.Total += s.Total
		dst.Calls += s.Calls
	}
}

// Stats returns a snapshot of every stage sorted by name.
func (p *Profiler) Stats() []StageStat {
	if !p.Enabled() {
		return nil
	}

	out := make([]StageStat, 0, len(p.stages))
	for _, s := range p.stages {
		out = append(out, *s)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}
