package strata

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"
)

// Profiler accumulates named scope timings and counters until the next
// Reset. Scopes report in first-use order so consecutive reports line up.
// It belongs to the driving goroutine.
type Profiler struct {
	scopes map[string]time.Duration
	starts map[string]time.Time
	counts map[string]int
	order  []string
}

func NewProfiler() *Profiler {
	return &Profiler{
		scopes: make(map[string]time.Duration),
		starts: make(map[string]time.Time),
		counts: make(map[string]int),
	}
}

func (p *Profiler) Begin(name string) {
	p.starts[name] = time.Now()
	if !slices.Contains(p.order, name) {
		p.order = append(p.order, name)
	}
}

func (p *Profiler) End(name string) {
	if start, ok := p.starts[name]; ok {
		p.scopes[name] += time.Since(start)
	}
}

func (p *Profiler) Add(name string, count int) {
	p.counts[name] += count
}

// Counter returns the accumulated value of a named counter.
func (p *Profiler) Counter(name string) int { return p.counts[name] }

// Reset zeroes timings and counters but keeps the scope order.
func (p *Profiler) Reset() {
	for k := range p.scopes {
		p.scopes[k] = 0
	}
	for k := range p.counts {
		p.counts[k] = 0
	}
}

func (p *Profiler) Report() string {
	var sb strings.Builder

	sb.WriteString("Timings (CPU):\n")
	for _, name := range p.order {
		ms := float64(p.scopes[name].Microseconds()) / 1000.0
		sb.WriteString(fmt.Sprintf("  %-15s: %.2f ms\n", name, ms))
	}

	keys := make([]string, 0, len(p.counts))
	for k := range p.counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sb.WriteString("Counters:\n")
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("  %-15s: %d\n", k, p.counts[k]))
	}

	return sb.String()
}

// ProfilerModule installs a profiler resource for systems to time
// themselves with.
type ProfilerModule struct{}

func (m ProfilerModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewProfiler())
}
