// Package profiler times pipeline stages and tracks per-window metrics.
//
// Stage timings and metric samples are kept in bounded histories and summarised
// with mean, standard deviation and median. Summaries can be logged on demand
// or periodically while a run is in progress.
package profiler

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Options configures a Profiler.
type Options struct {
	// ReportInterval is how often Start emits a progress report (default: 5s).
	ReportInterval time.Duration
	// MaxSamples bounds the history kept per stage or metric (default: 1000).
	MaxSamples int
}

// Profiler records stage durations and metric values. It is safe for concurrent
// use.
type Profiler struct {
	reportInterval time.Duration
	maxSamples     int

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	start   time.Time
	running bool

	series map[string]*series
}

// Kind distinguishes timing series from metric series.
type Kind int

// Kind constants
const (
	// KindStage is a series of durations, in seconds.
	KindStage Kind = iota
	// KindMetric is a series of plain values.
	KindMetric
)

// series is a bounded history of samples with running extremes.
type series struct {
	kind     Kind
	values   []float64
	min, max float64
	count    int64
}

// Summary describes one series.
type Summary struct {
	Name   string
	Kind   Kind
	Count  int64
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
	Median float64
	// Total is the sum of the retained samples.
	Total float64
}

// String formats the summary for log lines. Stage values are printed as
// durations.
func (s Summary) String() string {
	if s.Kind == KindStage {
		d := func(v float64) time.Duration {
			return time.Duration(v * float64(time.Second)).Truncate(time.Microsecond)
		}
		return fmt.Sprintf("%s: count=%d total=%v mean=%v median=%v min=%v max=%v",
			s.Name, s.Count, d(s.Total), d(s.Mean), d(s.Median), d(s.Min), d(s.Max))
	}
	return fmt.Sprintf("%s: count=%d mean=%.3f sd=%.3f median=%.3f min=%.3f max=%.3f",
		s.Name, s.Count, s.Mean, s.StdDev, s.Median, s.Min, s.Max)
}

// New creates a profiler with the given options.
func New(opts Options) *Profiler {
	if opts.ReportInterval <= 0 {
		opts.ReportInterval = 5 * time.Second
	}
	if opts.MaxSamples <= 0 {
		opts.MaxSamples = 1000
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Profiler{
		reportInterval: opts.ReportInterval,
		maxSamples:     opts.MaxSamples,
		ctx:            ctx,
		cancel:         cancel,
		start:          time.Now(),
		series:         make(map[string]*series),
	}
}

// Start begins periodic reporting. Calling Start on a running profiler is a
// no-op.
func (p *Profiler) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true
	p.start = time.Now()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ticker := time.NewTicker(p.reportInterval)
		defer ticker.Stop()

		for {
			select {
			case <-p.ctx.Done():
				return
			case <-ticker.C:
				p.Report()
			}
		}
	}()
}

// Stop ends periodic reporting and waits for the reporter to exit.
func (p *Profiler) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}

// StartOperation begins timing a stage.
//
// Arguments:
//   - name: The stage name.
//
// Returns:
//   - func(): Call when the stage completes.
func (p *Profiler) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		p.record(name, KindStage, time.Since(start).Seconds())
	}
}

// RecordMetric records one value of a metric.
func (p *Profiler) RecordMetric(name string, value float64) {
	p.record(name, KindMetric, value)
}

func (p *Profiler) record(name string, kind Kind, v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.series[name]
	if !ok {
		s = &series{kind: kind, min: v, max: v}
		p.series[name] = s
	}
	s.values = append(s.values, v)
	if len(s.values) > p.maxSamples {
		s.values = s.values[1:]
	}
	s.count++
	if v < s.min {
		s.min = v
	}
	if v > s.max {
		s.max = v
	}
}

// Summaries returns a summary of every series, ordered by name.
func (p *Profiler) Summaries() []Summary {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Summary, 0, len(p.series))
	for name, s := range p.series {
		out = append(out, summarize(name, s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Summary returns the summary of one series.
func (p *Profiler) Summary(name string) (Summary, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.series[name]
	if !ok {
		return Summary{}, false
	}
	return summarize(name, s), true
}

func summarize(name string, s *series) Summary {
	sum := Summary{Name: name, Kind: s.kind, Count: s.count, Min: s.min, Max: s.max}
	if len(s.values) == 0 {
		return sum
	}
	sorted := append([]float64(nil), s.values...)
	sort.Float64s(sorted)

	for _, v := range sorted {
		sum.Total += v
	}
	sum.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	if len(sorted) > 1 {
		sum.Mean, sum.StdDev = stat.MeanStdDev(sorted, nil)
	} else {
		sum.Mean = sorted[0]
	}
	return sum
}

// Report logs the elapsed time, heap usage and every series summary.
func (p *Profiler) Report() {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	p.mu.Lock()
	elapsed := time.Since(p.start).Truncate(time.Millisecond)
	p.mu.Unlock()

	log.Printf("profile: elapsed=%v heap=%s gc=%d", elapsed, formatBytes(mem.HeapAlloc), mem.NumGC)
	for _, s := range p.Summaries() {
		log.Printf("profile: %s", s)
	}
}

// formatBytes formats byte counts in human-readable format.
func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
