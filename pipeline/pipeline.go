// Package pipeline runs the batch motion segmentation of a frame sequence.
//
// A run decodes every frame, reduces each to a smoothed brightness field,
// estimates the flow of every consecutive pair, averages the flow over sliding
// windows and segments the squared magnitude of every window. Each window is
// written as a colour-coded seg_<i>.ppm.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-motionseg/flow"
	"github.com/nvr-ai/go-motionseg/grid"
	"github.com/nvr-ai/go-motionseg/images"
	"github.com/nvr-ai/go-motionseg/images/kernels"
	"github.com/nvr-ai/go-motionseg/profiler"
	"github.com/nvr-ai/go-motionseg/segment"
	"github.com/nvr-ai/go-motionseg/video"
)

// ErrNotEnoughFrames is returned when a source yields fewer than two frames.
var ErrNotEnoughFrames = errors.New("pipeline: at least two frames are required")

// Stage names recorded in the profiler.
const (
	StageDecode    = "decode"
	StageFlow      = "flow"
	StageAggregate = "aggregate"
	StageSegment   = "segment"
	StageWrite     = "write"

	MetricComponents = "components"
	MetricMotion     = "window_mean_motion"
)

// Pipeline is a configured batch run.
type Pipeline struct {
	cfg       Config
	estimator flow.Estimator
	gauss     []float32
	prof      *profiler.Profiler
}

// WindowResult describes one segmented window.
type WindowResult struct {
	// Index is the window start, in flow fields.
	Index int
	// Path is the written segmentation image.
	Path string
	// Stats summarises the window's components.
	Stats segment.Stats
	// Labels holds the representative of every cell.
	Labels *grid.Grid[int]
}

// Result is the outcome of Run.
type Result struct {
	Frames     int
	FlowFields int
	Windows    []WindowResult
}

// New validates cfg and prepares a pipeline.
//
// Arguments:
//   - cfg: The run configuration.
//   - prof: Receives stage timings and metrics; nil creates a private profiler.
//
// Returns:
//   - *Pipeline: The prepared pipeline.
//   - error: flow.ErrInvalidWindow or ErrInvalidConfig when cfg is unusable.
func New(cfg Config, prof *profiler.Profiler) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	method, err := flow.ParseMethod(string(cfg.Method))
	if err != nil {
		return nil, errors.Wrap(ErrInvalidConfig, err.Error())
	}
	cfg.Method = method

	est, err := flow.NewEstimator(method, cfg.Flow)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidConfig, err.Error())
	}
	if prof == nil {
		prof = profiler.New(profiler.Options{})
	}
	return &Pipeline{
		cfg:       cfg,
		estimator: est,
		gauss:     kernels.Gaussian(cfg.Sigma),
		prof:      prof,
	}, nil
}

// Config returns the validated configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Run processes every frame of src and writes one segmentation per window.
//
// Every fatal error aborts the run: frame source failures wrap
// video.ErrSourceUnavailable and output failures wrap images.ErrIOWrite.
//
// Arguments:
//   - ctx: Cancels the run between frames and windows.
//   - src: The frame source. It is not closed.
//
// Returns:
//   - *Result: Per-window outcomes ordered by window index.
//   - error: The first fatal error.
func (p *Pipeline) Run(ctx context.Context, src video.Source) (*Result, error) {
	done := p.prof.StartOperation(StageDecode)
	frames, err := video.ReadAll(src)
	done()
	if err != nil {
		return nil, err
	}
	log.Printf("decoded %d video frames", len(frames))

	fields, err := p.Flow(ctx, frames)
	if err != nil {
		return nil, err
	}

	log.Printf("integrating frames in window size %d", p.cfg.TSteps)
	done = p.prof.StartOperation(StageAggregate)
	mags, err := flow.Aggregate(fields, p.cfg.TSteps)
	done()
	if err != nil {
		return nil, err
	}

	windows, err := p.SegmentWindows(ctx, mags)
	if err != nil {
		return nil, err
	}
	return &Result{Frames: len(frames), FlowFields: len(fields), Windows: windows}, nil
}

// Brightness reduces a frame to its smoothed brightness field.
func (p *Pipeline) Brightness(frame *grid.Grid[grid.RGB]) *grid.Grid[float32] {
	opt := kernels.Options{Parallel: p.cfg.Flow.Parallel}
	return kernels.Separable(images.Brightness(frame), p.gauss, opt)
}

// Flow estimates the flow of every consecutive frame pair. With FlowVectors
// set, a needle diagram flow_<i>.pgm is written per pair.
func (p *Pipeline) Flow(ctx context.Context, frames []*grid.Grid[grid.RGB]) ([]*flow.Field, error) {
	if len(frames) < 2 {
		return nil, errors.Wrapf(ErrNotEnoughFrames, "got %d", len(frames))
	}
	h, w := frames[0].Height(), frames[0].Width()
	for i, f := range frames {
		if f.Height() != h || f.Width() != w {
			return nil, errors.Wrapf(video.ErrSourceUnavailable,
				"frame %d is %dx%d, expected %dx%d", i, f.Width(), f.Height(), w, h)
		}
	}

	log.Printf("computing optical flow vectors (%s)", p.estimator.Name())
	fields := make([]*flow.Field, 0, len(frames)-1)
	cur := p.Brightness(frames[0])
	for i := 1; i < len(frames); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		log.Printf("frame %d", i)

		prev := cur
		cur = p.Brightness(frames[i])

		done := p.prof.StartOperation(StageFlow)
		f := p.estimator.Estimate(prev, cur)
		done()
		fields = append(fields, f)

		if p.cfg.FlowVectors {
			path := filepath.Join(p.cfg.OutputDir, fmt.Sprintf("flow_%d.pgm", i-1))
			if err := images.WritePGMFile(path, images.DrawFlowVectors(f.Vectors(), p.cfg.VectorSpacing)); err != nil {
				return nil, err
			}
		}
	}
	return fields, nil
}

// SegmentWindows segments every aggregated field and writes seg_<i>.ppm.
// Windows are processed by up to Workers goroutines; results keep window order.
func (p *Pipeline) SegmentWindows(ctx context.Context, mags []*grid.Grid[float32]) ([]WindowResult, error) {
	log.Printf("segmenting %d integrated images", len(mags))

	results := make([]WindowResult, len(mags))
	errs := make([]error, len(mags))

	sem := make(chan struct{}, p.cfg.Workers)
	var wg sync.WaitGroup
	for i := range mags {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i], errs[i] = p.segmentWindow(i, mags[i])
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (p *Pipeline) segmentWindow(i int, mag *grid.Grid[float32]) (WindowResult, error) {
	done := p.prof.StartOperation(StageSegment)
	res := segment.Field(mag, segment.Params{Threshold: p.cfg.Threshold, MinSize: p.cfg.MinSize})
	done()

	p.prof.RecordMetric(MetricComponents, float64(res.Stats.Components))
	if n := mag.Len(); n > 0 {
		p.prof.RecordMetric(MetricMotion, float64(grid.Sum(mag))/float64(n))
	}
	log.Printf("window %d: %s", i, res.Stats)

	done = p.prof.StartOperation(StageWrite)
	defer done()
	colored := images.ColorSegments(res.Labels, rand.New(rand.NewSource(p.cfg.Seed+int64(i))))
	path := filepath.Join(p.cfg.OutputDir, fmt.Sprintf("seg_%d.ppm", i))
	if err := images.WritePPMFile(path, colored); err != nil {
		return WindowResult{}, err
	}
	return WindowResult{Index: i, Path: path, Stats: res.Stats, Labels: res.Labels}, nil
}
