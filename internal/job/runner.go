package job

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/orato/internal/evaluation"
	"github.com/MrWong99/orato/internal/metric"
	"github.com/MrWong99/orato/internal/observe"
	"github.com/MrWong99/orato/internal/presentation"
	"github.com/MrWong99/orato/internal/store"
	"github.com/MrWong99/orato/pkg/provider/features"
	"github.com/MrWong99/orato/pkg/provider/preprocess"
	"github.com/MrWong99/orato/pkg/provider/transcribe"

	"github.com/google/uuid"
)

// defaultMaxSuggestions caps the improvement suggestions on a result.
const defaultMaxSuggestions = 5

// SubmitRequest carries one evaluation request. Audio is the raw upload as
// received; decoding happens inside the pipeline.
type SubmitRequest struct {
	Audio       []byte
	StudentAge  int
	StudentName string
	Topic       string
}

// RunnerConfig holds all dependencies for a [Runner].
type RunnerConfig struct {
	Registry   *Registry
	Preprocess preprocess.Provider
	Transcribe transcribe.Provider
	Features   features.Provider
	Builder    *presentation.Builder

	// Store archives completed evaluations. Optional; persistence failures
	// never fail a job.
	Store store.Store

	// Metric overrides the evaluator thresholds. Zero value means defaults.
	Metric metric.Config

	// Model is recorded in result metadata as the transcription model used.
	Model string

	// MaxSuggestions caps improvement suggestions per result.
	// Zero means the default of 5.
	MaxSuggestions int

	// Observe receives pipeline telemetry. Nil means the process-wide
	// default instruments.
	Observe *observe.Metrics
}

// Runner owns the evaluation pipeline. Submit validates synchronously and
// then drives each job through its stages in a dedicated goroutine, so a
// slow transcription never blocks status polling. All methods are safe for
// concurrent use.
type Runner struct {
	reg     *Registry
	pre     preprocess.Provider
	stt     transcribe.Provider
	feat    features.Provider
	builder *presentation.Builder
	archive store.Store
	model   string
	metrics *observe.Metrics

	// mu guards evals and maxSugg, which can be swapped by Retune while
	// jobs are running.
	mu      sync.RWMutex
	evals   []metric.Evaluator
	maxSugg int
}

// NewRunner creates a Runner with the given dependencies.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("job: runner requires a registry")
	}
	if cfg.Preprocess == nil || cfg.Transcribe == nil || cfg.Features == nil {
		return nil, fmt.Errorf("job: runner requires preprocess, transcribe and features providers")
	}
	if cfg.Builder == nil {
		cfg.Builder = presentation.New()
	}
	mcfg := cfg.Metric
	if len(mcfg.FillerWords) == 0 {
		mcfg = metric.Default()
	}
	maxSugg := cfg.MaxSuggestions
	if maxSugg <= 0 {
		maxSugg = defaultMaxSuggestions
	}
	metrics := cfg.Observe
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	return &Runner{
		reg:     cfg.Registry,
		pre:     cfg.Preprocess,
		stt:     cfg.Transcribe,
		feat:    cfg.Features,
		builder: cfg.Builder,
		archive: cfg.Store,
		evals:   metric.All(mcfg),
		model:   cfg.Model,
		maxSugg: maxSugg,
		metrics: metrics,
	}, nil
}

// Retune rebuilds the evaluator set from cfg and updates the suggestion cap.
// Jobs submitted after the call use the new thresholds; jobs already past
// the analysis stage are unaffected. Zero values keep the defaults.
func (r *Runner) Retune(cfg metric.Config, maxSuggestions int) {
	if len(cfg.FillerWords) == 0 {
		cfg = metric.Default()
	}
	if maxSuggestions <= 0 {
		maxSuggestions = defaultMaxSuggestions
	}
	evals := metric.All(cfg)
	r.mu.Lock()
	r.evals = evals
	r.maxSugg = maxSuggestions
	r.mu.Unlock()
}

// Submit validates the request, registers a pending job and starts its
// pipeline in the background. Validation failures return a
// *evaluation.ValidationError and no job is created. The returned ID can
// immediately be polled via the registry.
//
// The pipeline outlives the request context: cancelling ctx after Submit
// returns does not abort the job.
func (r *Runner) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	profile, err := evaluation.Classify(req.StudentAge)
	if err != nil {
		return "", err
	}
	if len(req.Audio) == 0 {
		return "", &evaluation.ValidationError{Field: "audio_file", Reason: "empty upload"}
	}
	dur, err := r.pre.Probe(req.Audio)
	if err != nil {
		return "", &evaluation.ValidationError{Field: "audio_file", Reason: err.Error()}
	}
	if dur <= 0 {
		return "", &evaluation.ValidationError{Field: "audio_file", Reason: "recording has zero duration"}
	}

	id := uuid.NewString()
	sub := Submission{
		StudentName: req.StudentName,
		StudentAge:  req.StudentAge,
		Topic:       req.Topic,
		Profile:     profile,
	}
	if err := r.reg.Add(id, sub); err != nil {
		return "", &evaluation.InternalError{Err: err}
	}

	r.metrics.RecordJobSubmitted(ctx, string(profile.Group))
	slog.Info("job submitted",
		"job_id", id,
		"age_group", profile.Group,
		"student_age", req.StudentAge,
		"audio_bytes", len(req.Audio),
	)

	go r.run(context.WithoutCancel(ctx), id, sub, req.Audio)
	return id, nil
}

// run drives one job through the pipeline. It never returns an error: every
// failure path ends in the registry via Fail, and panics are recovered at
// this boundary so a broken job cannot take the process down.
func (r *Runner) run(ctx context.Context, id string, sub Submission, raw []byte) {
	start := time.Now()
	r.metrics.ActiveJobs.Add(ctx, 1)
	defer func() {
		if rec := recover(); rec != nil {
			err := &evaluation.InternalError{Err: fmt.Errorf("pipeline panic: %v", rec)}
			slog.Error("job pipeline panicked", "job_id", id, "err", err)
			_ = r.reg.Fail(id, err.Error())
		}
		r.metrics.ActiveJobs.Add(ctx, -1)
		r.metrics.JobDuration.Record(ctx, time.Since(start).Seconds())
		snap, err := r.reg.Get(id)
		if err == nil {
			r.metrics.RecordJobFinished(ctx, string(snap.Status))
		}
	}()

	ctx, span := observe.StartSpan(ctx, "job.run", trace.WithAttributes(
		observe.Attr("job_id", id),
		observe.Attr("age_group", string(sub.Profile.Group)),
	))
	defer span.End()

	// Stage 1: decode and normalize the upload.
	_ = r.reg.Advance(id, StatusPreprocessing)
	stageStart := time.Now()
	audio, err := r.pre.Process(ctx, raw)
	r.metrics.PreprocessDuration.Record(ctx, time.Since(stageStart).Seconds())
	if err != nil {
		r.fail(id, &evaluation.ProcessingError{Stage: "preprocessing", Err: err})
		return
	}
	duration := audio.Duration()

	// Stage 2: transcription and feature extraction, concurrently. Feature
	// extraction failure is non-fatal; the audio metrics degrade instead.
	_ = r.reg.Advance(id, StatusExtractingFeatures)
	var (
		transcript *transcribe.Transcript
		feats      *features.Features
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_ = r.reg.Advance(id, StatusTranscribing)
		t := time.Now()
		tr, err := r.stt.Transcribe(gctx, audio)
		r.metrics.TranscribeDuration.Record(ctx, time.Since(t).Seconds())
		if err != nil {
			return &evaluation.ProcessingError{Stage: "transcription", Err: err}
		}
		transcript = tr
		return nil
	})
	g.Go(func() error {
		t := time.Now()
		f, err := r.feat.Extract(gctx, audio)
		r.metrics.FeatureDuration.Record(ctx, time.Since(t).Seconds())
		if err != nil {
			slog.Warn("feature extraction failed, audio metrics will degrade", "job_id", id, "err", err)
			return nil
		}
		feats = f
		return nil
	})
	if err := g.Wait(); err != nil {
		r.fail(id, err)
		return
	}

	// Stage 3: score all nine metrics and aggregate.
	_ = r.reg.Advance(id, StatusAnalyzing)
	stageStart = time.Now()
	inputs := metric.Inputs{
		Transcript: transcript,
		Features:   feats,
		Duration:   duration,
		Profile:    sub.Profile,
	}
	results := r.evaluate(ctx, id, inputs)
	r.metrics.EvaluateDuration.Record(ctx, time.Since(stageStart).Seconds())

	overall := evaluation.Aggregate(results, sub.Profile.Weights)
	r.mu.RLock()
	maxSugg := r.maxSugg
	r.mu.RUnlock()
	res := &evaluation.Result{
		Metadata: evaluation.Metadata{
			StudentName:     sub.StudentName,
			StudentAge:      sub.StudentAge,
			AgeGroup:        sub.Profile.Group,
			Topic:           sub.Topic,
			DurationSeconds: duration.Seconds(),
			WordCount:       transcript.WordCount(),
			EvaluatedAt:     time.Now().UTC(),
			Model:           r.model,
		},
		Transcript: evaluation.TranscriptInfo{
			FullText:  transcript.Text,
			WordCount: transcript.WordCount(),
			Language:  transcript.Language,
		},
		Scores:      evaluation.NewScores(overall, results),
		Analysis:    results,
		Suggestions: evaluation.Suggestions(results, maxSugg),
	}

	// Stage 4: render the age-appropriate presentation.
	pres, err := r.builder.Build(res)
	if err != nil {
		r.fail(id, &evaluation.InternalError{Err: err})
		return
	}

	if err := r.reg.Complete(id, res, pres); err != nil {
		slog.Error("job completion rejected", "job_id", id, "err", err)
		return
	}
	slog.Info("job completed",
		"job_id", id,
		"age_group", sub.Profile.Group,
		"overall", overall,
		"words", transcript.WordCount(),
		"took", time.Since(start),
	)

	r.persist(ctx, id, res, pres)
}

// evaluate runs every metric evaluator against the inputs. A failing or
// panicking evaluator yields a degraded result for that metric only; the job
// continues.
func (r *Runner) evaluate(ctx context.Context, id string, in metric.Inputs) map[evaluation.MetricID]evaluation.MetricResult {
	r.mu.RLock()
	evals := r.evals
	r.mu.RUnlock()
	results := make(map[evaluation.MetricID]evaluation.MetricResult, len(evals))
	for _, ev := range evals {
		res, err := r.safeEvaluate(ev, in)
		if err != nil {
			merr := &evaluation.MetricError{Metric: ev.ID(), Err: err}
			slog.Warn("metric evaluation failed", "job_id", id, "metric", ev.ID(), "err", merr)
			r.metrics.RecordMetricFailure(ctx, string(ev.ID()))
			res = evaluation.MetricResult{
				Metric:   ev.ID(),
				Score:    70,
				Feedback: []string{fmt.Sprintf("Warning: %s analysis was not available for this recording.", ev.ID())},
				Degraded: true,
			}
		}
		results[ev.ID()] = res
	}
	return results
}

// safeEvaluate isolates evaluator panics so one broken metric cannot fail
// the job.
func (r *Runner) safeEvaluate(ev metric.Evaluator, in metric.Inputs) (res evaluation.MetricResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("evaluator panic: %v", rec)
		}
	}()
	return ev.Evaluate(in)
}

// fail transitions the job to failed and logs the cause.
func (r *Runner) fail(id string, err error) {
	slog.Error("job failed", "job_id", id, "err", err)
	_ = r.reg.Fail(id, err.Error())
}

// persist archives a completed evaluation. Best effort: storage errors are
// counted and logged, never surfaced to the job.
func (r *Runner) persist(ctx context.Context, id string, res *evaluation.Result, pres presentation.Presentation) {
	if r.archive == nil {
		return
	}
	rec, err := store.NewRecord(id, res, pres)
	if err == nil {
		err = r.archive.Save(ctx, rec)
	}
	if err != nil {
		r.metrics.StoreErrors.Add(ctx, 1)
		slog.Warn("archiving evaluation failed", "job_id", id, "err", err)
	}
}
