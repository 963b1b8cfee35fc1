package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yuvrajjangir/AlphaAI-Backend/internal/core"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/research"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/observability/metrics"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/observability/statsd"
)

// Progress checkpoints reported by the pipeline.
const (
	ProgressLoaded        = 25
	ProgressCompanyParsed = 50
	ProgressPersonParsed  = 75
	ProgressDone          = 100
)

// outcomeTimeout bounds the writes that record an attempt's outcome after the attempt deadline.
const outcomeTimeout = 10 * time.Second

// ResearchWorkerOptions groups dependencies for ResearchWorker.
type ResearchWorkerOptions struct {
	Jobs     *JobService             // Required
	People   core.PeopleRepository   // Required
	Research core.ResearchRepository // Required
	Provider core.ResearchProvider   // Required
	Prompts  *research.Prompts       // Required
	Progress core.ProgressPublisher  // Required
	Inflight core.InflightStore      // Optional: released on terminal states
	Logger   *slog.Logger            // Optional
	Metrics  statsd.Sink             // Optional
}

// ResearchWorker executes the enrichment pipeline for one reserved job at a time.
type ResearchWorker struct {
	jobs     *JobService
	people   core.PeopleRepository
	research core.ResearchRepository
	provider core.ResearchProvider
	prompts  *research.Prompts
	progress core.ProgressPublisher
	inflight core.InflightStore
	logger   *slog.Logger
	metrics  statsd.Sink
	now      func() time.Time
}

// NewResearchWorker constructs the pipeline.
func NewResearchWorker(opts ResearchWorkerOptions) (*ResearchWorker, error) {
	switch {
	case opts.Jobs == nil:
		return nil, errors.New("JobService is required")
	case opts.People == nil:
		return nil, errors.New("PeopleRepository is required")
	case opts.Research == nil:
		return nil, errors.New("ResearchRepository is required")
	case opts.Provider == nil:
		return nil, errors.New("ResearchProvider is required")
	case opts.Prompts == nil:
		return nil, errors.New("Prompts are required")
	case opts.Progress == nil:
		return nil, errors.New("ProgressPublisher is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ResearchWorker{
		jobs:     opts.Jobs,
		people:   opts.People,
		research: opts.Research,
		provider: opts.Provider,
		prompts:  opts.Prompts,
		progress: opts.Progress,
		inflight: opts.Inflight,
		logger:   logger.With("component", "research_worker"),
		metrics:  opts.Metrics,
		now:      time.Now,
	}, nil
}

// attempt tracks the state of one pipeline run.
type attempt struct {
	job      *model.Job
	pair     model.ResearchPayload
	progress int
}

// Process runs one attempt of job under the attempt deadline and records its outcome.
// The returned error reports only a failure to record the outcome; pipeline errors are stored on the job.
func (w *ResearchWorker) Process(ctx context.Context, job *model.Job) error {
	started := w.now()
	a := &attempt{job: job, progress: job.Progress}

	attemptCtx, cancel := context.WithTimeout(ctx, w.jobs.AttemptTimeout())
	result, runErr := w.run(attemptCtx, a)
	cancel()

	// The outcome is recorded even when the attempt deadline or shutdown cancelled the pipeline.
	outcomeCtx, cancelOutcome := context.WithTimeout(context.WithoutCancel(ctx), outcomeTimeout)
	defer cancelOutcome()

	if runErr != nil {
		if errors.Is(runErr, model.ErrJobNotActive) {
			w.logger.WarnContext(ctx, "job lease lost during attempt", "job_id", job.ID)
			return nil
		}
		return w.recordFailure(outcomeCtx, a, runErr, w.now().Sub(started))
	}
	return w.recordSuccess(outcomeCtx, a, result, w.now().Sub(started))
}

func (w *ResearchWorker) run(ctx context.Context, a *attempt) (model.ResearchJobResult, error) {
	pair, err := a.job.ResearchPayload()
	if err != nil {
		return model.ResearchJobResult{}, err
	}
	a.pair = pair

	person, err := w.people.GetPerson(ctx, pair.PersonID)
	if err != nil {
		return model.ResearchJobResult{}, fmt.Errorf("load person %d: %w", pair.PersonID, err)
	}
	company, err := w.people.GetCompany(ctx, pair.CompanyID)
	if err != nil {
		return model.ResearchJobResult{}, fmt.Errorf("load company %d: %w", pair.CompanyID, err)
	}
	if err := w.advance(ctx, a, ProgressLoaded); err != nil {
		return model.ResearchJobResult{}, err
	}

	data := research.PromptData{Person: *person, Company: *company}
	companyAnswer, err := w.ask(ctx, research.StageCompany, w.prompts.Company, data)
	if err != nil {
		return model.ResearchJobResult{}, err
	}
	companyResearch, err := research.ParseCompany(companyAnswer)
	if err != nil {
		return model.ResearchJobResult{}, err
	}
	if err := w.advance(ctx, a, ProgressCompanyParsed); err != nil {
		return model.ResearchJobResult{}, err
	}

	personAnswer, err := w.ask(ctx, research.StagePerson, w.prompts.Person, data)
	if err != nil {
		return model.ResearchJobResult{}, err
	}
	findings, err := research.ParseFindings(personAnswer)
	if err != nil {
		return model.ResearchJobResult{}, err
	}
	if err := w.advance(ctx, a, ProgressPersonParsed); err != nil {
		return model.ResearchJobResult{}, err
	}

	searchLog, err := research.BuildSearchLog(w.provider.Name(), findings)
	if err != nil {
		return model.ResearchJobResult{}, fmt.Errorf("build search log: %w", err)
	}
	saved, err := w.research.Persist(ctx, model.PersistResearchParams{
		Result:    research.BuildResult(pair.PersonID, pair.CompanyID, a.job.ID, companyResearch, company.Domain),
		SearchLog: searchLog,
	})
	if err != nil {
		return model.ResearchJobResult{}, fmt.Errorf("persist research: %w", err)
	}
	w.logger.DebugContext(ctx, "research persisted", "job_id", a.job.ID, "research_id", saved.ID)

	return model.ResearchJobResult{Success: true, Results: findings, Count: len(findings)}, nil
}

func (w *ResearchWorker) ask(
	ctx context.Context,
	stage string,
	render func(research.PromptData) (string, error),
	data research.PromptData,
) (string, error) {
	prompt, err := render(data)
	if err != nil {
		return "", fmt.Errorf("render %s prompt: %w", stage, err)
	}
	start := w.now()
	text, err := w.provider.Generate(ctx, prompt)
	metrics.EmitProviderCall(w.metrics, metrics.ProviderCall{
		Provider: w.provider.Name(),
		Stage:    stage,
		Duration: w.now().Sub(start),
		Err:      err,
	})
	if err != nil {
		return "", fmt.Errorf("%s research: %w", stage, err)
	}
	return text, nil
}

// advance stores a progress checkpoint and publishes the stored value.
func (w *ResearchWorker) advance(ctx context.Context, a *attempt, progress int) error {
	stored, err := w.jobs.SetProgress(ctx, a.job.ID, progress)
	if err != nil {
		return err
	}
	a.progress = stored
	w.publish(ctx, model.ProgressEvent{JobID: a.job.ID, Progress: stored, State: model.JobStateActive})
	return nil
}

func (w *ResearchWorker) recordSuccess(
	ctx context.Context,
	a *attempt,
	result model.ResearchJobResult,
	elapsed time.Duration,
) error {
	completed, err := w.jobs.Complete(ctx, a.job.ID, result)
	if err != nil {
		metrics.EmitJobLifecycle(w.metrics, metrics.JobMetric{
			JobType:    string(a.job.Type),
			Transition: metrics.TransitionComplete,
			Result:     metrics.ResultError,
			Attempt:    a.job.AttemptsMade,
			Err:        err,
		})
		return err
	}
	if !completed {
		w.logger.WarnContext(ctx, "job was no longer active at completion", "job_id", a.job.ID)
		return nil
	}

	metrics.EmitJobLifecycle(w.metrics, metrics.JobMetric{
		JobType:    string(a.job.Type),
		Transition: metrics.TransitionComplete,
		Result:     metrics.ResultSuccess,
		Duration:   elapsed,
		Attempt:    a.job.AttemptsMade,
	})
	w.logger.InfoContext(ctx, "research job completed",
		"job_id", a.job.ID,
		"findings", result.Count,
		"attempt", a.job.AttemptsMade,
		"duration", elapsed,
	)
	w.publish(ctx, model.ProgressEvent{JobID: a.job.ID, Progress: ProgressDone, State: model.JobStateCompleted})
	w.release(ctx, a)
	return nil
}

func (w *ResearchWorker) recordFailure(ctx context.Context, a *attempt, cause error, elapsed time.Duration) error {
	state, err := w.jobs.Fail(ctx, a.job, cause)
	if err != nil {
		if errors.Is(err, model.ErrJobNotActive) {
			w.logger.WarnContext(ctx, "job lease lost before failure was recorded", "job_id", a.job.ID)
			return nil
		}
		return err
	}

	result := metrics.ResultRetry
	if state == model.JobStateFailed {
		result = metrics.ResultError
	}
	metrics.EmitJobLifecycle(w.metrics, metrics.JobMetric{
		JobType:    string(a.job.Type),
		Transition: metrics.TransitionFail,
		Result:     result,
		Duration:   elapsed,
		Attempt:    a.job.AttemptsMade,
		Err:        cause,
	})

	w.publish(ctx, model.ProgressEvent{JobID: a.job.ID, Progress: a.progress, State: state})
	if state == model.JobStateFailed {
		w.release(ctx, a)
	}
	return nil
}

func (w *ResearchWorker) publish(ctx context.Context, ev model.ProgressEvent) {
	if err := w.progress.PublishProgress(ctx, ev); err != nil {
		w.logger.WarnContext(ctx, "publish progress", "job_id", ev.JobID, "progress", ev.Progress, "error", err)
	}
}

func (w *ResearchWorker) release(ctx context.Context, a *attempt) {
	if w.inflight == nil {
		return
	}
	pair := a.pair
	if pair == (model.ResearchPayload{}) {
		decoded, err := a.job.ResearchPayload()
		if err != nil {
			return
		}
		pair = decoded
	}
	if err := w.inflight.Release(ctx, pair); err != nil {
		w.logger.WarnContext(ctx, "release in-flight key", "job_id", a.job.ID, "error", err)
	}
}
