package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"vidgen/internal/codec"
	"vidgen/internal/config"
	"vidgen/internal/gateway"
	"vidgen/internal/logging"
	"vidgen/internal/project"
	"vidgen/internal/services"
)

// ErrClosed is returned by operations on a closed Orchestrator.
var ErrClosed = errors.New("task orchestrator closed")

// Gateway is the part of the render gateway the orchestrator needs.
type Gateway interface {
	CreateJob(ctx context.Context, env codec.Envelope) (gateway.Job, error)
	GetJob(ctx context.Context, id string) (gateway.Job, error)
	ListJobs(ctx context.Context) ([]gateway.Job, error)
	DeleteJob(ctx context.Context, id string) error
}

// Recorder persists submissions and the snapshots applied to them.
type Recorder interface {
	RecordSubmission(ctx context.Context, p project.Project, t Task) error
	RecordStatus(ctx context.Context, t Task) error
}

// Orchestrator owns the task snapshot of one editing session.
type Orchestrator struct {
	gateway  Gateway
	interval time.Duration
	logger   *slog.Logger
	recorder Recorder
	observer func(Task)
	now      func() time.Time

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	list    singleflight.Group

	mu         sync.Mutex
	tasks      map[string]Task
	order      []string
	pollers    map[string]*poller
	active     string
	submitting bool
	localSeq   int
	closed     bool
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

func WithPollInterval(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.interval = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logging.NewComponentLogger(logger, "tasks")
	}
}

// WithRecorder mirrors submissions and applied snapshots into r.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) {
		o.recorder = r
	}
}

// WithObserver calls fn with every applied snapshot, outside any lock.
func WithObserver(fn func(Task)) Option {
	return func(o *Orchestrator) {
		o.observer = fn
	}
}

// WithClock replaces time.Now for synthesized timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// New builds an orchestrator backed by gw.
func New(gw Gateway, opts ...Option) *Orchestrator {
	ctx, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		gateway:  gw,
		interval: 3 * time.Second,
		logger:   logging.NewNop(),
		now:      time.Now,
		baseCtx:  ctx,
		cancel:   cancel,
		tasks:    make(map[string]Task),
		pollers:  make(map[string]*poller),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewFromConfig builds an orchestrator polling at the configured interval.
func NewFromConfig(cfg *config.Config, gw Gateway, logger *slog.Logger, opts ...Option) *Orchestrator {
	base := []Option{
		WithPollInterval(cfg.PollInterval()),
		WithLogger(logger),
	}
	return New(gw, append(base, opts...)...)
}

// Submit sends p for rendering and starts polling the new job.
//
// Projects with nothing to render are rejected before any network call, as is
// a second submission while an earlier one is still queued or processing. A
// transport failure yields a local Failed task alongside the error; that task
// is never polled.
func (o *Orchestrator) Submit(ctx context.Context, p project.Project) (Task, error) {
	if p.Kind != project.KindVideo {
		return Task{}, services.Wrap(services.ErrValidation, "tasks", "submit",
			fmt.Sprintf("%s projects are rendered synchronously", p.Kind), nil)
	}
	if !project.CanGenerate(p) {
		return Task{}, services.Wrap(services.ErrValidation, "tasks", "submit",
			"project has no text or background to render", nil)
	}
	env, err := codec.NewEnvelope(p)
	if err != nil {
		return Task{}, err
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return Task{}, ErrClosed
	}
	if o.submitting || o.active != "" {
		active := o.active
		o.mu.Unlock()
		detail := "a submission is in progress"
		if active != "" {
			detail = fmt.Sprintf("task %s has not finished", active)
		}
		return Task{}, services.Wrap(services.ErrSubmissionActive, "tasks", "submit", detail, nil)
	}
	o.submitting = true
	o.mu.Unlock()

	job, err := o.gateway.CreateJob(ctx, env)

	o.mu.Lock()
	o.submitting = false
	if o.closed {
		o.mu.Unlock()
		if err != nil {
			return Task{}, err
		}
		return FromJob(job), ErrClosed
	}
	if err != nil {
		now := o.now().UTC()
		o.localSeq++
		task := Task{
			ID:          fmt.Sprintf("local-%d", o.localSeq),
			Status:      StatusFailed,
			SubmittedAt: now,
			CompletedAt: &now,
			Error:       err.Error(),
			Local:       true,
		}
		o.storeLocked(task)
		o.mu.Unlock()

		logging.WarnWithContext(o.logger, "submission failed", "submit_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the render service is reachable"),
			logging.String(logging.FieldImpact, "render was not queued"),
		)
		o.publish(task)
		o.record(ctx, func(r Recorder) error { return r.RecordSubmission(ctx, p, task) })
		return task, err
	}

	task := FromJob(job)
	if task.SubmittedAt.IsZero() {
		task.SubmittedAt = o.now().UTC()
	}
	o.storeLocked(task)
	if !task.Status.IsTerminal() {
		o.active = task.ID
		o.startPollerLocked(task.ID)
	}
	o.mu.Unlock()

	o.logger.Info("render submitted",
		logging.String(logging.FieldTaskID, task.ID),
		logging.String("status", task.Status.String()),
		logging.String("template", p.Template),
		logging.Int("scenes", len(p.Scenes)),
	)
	o.publish(task)
	o.record(ctx, func(r Recorder) error { return r.RecordSubmission(ctx, p, task) })
	return task, nil
}

// Track fetches id once and keeps polling it while it is not terminal. It is
// used for jobs submitted by an earlier session; it does not claim the
// submission gate.
func (o *Orchestrator) Track(ctx context.Context, id string) (Task, error) {
	job, err := o.gateway.GetJob(ctx, id)
	if err != nil {
		return Task{}, err
	}
	task := FromJob(job)

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return Task{}, ErrClosed
	}
	if current, ok := o.tasks[task.ID]; ok && current.Status.IsTerminal() {
		o.mu.Unlock()
		return current, nil
	}
	o.storeLocked(task)
	if !task.Status.IsTerminal() {
		o.startPollerLocked(task.ID)
	}
	o.mu.Unlock()

	o.publish(task)
	return task, nil
}

// List replaces the snapshot with the jobs the render service reports.
// Concurrent calls share one request.
func (o *Orchestrator) List(ctx context.Context) ([]Task, error) {
	v, err, _ := o.list.Do("list", func() (any, error) {
		jobs, err := o.gateway.ListJobs(ctx)
		if err != nil {
			return nil, err
		}
		listed := make([]Task, 0, len(jobs))
		for _, job := range jobs {
			listed = append(listed, FromJob(job))
		}

		o.mu.Lock()
		defer o.mu.Unlock()
		if o.closed {
			return nil, ErrClosed
		}
		o.tasks = make(map[string]Task, len(listed))
		o.order = o.order[:0]
		for _, task := range listed {
			o.storeLocked(task)
		}
		return slices.Clone(listed), nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]Task)), nil
}

// Delete removes id on the render service, then stops polling it and drops
// it from the snapshot. Local tasks are dropped without a network call.
func (o *Orchestrator) Delete(ctx context.Context, id string) error {
	o.mu.Lock()
	local := o.tasks[id].Local
	o.mu.Unlock()

	if !local {
		if err := o.gateway.DeleteJob(ctx, id); err != nil {
			return err
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if p, ok := o.pollers[id]; ok {
		p.cancel()
		delete(o.pollers, id)
	}
	if o.active == id {
		o.active = ""
	}
	o.dropLocked(id)
	o.logger.Info("task deleted", logging.String(logging.FieldTaskID, id))
	return nil
}

// Get returns the current snapshot of id.
func (o *Orchestrator) Get(id string) (Task, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	task, ok := o.tasks[id]
	return task, ok
}

// Snapshot returns every held task in submission or listing order.
func (o *Orchestrator) Snapshot() []Task {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Task, 0, len(o.order))
	for _, id := range o.order {
		out = append(out, o.tasks[id])
	}
	return out
}

// Active returns the id of the submission holding the gate, if any.
func (o *Orchestrator) Active() (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active, o.active != ""
}

// Wait blocks until id reaches a terminal state or ctx ends.
func (o *Orchestrator) Wait(ctx context.Context, id string) (Task, error) {
	o.mu.Lock()
	task, known := o.tasks[id]
	p := o.pollers[id]
	o.mu.Unlock()

	if !known {
		return Task{}, fmt.Errorf("task %s is not tracked", id)
	}
	if p != nil {
		select {
		case <-ctx.Done():
			return Task{}, ctx.Err()
		case <-p.done:
		}
		o.mu.Lock()
		task, known = o.tasks[id]
		o.mu.Unlock()
		if !known {
			return Task{}, fmt.Errorf("task %s was removed while waiting", id)
		}
	}
	if !task.Status.IsTerminal() {
		return task, fmt.Errorf("task %s stopped tracking in status %s", id, task.Status)
	}
	return task, nil
}

// Close stops every poller and waits for them. No poll result is applied
// afterwards.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.active = ""
	o.mu.Unlock()

	o.cancel()
	o.wg.Wait()
}

func (o *Orchestrator) storeLocked(task Task) {
	if _, ok := o.tasks[task.ID]; !ok {
		o.order = append(o.order, task.ID)
	}
	o.tasks[task.ID] = task
}

func (o *Orchestrator) dropLocked(id string) {
	delete(o.tasks, id)
	if i := slices.Index(o.order, id); i >= 0 {
		o.order = slices.Delete(o.order, i, i+1)
	}
}

func (o *Orchestrator) publish(task Task) {
	if o.observer != nil {
		o.observer(task)
	}
}

func (o *Orchestrator) record(ctx context.Context, fn func(Recorder) error) {
	if o.recorder == nil {
		return
	}
	if err := fn(o.recorder); err != nil {
		o.logger.Warn("journal write failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "journal_write_failed"),
			logging.String(logging.FieldErrorHint, "check permissions on the state directory"),
			logging.String(logging.FieldImpact, "history may be incomplete"),
		)
	}
}
