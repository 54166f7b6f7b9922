package tasks

import (
	"context"
	"net/http"
	"time"

	"vidgen/internal/gateway"
	"vidgen/internal/logging"
	"vidgen/internal/services"
)

type poller struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// startPollerLocked starts polling id unless a poller already runs for it.
func (o *Orchestrator) startPollerLocked(id string) {
	if _, ok := o.pollers[id]; ok {
		return
	}
	ctx, cancel := context.WithCancel(services.WithTaskID(o.baseCtx, id))
	p := &poller{id: id, ctx: ctx, cancel: cancel, done: make(chan struct{})}
	o.pollers[id] = p
	o.wg.Add(1)
	go o.runPoller(p)
}

// runPoller fetches the job on a fixed interval. The next fetch is scheduled
// only after the previous one returns, so polls for one id never overlap.
func (o *Orchestrator) runPoller(p *poller) {
	defer o.wg.Done()
	defer close(p.done)
	defer p.cancel()

	logger := logging.WithContext(p.ctx, o.logger)
	timer := time.NewTimer(o.interval)
	defer timer.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-timer.C:
		}
		if p.ctx.Err() != nil {
			return
		}

		job, err := o.gateway.GetJob(p.ctx, p.id)
		if err != nil {
			if p.ctx.Err() != nil {
				return
			}
			if gateway.StatusCode(err) == http.StatusNotFound {
				logging.WarnWithContext(logger, "task vanished from render service", "task_missing",
					logging.Error(err),
					logging.String(logging.FieldImpact, "polling stopped"),
				)
				o.forget(p)
				return
			}
			logger.Warn("task poll failed",
				logging.Error(err),
				logging.String(logging.FieldEventType, "task_poll_failed"),
				logging.String(logging.FieldErrorHint, "polling retries on the next interval"),
			)
			timer.Reset(o.interval)
			continue
		}

		task, applied, terminal := o.apply(p, FromJob(job))
		if !applied {
			return
		}
		o.publish(task)
		o.record(p.ctx, func(r Recorder) error { return r.RecordStatus(p.ctx, task) })
		if terminal {
			logger.Info("task finished",
				logging.String("status", task.Status.String()),
				logging.Duration("elapsed", Elapsed(task, o.now())),
			)
			return
		}
		timer.Reset(o.interval)
	}
}

// apply replaces the snapshot of p.id with task. It refuses results that
// arrive after the poller was stopped, and transitions out of a terminal
// state. A terminal result releases the poller and the submission gate.
func (o *Orchestrator) apply(p *poller, task Task) (Task, bool, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed || p.ctx.Err() != nil || o.pollers[p.id] != p {
		return Task{}, false, false
	}

	task.ID = p.id
	if current, ok := o.tasks[p.id]; ok {
		if !current.Status.CanTransition(task.Status) {
			o.logger.Debug("ignoring status regression",
				logging.String(logging.FieldTaskID, p.id),
				logging.String("from", current.Status.String()),
				logging.String("to", task.Status.String()),
			)
			task.Status = current.Status
		}
		if task.SubmittedAt.IsZero() {
			task.SubmittedAt = current.SubmittedAt
		}
	}
	if task.Status.IsTerminal() && task.CompletedAt == nil {
		now := o.now().UTC()
		task.CompletedAt = &now
	}
	o.storeLocked(task)

	terminal := task.Status.IsTerminal()
	if terminal {
		o.releaseLocked(p.id)
	}
	return task, true, terminal
}

func (o *Orchestrator) forget(p *poller) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pollers[p.id] != p {
		return
	}
	o.releaseLocked(p.id)
	o.dropLocked(p.id)
}

func (o *Orchestrator) releaseLocked(id string) {
	delete(o.pollers, id)
	if o.active == id {
		o.active = ""
	}
}
