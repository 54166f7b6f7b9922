package preview

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"vidgen/internal/codec"
	"vidgen/internal/gateway"
	"vidgen/internal/logging"
	"vidgen/internal/project"
	"vidgen/internal/services"
)

// State is what a surface currently shows.
type State struct {
	// Loading is true while any request for the surface is outstanding.
	Loading bool
	// Artifact is the last applied preview, usually a data URL.
	Artifact string
	// Err is the failure of the latest request, cleared by the next success.
	Err error
	// Seq is the sequence number of the request whose result is applied.
	Seq       uint64
	UpdatedAt time.Time
}

// Surface is one independently debounced preview.
type Surface struct {
	name     string
	target   Target
	window   time.Duration
	sched    *Scheduler
	onUpdate func(State)
	logger   *slog.Logger

	mu          sync.Mutex
	snapshot    project.Project
	hasSnapshot bool
	timer       Timer
	timerGen    uint64
	seq         uint64
	inflight    int
	state       State
	closed      bool
	notified    uint64

	notifyMu  sync.Mutex
	delivered uint64
}

func (s *Surface) Name() string { return s.name }

func (s *Surface) Target() Target { return s.target }

// State returns a copy of the current state.
func (s *Surface) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Edit records p as the latest snapshot and restarts the debounce timer.
// Only the timer's final fire issues a request.
func (s *Surface) Edit(p project.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.snapshot = p
	s.hasSnapshot = true
	s.stopTimerLocked()
	gen := s.timerGen
	s.timer = s.sched.afterFunc(s.window, func() { s.fire(gen) })
}

// Refresh issues a request for the latest snapshot immediately, dropping any
// pending debounce.
func (s *Surface) Refresh() {
	s.mu.Lock()
	if s.closed || !s.hasSnapshot {
		s.mu.Unlock()
		return
	}
	s.stopTimerLocked()
	p := s.snapshot
	s.mu.Unlock()
	s.issue(p)
}

// Close cancels the pending debounce. A request already on the wire is left
// to finish and its result is discarded.
func (s *Surface) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopTimerLocked()
	s.mu.Unlock()
	s.sched.forget(s)
}

// stopTimerLocked cancels the pending timer. Bumping the generation makes a
// fire that already started but lost the race for mu a no-op.
func (s *Surface) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.timerGen++
}

func (s *Surface) fire(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.timerGen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	p := s.snapshot
	s.mu.Unlock()
	s.issue(p)
}

func (s *Surface) issue(p project.Project) {
	req, err := s.target.build(p, s.sched.fps)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.seq++
	seq := s.seq

	if err != nil {
		s.state.Err = err
		s.applyLocked(seq)
		return
	}
	if req.payload == nil {
		s.state.Artifact = ""
		s.state.Err = nil
		s.applyLocked(seq)
		return
	}

	key, keyErr := cacheKey(req.kind, req.payload)
	if keyErr == nil {
		if artifact, ok := s.sched.cached(key); ok {
			s.state.Artifact = artifact
			s.state.Err = nil
			s.applyLocked(seq)
			return
		}
	}

	s.inflight++
	s.state.Loading = true
	s.sched.inflight.Add(1)
	s.notifyLocked()

	go func() {
		defer s.sched.inflight.Done()
		preview, err := s.call(req)
		if err == nil && keyErr == nil {
			s.sched.remember(key, preview.Image)
		}
		s.complete(seq, preview, err)
	}()
}

func (s *Surface) call(req request) (gateway.Preview, error) {
	ctx := services.WithSurface(context.Background(), s.name)
	switch payload := req.payload.(type) {
	case codec.ScenePreview:
		return s.sched.renderer.PreviewScene(ctx, payload)
	case codec.WireTextElement:
		return s.sched.renderer.PreviewText(ctx, payload)
	default:
		return gateway.Preview{}, services.Wrap(services.ErrValidation, "preview", "call", "unsupported payload", nil)
	}
}

// complete applies a response only when it belongs to the latest request.
func (s *Surface) complete(seq uint64, preview gateway.Preview, err error) {
	s.mu.Lock()
	s.inflight--
	if s.closed {
		s.mu.Unlock()
		return
	}
	loading := s.inflight > 0
	if seq != s.seq {
		s.logger.Debug("stale preview discarded",
			logging.Uint64("seq", seq),
			logging.Uint64("latest", s.seq),
			logging.Bool("loading", loading),
		)
		if s.state.Loading == loading {
			s.mu.Unlock()
			return
		}
		s.state.Loading = loading
		s.notifyLocked()
		return
	}

	if err != nil {
		logging.WarnWithContext(s.logger, "preview failed", "preview_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the render service logs"),
			logging.String(logging.FieldImpact, "preview shows the previous frame"),
		)
		s.state.Err = err
	} else {
		s.state.Artifact = preview.Image
		s.state.Err = nil
	}
	s.state.Loading = loading
	s.applyLocked(seq)
}

// applyLocked stamps the state with seq and notifies. It releases mu.
func (s *Surface) applyLocked(seq uint64) {
	s.state.Seq = seq
	s.state.UpdatedAt = time.Now()
	s.notifyLocked()
}

// notifyLocked hands the current state to onUpdate. It releases mu before
// the callback runs, so onUpdate may read the surface. A state overtaken by a
// newer notification before its turn is dropped instead of delivered late.
func (s *Surface) notifyLocked() {
	s.notified++
	stamp := s.notified
	state := s.state
	s.mu.Unlock()

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if stamp <= s.delivered {
		return
	}
	s.delivered = stamp
	if s.onUpdate != nil {
		s.onUpdate(state)
	}
}
