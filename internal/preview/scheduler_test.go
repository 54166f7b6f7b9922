package preview_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"vidgen/internal/codec"
	"vidgen/internal/gateway"
	"vidgen/internal/preview"
	"vidgen/internal/project"
	"vidgen/internal/services"
)

type fakeTimer struct {
	clock   *fakeClock
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	wasActive := !t.stopped && !t.fired
	t.stopped = true
	return wasActive
}

// fakeClock records timers instead of running them.
type fakeClock struct {
	mu      sync.Mutex
	timers  []*fakeTimer
	windows []time.Duration
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) preview.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	timer := &fakeTimer{clock: c, f: f}
	c.timers = append(c.timers, timer)
	c.windows = append(c.windows, d)
	return timer
}

// FireAll runs every pending timer in creation order.
func (c *fakeClock) FireAll() {
	c.mu.Lock()
	var due []*fakeTimer
	for _, timer := range c.timers {
		if !timer.stopped && !timer.fired {
			timer.fired = true
			due = append(due, timer)
		}
	}
	c.mu.Unlock()
	for _, timer := range due {
		timer.f()
	}
}

// FireStopped runs timers that were cancelled, as a racing runtime timer could.
func (c *fakeClock) FireStopped() {
	c.mu.Lock()
	var stale []*fakeTimer
	for _, timer := range c.timers {
		if timer.stopped {
			stale = append(stale, timer)
		}
	}
	c.mu.Unlock()
	for _, timer := range stale {
		timer.f()
	}
}

func (c *fakeClock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, timer := range c.timers {
		if !timer.stopped && !timer.fired {
			n++
		}
	}
	return n
}

func (c *fakeClock) LastWindow() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.windows) == 0 {
		return 0
	}
	return c.windows[len(c.windows)-1]
}

type reply struct {
	image string
	err   error
}

type fakeCall struct {
	kind    string
	text    string
	surface string
	fps     int
	reply   chan reply
}

func (c *fakeCall) succeed(image string) { c.reply <- reply{image: image} }

func (c *fakeCall) fail(err error) { c.reply <- reply{err: err} }

// fakeRenderer blocks every call until the test answers it.
type fakeRenderer struct {
	calls chan *fakeCall
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{calls: make(chan *fakeCall, 32)}
}

func (r *fakeRenderer) PreviewScene(ctx context.Context, req codec.ScenePreview) (gateway.Preview, error) {
	surface, _ := services.SurfaceFromContext(ctx)
	return r.wait(&fakeCall{kind: "scene", surface: surface, fps: req.FPS, reply: make(chan reply, 1)})
}

func (r *fakeRenderer) PreviewText(ctx context.Context, el codec.WireTextElement) (gateway.Preview, error) {
	surface, _ := services.SurfaceFromContext(ctx)
	return r.wait(&fakeCall{kind: "text", text: el.Text, surface: surface, reply: make(chan reply, 1)})
}

func (r *fakeRenderer) wait(call *fakeCall) (gateway.Preview, error) {
	r.calls <- call
	rep := <-call.reply
	if rep.err != nil {
		return gateway.Preview{}, rep.err
	}
	return gateway.Preview{Image: rep.image}, nil
}

func (r *fakeRenderer) next(t *testing.T) *fakeCall {
	t.Helper()
	select {
	case call := <-r.calls:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for renderer call")
		return nil
	}
}

func (r *fakeRenderer) expectIdle(t *testing.T) {
	t.Helper()
	select {
	case call := <-r.calls:
		t.Fatalf("unexpected renderer call %+v", call)
	case <-time.After(50 * time.Millisecond):
	}
}

// updates collects the states a surface reports.
type updates struct {
	ch chan preview.State
}

func newUpdates() *updates { return &updates{ch: make(chan preview.State, 64)} }

func (u *updates) record(s preview.State) { u.ch <- s }

func (u *updates) waitSeq(t *testing.T, seq uint64) preview.State {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-u.ch:
			if s.Seq == seq {
				return s
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state seq %d", seq)
		}
	}
}

func withText(texts ...string) project.Project {
	p := project.NewVideo()
	scene := p.Scenes[0]
	scene.TextElements = nil
	for _, text := range texts {
		el := project.DefaultTextElement()
		el.Text = text
		scene.TextElements = append(scene.TextElements, el)
	}
	return p.WithScene(0, scene)
}

func newScheduler(r preview.Renderer, clock *fakeClock, opts ...preview.Option) *preview.Scheduler {
	base := []preview.Option{preview.WithAfterFunc(clock.AfterFunc)}
	return preview.New(r, append(base, opts...)...)
}

func TestOnlyNewestResponseIsApplied(t *testing.T) {
	renderer := newFakeRenderer()
	clock := &fakeClock{}
	sched := newScheduler(renderer, clock)
	defer sched.Close()
	seen := newUpdates()
	surface := sched.Register("text", preview.TextElement(0, 0), seen.record)

	var calls []*fakeCall
	for _, text := range []string{"one", "two", "three"} {
		surface.Edit(withText(text))
		clock.FireAll()
		calls = append(calls, renderer.next(t))
	}
	if !surface.State().Loading {
		t.Fatal("expected loading while requests are outstanding")
	}

	calls[2].succeed("art-three")
	got := seen.waitSeq(t, 3)
	if got.Artifact != "art-three" || !got.Loading {
		t.Fatalf("after newest response: %+v", got)
	}

	calls[0].succeed("art-one")
	calls[1].succeed("art-two")
	sched.Drain()

	final := surface.State()
	if final.Artifact != "art-three" || final.Seq != 3 {
		t.Fatalf("stale response leaked into state: %+v", final)
	}
	if final.Loading {
		t.Fatal("expected loading to clear once every request returned")
	}
}

func TestUpdateCallbackMayReadState(t *testing.T) {
	renderer := newFakeRenderer()
	clock := &fakeClock{}
	sched := newScheduler(renderer, clock)
	defer sched.Close()

	var (
		surface *preview.Surface
		once    sync.Once
	)
	entered := make(chan struct{})
	release := make(chan struct{})
	reads := make(chan preview.State, 8)
	surface = sched.Register("text", preview.TextElement(0, 0), func(preview.State) {
		once.Do(func() {
			close(entered)
			<-release
		})
		reads <- surface.State()
	})

	surface.Edit(withText("first"))
	go clock.FireAll()
	<-entered

	// A second notification arrives while the first callback is still running.
	go surface.Refresh()
	time.Sleep(20 * time.Millisecond)
	close(release)

	for i := range 2 {
		select {
		case <-reads:
		case <-time.After(2 * time.Second):
			t.Fatalf("callback %d blocked reading surface state", i+1)
		}
	}

	for range 2 {
		renderer.next(t).succeed("art")
	}
	sched.Drain()
	if state := surface.State(); state.Seq != 2 || state.Artifact != "art" || state.Loading {
		t.Fatalf("unexpected final state %+v", state)
	}
}

func TestEditsWithinWindowCoalesce(t *testing.T) {
	renderer := newFakeRenderer()
	clock := &fakeClock{}
	sched := newScheduler(renderer, clock, preview.WithWindows(time.Second, time.Second, 300*time.Millisecond))
	defer sched.Close()
	surface := sched.Register("text", preview.TextElement(0, 0), nil)

	surface.Edit(withText("a"))
	surface.Edit(withText("ab"))
	surface.Edit(withText("abc"))
	if clock.Active() != 1 {
		t.Fatalf("expected one pending timer, got %d", clock.Active())
	}
	if clock.LastWindow() != 300*time.Millisecond {
		t.Fatalf("text surface used window %s", clock.LastWindow())
	}

	clock.FireStopped()
	renderer.expectIdle(t)

	clock.FireAll()
	call := renderer.next(t)
	if call.text != "abc" || call.surface != "text" {
		t.Fatalf("unexpected call %+v", call)
	}
	renderer.expectIdle(t)
	call.succeed("art")
	sched.Drain()
}

func TestFailureIsScopedToSurface(t *testing.T) {
	renderer := newFakeRenderer()
	clock := &fakeClock{}
	sched := newScheduler(renderer, clock)
	defer sched.Close()
	first := sched.Register("first", preview.TextElement(0, 0), nil)
	second := sched.Register("second", preview.TextElement(0, 1), nil)

	p := withText("hello", "world")
	first.Edit(p)
	second.Edit(p)
	clock.FireAll()
	for range 2 {
		call := renderer.next(t)
		call.succeed("ok-" + call.surface)
	}
	sched.Drain()

	boom := errors.New("boom")
	first.Edit(withText("hello!", "world"))
	clock.FireAll()
	renderer.next(t).fail(boom)
	sched.Drain()

	state := first.State()
	if !errors.Is(state.Err, boom) {
		t.Fatalf("expected surface error, got %v", state.Err)
	}
	if state.Artifact != "ok-first" {
		t.Fatalf("expected previous artifact kept, got %q", state.Artifact)
	}
	if other := second.State(); other.Err != nil || other.Artifact != "ok-second" {
		t.Fatalf("failure leaked into other surface: %+v", other)
	}

	first.Edit(withText("hello!!", "world"))
	clock.FireAll()
	renderer.next(t).succeed("fixed")
	sched.Drain()
	if state := first.State(); state.Err != nil || state.Artifact != "fixed" {
		t.Fatalf("expected success to clear error, got %+v", state)
	}
}

func TestRefreshBypassesDebounce(t *testing.T) {
	renderer := newFakeRenderer()
	clock := &fakeClock{}
	sched := newScheduler(renderer, clock)
	defer sched.Close()
	surface := sched.Register("text", preview.TextElement(0, 0), nil)

	surface.Refresh()
	renderer.expectIdle(t)

	surface.Edit(withText("now"))
	surface.Refresh()
	if clock.Active() != 0 {
		t.Fatal("expected refresh to cancel the pending timer")
	}
	call := renderer.next(t)
	if call.text != "now" {
		t.Fatalf("unexpected call %+v", call)
	}
	clock.FireStopped()
	renderer.expectIdle(t)

	call.succeed("art")
	sched.Drain()
	if state := surface.State(); state.Artifact != "art" || state.Seq != 1 {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestCloseDiscardsInFlightResult(t *testing.T) {
	renderer := newFakeRenderer()
	clock := &fakeClock{}
	sched := newScheduler(renderer, clock)
	seen := newUpdates()
	surface := sched.Register("text", preview.TextElement(0, 0), seen.record)

	surface.Edit(withText("bye"))
	clock.FireAll()
	call := renderer.next(t)
	<-seen.ch // loading

	surface.Edit(withText("pending"))
	sched.Close()
	if clock.Active() != 0 {
		t.Fatal("expected close to cancel the pending timer")
	}
	if _, ok := sched.Surface("text"); ok {
		t.Fatal("expected closed surface to be unregistered")
	}

	call.succeed("late")
	sched.Drain()
	if state := surface.State(); state.Artifact != "" {
		t.Fatalf("closed surface applied a result: %+v", state)
	}
	select {
	case s := <-seen.ch:
		t.Fatalf("closed surface notified %+v", s)
	default:
	}

	surface.Edit(withText("again"))
	if clock.Active() != 0 {
		t.Fatal("closed surface started a timer")
	}
}

func TestRegisterReplacesSurface(t *testing.T) {
	sched := newScheduler(newFakeRenderer(), &fakeClock{})
	defer sched.Close()
	old := sched.Register("main", preview.WholeScene(0), nil)
	replacement := sched.Register("main", preview.WholeScene(0), nil)

	got, ok := sched.Surface("main")
	if !ok || got != replacement || got == old {
		t.Fatal("expected the newest registration to win")
	}
}

func TestCacheServesIdenticalPayload(t *testing.T) {
	renderer := newFakeRenderer()
	clock := &fakeClock{}
	sched := newScheduler(renderer, clock, preview.WithCacheTTL(time.Minute))
	defer sched.Close()
	surface := sched.Register("text", preview.TextElement(0, 0), nil)

	surface.Edit(withText("same"))
	clock.FireAll()
	renderer.next(t).succeed("art-same")
	sched.Drain()

	surface.Edit(withText("other"))
	clock.FireAll()
	renderer.next(t).succeed("art-other")
	sched.Drain()

	surface.Edit(withText("same"))
	clock.FireAll()
	renderer.expectIdle(t)
	state := surface.State()
	if state.Artifact != "art-same" || state.Seq != 3 || state.Loading {
		t.Fatalf("expected cached artifact at seq 3, got %+v", state)
	}
}

func TestEmptyTextClearsWithoutRequest(t *testing.T) {
	renderer := newFakeRenderer()
	clock := &fakeClock{}
	sched := newScheduler(renderer, clock)
	defer sched.Close()
	surface := sched.Register("text", preview.TextElement(0, 0), nil)

	surface.Edit(withText("visible"))
	clock.FireAll()
	renderer.next(t).succeed("art")
	sched.Drain()

	surface.Edit(withText("   "))
	clock.FireAll()
	renderer.expectIdle(t)
	if state := surface.State(); state.Artifact != "" || state.Err != nil || state.Seq != 2 {
		t.Fatalf("expected cleared preview, got %+v", state)
	}
}

func TestMissingTargetReportsValidationError(t *testing.T) {
	renderer := newFakeRenderer()
	clock := &fakeClock{}
	sched := newScheduler(renderer, clock)
	defer sched.Close()
	surface := sched.Register("text", preview.TextElement(0, 4), nil)

	surface.Edit(withText("only one"))
	clock.FireAll()
	renderer.expectIdle(t)
	if err := surface.State().Err; !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestScenePreviewUsesConfiguredFPS(t *testing.T) {
	renderer := newFakeRenderer()
	clock := &fakeClock{}
	sched := newScheduler(renderer, clock, preview.WithFPS(12))
	defer sched.Close()
	surface := sched.Register("scene", preview.WholeScene(0), nil)

	surface.Edit(withText("title"))
	if clock.LastWindow() != 1200*time.Millisecond {
		t.Fatalf("scene surface used window %s", clock.LastWindow())
	}
	clock.FireAll()
	call := renderer.next(t)
	if call.kind != "scene" || call.fps != 12 {
		t.Fatalf("unexpected call %+v", call)
	}
	call.succeed("frame")
	sched.Drain()
	if surface.State().Artifact != "frame" {
		t.Fatalf("unexpected state %+v", surface.State())
	}
}
