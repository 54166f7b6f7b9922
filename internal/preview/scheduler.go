package preview

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"vidgen/internal/codec"
	"vidgen/internal/config"
	"vidgen/internal/gateway"
	"vidgen/internal/logging"
)

// Renderer is the part of the render gateway the scheduler needs.
type Renderer interface {
	PreviewScene(ctx context.Context, req codec.ScenePreview) (gateway.Preview, error)
	PreviewText(ctx context.Context, el codec.WireTextElement) (gateway.Preview, error)
}

// Timer is a cancellable pending callback.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. It matches time.AfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Scheduler owns the preview surfaces of one editing session.
type Scheduler struct {
	renderer  Renderer
	afterFunc AfterFunc
	windows   map[targetKind]time.Duration
	fps       int
	cache     *cache.Cache
	logger    *slog.Logger

	mu       sync.Mutex
	surfaces map[string]*Surface
	inflight sync.WaitGroup
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithWindows sets the debounce windows per target kind.
func WithWindows(scene, image, text time.Duration) Option {
	return func(s *Scheduler) {
		s.windows[kindScene] = scene
		s.windows[kindImage] = image
		s.windows[kindText] = text
	}
}

// WithFPS sets the frame rate requested for scene previews.
func WithFPS(fps int) Option {
	return func(s *Scheduler) {
		if fps > 0 {
			s.fps = fps
		}
	}
}

// WithCacheTTL serves identical payloads from memory for ttl. Zero disables
// the cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Scheduler) {
		if ttl <= 0 {
			s.cache = nil
			return
		}
		s.cache = cache.New(ttl, 2*ttl)
	}
}

// WithAfterFunc replaces the timer source, mainly for tests.
func WithAfterFunc(fn AfterFunc) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.afterFunc = fn
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logging.NewComponentLogger(logger, "preview")
	}
}

// New builds a scheduler that renders through r.
func New(r Renderer, opts ...Option) *Scheduler {
	s := &Scheduler{
		renderer:  r,
		afterFunc: realAfterFunc,
		windows: map[targetKind]time.Duration{
			kindScene: 1200 * time.Millisecond,
			kindImage: 1200 * time.Millisecond,
			kindText:  700 * time.Millisecond,
		},
		fps:      10,
		logger:   logging.NewNop(),
		surfaces: make(map[string]*Surface),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromConfig builds a scheduler using the preview section of cfg.
func NewFromConfig(cfg *config.Config, r Renderer, logger *slog.Logger, opts ...Option) *Scheduler {
	scene, image, text := cfg.DebounceWindows()
	base := []Option{
		WithWindows(scene, image, text),
		WithFPS(cfg.Preview.FPS),
		WithCacheTTL(cfg.PreviewCacheTTL()),
		WithLogger(logger),
	}
	return New(r, append(base, opts...)...)
}

// Register creates an independent surface. onUpdate receives visible state
// changes in order, skipping any already superseded when its turn comes. It
// may call State but must not edit, refresh or close the same surface.
// Registering a name twice closes the previous surface.
func (s *Scheduler) Register(name string, target Target, onUpdate func(State)) *Surface {
	surface := &Surface{
		name:     name,
		target:   target,
		window:   s.windows[target.kind],
		sched:    s,
		onUpdate: onUpdate,
		logger:   s.logger.With(logging.String(logging.FieldSurface, name)),
	}

	s.mu.Lock()
	previous := s.surfaces[name]
	s.surfaces[name] = surface
	s.mu.Unlock()

	if previous != nil {
		previous.Close()
	}
	return surface
}

// Surface returns a registered surface by name.
func (s *Scheduler) Surface(name string) (*Surface, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	surface, ok := s.surfaces[name]
	return surface, ok
}

// Close tears down every surface. Requests already on the wire finish in
// the background and their results are dropped.
func (s *Scheduler) Close() {
	s.mu.Lock()
	surfaces := make([]*Surface, 0, len(s.surfaces))
	for _, surface := range s.surfaces {
		surfaces = append(surfaces, surface)
	}
	s.mu.Unlock()

	for _, surface := range surfaces {
		surface.Close()
	}
}

// Drain blocks until every request issued so far has returned.
func (s *Scheduler) Drain() {
	s.inflight.Wait()
}

func (s *Scheduler) forget(surface *Surface) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.surfaces[surface.name] == surface {
		delete(s.surfaces, surface.name)
	}
}

func (s *Scheduler) cached(key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	value, ok := s.cache.Get(key)
	if !ok {
		return "", false
	}
	artifact, ok := value.(string)
	return artifact, ok
}

func (s *Scheduler) remember(key, artifact string) {
	if s.cache != nil {
		s.cache.SetDefault(key, artifact)
	}
}

func cacheKey(kind targetKind, payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("hash preview payload: %w", err)
	}
	sum := sha256.Sum256(raw)
	return kind.String() + ":" + hex.EncodeToString(sum[:]), nil
}
