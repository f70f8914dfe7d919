// Package sim provides a simulated temporal renderer: it sweeps a range of
// simulated time over a real duration and reports its progress on the bus.
package sim

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/llehouerou/graphtime/internal/bus"
	"github.com/llehouerou/graphtime/internal/epoch"
	"github.com/llehouerou/graphtime/internal/timeline"
)

// DefaultTick is the animation step interval.
const DefaultTick = 16 * time.Millisecond

var (
	ErrEmptyRange  = errors.New("simulated range is empty")
	ErrBadDuration = errors.New("sweep duration must be positive")
)

// Verify Engine implements timeline.Renderer at compile time.
var _ timeline.Renderer = (*Engine)(nil)

// Config describes one simulated timeline.
type Config struct {
	ID       bus.InstanceID
	From     time.Time
	To       time.Time
	Duration time.Duration    // real time to sweep the whole range at 1x
	Tick     time.Duration
	Clock    func() time.Time // time.Now when nil
}

// Engine is a renderer whose animation loop runs on its own goroutine.
// Renderer methods never wait for the loop.
type Engine struct {
	mu       sync.Mutex
	cfg      Config
	broker   *bus.Broker
	log      zerolog.Logger
	clock    func() time.Time
	position float64
	playing  bool
	speed    float64
	last     time.Time
}

// New validates cfg and creates a paused engine at position 0.
func New(cfg Config, broker *bus.Broker, log zerolog.Logger) (*Engine, error) {
	if !cfg.To.After(cfg.From) {
		return nil, errors.Wrapf(ErrEmptyRange, "instance %s: %s..%s", cfg.ID,
			cfg.From.Format(time.DateOnly), cfg.To.Format(time.DateOnly))
	}
	if cfg.Duration <= 0 {
		return nil, errors.Wrapf(ErrBadDuration, "instance %s", cfg.ID)
	}
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultTick
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Engine{
		cfg:    cfg,
		broker: broker,
		log:    log.With().Str("instance", string(cfg.ID)).Logger(),
		clock:  cfg.Clock,
		speed:  1,
	}, nil
}

// Run drives the animation loop until ctx is canceled.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.Tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			e.Step(now)
		}
	}
}

// Step advances the simulation to now and publishes the resulting progress.
func (e *Engine) Step(now time.Time) {
	e.mu.Lock()
	if !e.playing {
		e.last = now
		e.mu.Unlock()
		return
	}
	elapsed := now.Sub(e.last)
	e.last = now
	if elapsed > 0 {
		e.position += elapsed.Seconds() * e.speed / e.cfg.Duration.Seconds()
	}
	done := e.position >= 1
	if done {
		e.position = 1
		e.playing = false
	}
	ev := e.progressLocked()
	e.mu.Unlock()

	e.publish(ev)
	if done {
		e.log.Debug().Msg("timeline complete")
		e.publish(bus.Complete{})
	}
}

// TimelineStart plays at speed. Starting at the end rewinds first.
func (e *Engine) TimelineStart(speed float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.position >= 1 {
		e.position = 0
	}
	if speed > 0 {
		e.speed = speed
	}
	if !e.playing {
		e.last = e.clock()
	}
	e.playing = true
}

// TimelinePause stops the animation and reports the exact pause point.
func (e *Engine) TimelinePause() {
	e.mu.Lock()
	e.playing = false
	ev := e.progressLocked()
	e.mu.Unlock()
	e.publish(ev)
}

// TimelineSeek jumps to position and reports it.
func (e *Engine) TimelineSeek(position float64) {
	e.mu.Lock()
	e.position = min(max(position, 0), 1)
	ev := e.progressLocked()
	e.mu.Unlock()
	e.publish(ev)
}

// TimelineReset rewinds and stops without emitting anything.
func (e *Engine) TimelineReset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.position = 0
	e.playing = false
	e.speed = 1
}

// Position returns the normalized position.
func (e *Engine) Position() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

// Playing reports whether the engine is animating.
func (e *Engine) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

// CutoffAt maps a normalized position to simulated time.
func (e *Engine) CutoffAt(position float64) epoch.Cutoff {
	span := e.cfg.To.Unix() - e.cfg.From.Unix()
	return epoch.At(e.cfg.From.Unix() + int64(position*float64(span)))
}

func (e *Engine) progressLocked() bus.Progress {
	return bus.Progress{
		Position: e.position,
		Playing:  e.playing,
		Cutoff:   e.CutoffAt(e.position),
	}
}

func (e *Engine) publish(ev bus.Event) {
	if e.broker == nil {
		return
	}
	e.broker.Publish(e.cfg.ID, ev)
}
