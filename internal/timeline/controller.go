// Package timeline implements the playback synchronization controller that
// keeps a timeline scrubber consistent with an external temporal renderer.
//
// A Controller is confined to one goroutine (the UI loop). Inbound renderer
// events reach it through the bus, whose dispatcher is responsible for
// running handlers on that goroutine.
package timeline

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/graphtime/internal/bus"
	"github.com/llehouerou/graphtime/internal/epoch"
	"github.com/llehouerou/graphtime/internal/settings"
	"github.com/llehouerou/graphtime/internal/speed"
	"github.com/llehouerou/graphtime/internal/throttle"
)

// Options configures a Controller.
type Options struct {
	ID         bus.InstanceID
	Broker     *bus.Broker
	Renderer   Renderer
	Settings   settings.Reader
	StorageKey string
	Speeds     speed.Cycle   // speed.Default when empty
	Window     time.Duration // throttle.DefaultWindow when zero
	Location   *time.Location
	Clock      func() time.Time
	Logger     zerolog.Logger
}

// Controller holds the playback state of one timeline instance.
type Controller struct {
	id         bus.InstanceID
	broker     *bus.Broker
	renderer   Renderer
	settings   settings.Reader
	storageKey string
	speeds     speed.Cycle
	window     time.Duration
	loc        *time.Location
	now        func() time.Time
	log        zerolog.Logger

	scope   *bus.Scope
	mounted bool
	parked  Renderer // attached while unmounted, takes effect on Mount

	playing  bool
	position float64
	speed    float64
	cut      throttle.State

	display     settings.Display
	completions int
}

// New creates an unmounted controller.
func New(opts Options) *Controller {
	c := &Controller{
		id:         opts.ID,
		broker:     opts.Broker,
		parked:     opts.Renderer,
		settings:   opts.Settings,
		storageKey: opts.StorageKey,
		speeds:     opts.Speeds,
		window:     opts.Window,
		loc:        opts.Location,
		now:        opts.Clock,
		log:        opts.Logger.With().Str("instance", string(opts.ID)).Logger(),
		display:    settings.DefaultDisplay,
	}
	if len(c.speeds) == 0 {
		c.speeds = speed.Default
	}
	if c.window <= 0 {
		c.window = throttle.DefaultWindow
	}
	if c.now == nil {
		c.now = time.Now
	}
	c.resetState()
	return c
}

func (c *Controller) resetState() {
	c.playing = false
	c.position = 0
	c.speed = c.speeds.First()
	c.cut = throttle.State{}
}

// ID returns the instance id.
func (c *Controller) ID() bus.InstanceID { return c.id }

// StorageKey returns the display settings key.
func (c *Controller) StorageKey() string { return c.storageKey }

// State returns a snapshot of the playback state.
func (c *Controller) State() State {
	return State{
		Playing:   c.playing,
		Position:  c.position,
		Speed:     c.speed,
		Raw:       c.cut.Raw,
		Committed: c.cut.Committed,
	}
}

// Label returns the committed date label, or "" when nothing is committed.
func (c *Controller) Label() string {
	return epoch.Label(c.cut.Committed, c.loc)
}

// Visible reports whether the timeline should be rendered, based on the
// last settings read.
func (c *Controller) Visible() bool {
	return c.display.TimelineVisible
}

// Completions counts Complete transitions since creation.
func (c *Controller) Completions() int { return c.completions }

// Attach sets the renderer commands are forwarded to. On an unmounted
// controller it takes effect at the next Mount.
func (c *Controller) Attach(r Renderer) {
	if !c.mounted {
		c.parked = r
		return
	}
	c.renderer = r
}

// Detach drops the renderer; later commands skip renderer calls.
func (c *Controller) Detach() {
	c.renderer = nil
	c.parked = nil
}

// Play starts playback at the current speed.
func (c *Controller) Play() {
	if c.playing {
		return
	}
	c.start(c.speed)
	c.playing = true
	c.log.Debug().Float64("speed", c.speed).Msg("play")
}

// Pause stops playback and commits the latest raw cutoff.
func (c *Controller) Pause() {
	if c.playing {
		c.pauseRenderer()
	}
	c.playing = false
	c.cut = throttle.Flush(c.cut, c.now())
	c.log.Debug().Stringer("cutoff", c.cut.Committed).Msg("pause")
}

// TogglePlay plays when paused and pauses when playing.
func (c *Controller) TogglePlay() {
	if c.playing {
		c.Pause()
		return
	}
	c.Play()
}

// CycleSpeed advances to the next speed. While playing the renderer is
// restarted at the new rate without pausing.
func (c *Controller) CycleSpeed() float64 {
	c.speed = c.speeds.Next(c.speed)
	if c.playing {
		c.start(c.speed)
	}
	c.log.Debug().Float64("speed", c.speed).Msg("speed")
	return c.speed
}

// SeekMove forwards an in-progress scrub position to the renderer.
func (c *Controller) SeekMove(position float64) {
	c.seek(position)
}

// SeekEnd forwards the final scrub position to the renderer.
func (c *Controller) SeekEnd(position float64) {
	c.seek(position)
}

// Complete handles the renderer reaching the end of the timeline.
func (c *Controller) Complete() {
	c.playing = false
	c.cut = throttle.Flush(c.cut, c.now())
	c.completions++
	c.log.Debug().Stringer("cutoff", c.cut.Committed).Msg("complete")
}

// Settle commits a deferred cutoff once the throttle window has elapsed.
// Returns true if the committed cutoff changed.
func (c *Controller) Settle() bool {
	before := c.cut.Committed
	c.cut = throttle.Settle(c.cut, c.now(), c.window)
	return c.cut.Committed != before
}

// PendingCommit returns the delay until a deferred cutoff may be committed.
func (c *Controller) PendingCommit() (time.Duration, bool) {
	return throttle.Due(c.cut, c.now(), c.window)
}

func (c *Controller) seek(position float64) {
	if math.IsNaN(position) {
		return
	}
	position = min(max(position, 0), 1)
	if c.renderer == nil {
		return
	}
	c.renderer.TimelineSeek(position)
}

func (c *Controller) start(s float64) {
	if c.renderer == nil {
		return
	}
	c.renderer.TimelineStart(s)
}

func (c *Controller) pauseRenderer() {
	if c.renderer == nil {
		return
	}
	c.renderer.TimelinePause()
}
