package app

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/llehouerou/graphtime/internal/bus"
	"github.com/llehouerou/graphtime/internal/config"
	"github.com/llehouerou/graphtime/internal/errmsg"
	"github.com/llehouerou/graphtime/internal/keymap"
	"github.com/llehouerou/graphtime/internal/notify"
	"github.com/llehouerou/graphtime/internal/settings"
	"github.com/llehouerou/graphtime/internal/sim"
	"github.com/llehouerou/graphtime/internal/timeline"
)

// Instance is one timeline row: a controller and the engine it drives.
type Instance struct {
	Timeline config.Timeline
	Ctrl     *timeline.Controller
	Engine   *sim.Engine

	seekVersion  int
	seeking      bool
	seekTarget   float64
	flushPending bool
	notified     int
}

// Deps are the collaborators of the application model.
type Deps struct {
	Config    *config.Config
	Timelines []config.Timeline
	Broker    *bus.Broker
	Settings  settings.Interface
	Notifier  notify.Notifier
	Logger    zerolog.Logger
	Clock     func() time.Time // time.Now when nil
	Location  *time.Location   // time.Local when nil
}

// Model is the root application model.
type Model struct {
	Instances     []*Instance
	Focus         int
	Broker        *bus.Broker
	Pump          *Pump
	Settings      settings.Interface
	Notifier      notify.Notifier
	Notifications bool
	SeekStep      float64
	Keys          *keymap.Resolver
	Help          help.Model
	HelpKeys      keymap.Help
	ErrorMsg      string
	Dragging      int // index of the instance being dragged with the mouse, -1 when none
	Width         int
	Height        int
	log           zerolog.Logger
}

// New builds engines and controllers for every timeline and mounts them.
// Deliveries are queued on the model's Pump until Start connects it to a
// program.
func New(d Deps) (Model, error) {
	if d.Config == nil {
		d.Config = config.Default()
	}
	if d.Broker == nil {
		return Model{}, errors.New("app: broker is required")
	}
	if d.Settings == nil {
		d.Settings = settings.NewMemory()
	}
	if d.Notifier == nil {
		d.Notifier = notify.Nop{}
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Location == nil {
		d.Location = time.Local
	}

	pump := NewPump()
	d.Broker.SetDispatcher(pump.Dispatch)

	m := Model{
		Broker:        d.Broker,
		Pump:          pump,
		Settings:      d.Settings,
		Notifier:      d.Notifier,
		Notifications: d.Config.NotificationsEnabled(),
		SeekStep:      d.Config.Playback.SeekStep,
		Keys:          keymap.Default(),
		Help:          help.New(),
		HelpKeys:      keymap.NewHelp(keymap.All),
		Dragging:      -1,
		log:           d.Logger,
	}

	for _, tl := range d.Timelines {
		id := bus.InstanceID(tl.ID)
		engine, err := sim.New(sim.Config{
			ID:       id,
			From:     tl.From,
			To:       tl.To,
			Duration: tl.Duration,
			Tick:     d.Config.TickInterval(),
			Clock:    d.Clock,
		}, d.Broker, d.Logger)
		if err != nil {
			m.unmountAll()
			return Model{}, err
		}

		ctrl := timeline.New(timeline.Options{
			ID:         id,
			Broker:     d.Broker,
			Renderer:   engine,
			Settings:   d.Settings,
			StorageKey: tl.StorageKey,
			Speeds:     d.Config.SpeedCycle(),
			Window:     d.Config.ThrottleWindow(),
			Location:   d.Location,
			Clock:      d.Clock,
			Logger:     d.Logger,
		})
		if err := ctrl.Mount(); err != nil {
			m.unmountAll()
			return Model{}, errors.Wrapf(err, "%s %q", errmsg.OpTimelineMount, tl.ID)
		}
		m.Instances = append(m.Instances, &Instance{Timeline: tl, Ctrl: ctrl, Engine: engine})
	}

	return m, nil
}

// Start connects the pump to send and runs every engine until ctx is
// canceled. The returned function waits for those goroutines.
func (m Model) Start(ctx context.Context, send func(tea.Msg)) (wait func()) {
	var wg sync.WaitGroup
	wg.Go(func() { m.Pump.Run(ctx, send) })
	for _, inst := range m.Instances {
		wg.Go(func() { inst.Engine.Run(ctx) })
	}
	return wg.Wait
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Shutdown unmounts every timeline, resetting its renderer.
func (m Model) Shutdown() {
	m.unmountAll()
}

func (m Model) unmountAll() {
	for _, inst := range m.Instances {
		inst.Ctrl.Unmount()
	}
}

// Focused returns the focused instance, or nil when there are none.
func (m Model) Focused() *Instance {
	if m.Focus < 0 || m.Focus >= len(m.Instances) {
		return nil
	}
	return m.Instances[m.Focus]
}
