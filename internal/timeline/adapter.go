package timeline

import (
	"math"

	"github.com/cockroachdb/errors"

	"github.com/llehouerou/graphtime/internal/bus"
	"github.com/llehouerou/graphtime/internal/settings"
	"github.com/llehouerou/graphtime/internal/throttle"
)

// Mount subscribes the controller to its three topics, attaches the renderer
// and reads the display settings. Mounting an already mounted controller
// does nothing.
func (c *Controller) Mount() error {
	if c.mounted {
		return nil
	}
	if c.broker == nil {
		return errors.Newf("mount %s: no broker", c.id)
	}

	scope, err := c.broker.Subscribe(c.id, map[bus.Topic]bus.Handler{
		bus.TopicProgress:        c.onProgress,
		bus.TopicComplete:        c.onComplete,
		bus.TopicSettingsChanged: c.onSettingsChanged,
	})
	if err != nil {
		return errors.Wrapf(err, "mount %s", c.id)
	}

	c.scope = scope
	c.mounted = true
	c.renderer, c.parked = c.parked, nil
	c.resetState()
	c.readSettings()
	c.log.Debug().Msg("mounted")
	return nil
}

// Unmount unregisters all listeners, resets and detaches the renderer and
// discards the playback state. Commands issued while unmounted never reach
// the renderer. Only the first call after a Mount has any effect.
func (c *Controller) Unmount() {
	if !c.mounted {
		return
	}
	if c.scope != nil {
		c.scope.Close()
		c.scope = nil
	}
	if c.renderer != nil {
		c.renderer.TimelineReset()
	}
	c.parked, c.renderer = c.renderer, nil
	c.mounted = false
	c.resetState()
	c.log.Debug().Msg("unmounted")
}

// Mounted reports whether the controller currently holds a subscription.
func (c *Controller) Mounted() bool { return c.mounted }

func (c *Controller) onProgress(e bus.Event) {
	p, ok := e.(bus.Progress)
	if !ok {
		return
	}
	if validPosition(p.Position) {
		c.position = p.Position
	}
	c.playing = p.Playing
	c.cut = throttle.Observe(c.cut, p.Cutoff, p.Playing, c.now(), c.window)
}

func (c *Controller) onComplete(bus.Event) {
	c.Complete()
}

func (c *Controller) onSettingsChanged(bus.Event) {
	c.readSettings()
}

func (c *Controller) readSettings() {
	if c.settings == nil {
		c.display = settings.DefaultDisplay
		return
	}
	c.display = c.settings.Get(c.storageKey)
	c.log.Debug().Bool("visible", c.display.TimelineVisible).Msg("settings")
}

func validPosition(p float64) bool {
	return !math.IsNaN(p) && p >= 0 && p <= 1
}
