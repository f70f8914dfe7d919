package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/graphtime/internal/app/handler"
	"github.com/llehouerou/graphtime/internal/bus"
	"github.com/llehouerou/graphtime/internal/errmsg"
	"github.com/llehouerou/graphtime/internal/keymap"
	"github.com/llehouerou/graphtime/internal/speed"
)

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	m.ErrorMsg = ""

	if m.Keys.Resolve(key) == keymap.ActionQuit {
		m.Shutdown()
		return m, tea.Quit
	}

	r := handler.Chain(key, m.handleGlobalKeys, m.handlePlaybackKeys, m.handleTimelineKeys)
	return m, tea.Batch(r.Cmd, m.afterTransition())
}

// handleGlobalKeys handles tab and ?.
func (m *Model) handleGlobalKeys(key string) handler.Result {
	switch m.Keys.Resolve(key) { //nolint:exhaustive // only handling global actions
	case keymap.ActionSwitchFocus:
		if len(m.Instances) > 0 {
			m.Focus = (m.Focus + 1) % len(m.Instances)
		}
		return handler.HandledNoCmd
	case keymap.ActionHelp:
		m.Help.ShowAll = !m.Help.ShowAll
		return handler.HandledNoCmd
	}
	return handler.NotHandled
}

// handlePlaybackKeys handles space, s, left/right, home/end.
func (m *Model) handlePlaybackKeys(key string) handler.Result {
	inst := m.Focused()
	if inst == nil {
		return handler.NotHandled
	}

	switch m.Keys.Resolve(key) { //nolint:exhaustive // only handling playback actions
	case keymap.ActionPlayPause:
		inst.Ctrl.TogglePlay()
		return handler.HandledNoCmd
	case keymap.ActionCycleSpeed:
		s := inst.Ctrl.CycleSpeed()
		m.log.Debug().Str("instance", inst.Timeline.ID).Str("speed", speed.Label(s)).Msg("speed changed")
		return handler.HandledNoCmd
	case keymap.ActionSeekBack:
		return handler.Handled(m.seekBy(inst, -m.SeekStep))
	case keymap.ActionSeekFwd:
		return handler.Handled(m.seekBy(inst, m.SeekStep))
	case keymap.ActionSeekStart:
		m.seekTo(inst, 0)
		return handler.HandledNoCmd
	case keymap.ActionSeekEnd:
		m.seekTo(inst, 1)
		return handler.HandledNoCmd
	}
	return handler.NotHandled
}

// handleTimelineKeys handles v and ctrl+r.
func (m *Model) handleTimelineKeys(key string) handler.Result {
	inst := m.Focused()
	if inst == nil {
		return handler.NotHandled
	}

	switch m.Keys.Resolve(key) { //nolint:exhaustive // only handling timeline actions
	case keymap.ActionToggleVisible:
		m.toggleVisible(inst)
		return handler.HandledNoCmd
	case keymap.ActionRemount:
		inst.Ctrl.Unmount()
		inst.seeking = false
		inst.seekVersion++
		inst.notified = inst.Ctrl.Completions()
		if err := inst.Ctrl.Mount(); err != nil {
			m.ErrorMsg = errmsg.FormatWith(errmsg.OpTimelineRemount, inst.Timeline.Title, err)
		}
		return handler.HandledNoCmd
	}
	return handler.NotHandled
}

// seekBy moves the focused timeline and schedules the debounced SeekEnd.
func (m *Model) seekBy(inst *Instance, delta float64) tea.Cmd {
	from := inst.Ctrl.State().Position
	if inst.seeking {
		from = inst.seekTarget
	}
	target := min(max(from+delta, 0), 1)

	inst.seeking = true
	inst.seekTarget = target
	inst.seekVersion++
	inst.Ctrl.SeekMove(target)
	return SeekSettleCmd(m.Focus, inst.seekVersion)
}

// seekTo jumps and ends the seek immediately.
func (m *Model) seekTo(inst *Instance, position float64) {
	inst.seeking = false
	inst.seekVersion++
	inst.Ctrl.SeekEnd(position)
}

// toggleVisible flips the persisted visibility of inst's storage key and
// notifies every instance sharing that key.
func (m *Model) toggleVisible(inst *Instance) {
	key := inst.Timeline.StorageKey
	d, err := m.Settings.Toggle(key)
	if err != nil {
		m.log.Error().Err(err).Str("storage_key", key).Msg("toggle visibility")
		m.ErrorMsg = errmsg.FormatWith(errmsg.OpSettingsToggle, key, err)
		return
	}
	m.log.Debug().Str("storage_key", key).Bool("visible", d.TimelineVisible).Msg("visibility toggled")

	for _, other := range m.Instances {
		if other.Timeline.StorageKey == key {
			m.Broker.Publish(other.Ctrl.ID(), bus.SettingsChanged{})
		}
	}
}
