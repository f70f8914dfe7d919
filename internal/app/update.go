package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/graphtime/internal/errmsg"
	"github.com/llehouerou/graphtime/internal/notify"
)

// Update handles messages and returns updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DeliverMsg:
		msg.Deliver()
		return m, m.afterTransition()

	case TimelineMessage:
		return m.handleTimelineMessage(msg)

	case NotifyResultMsg:
		if msg.Err != nil {
			m.log.Warn().Err(msg.Err).Msg("completion notification failed")
			m.ErrorMsg = errmsg.Format(errmsg.OpNotify, msg.Err)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)
	}

	return m, nil
}

func (m Model) handleTimelineMessage(msg TimelineMessage) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case FlushMsg:
		inst := m.instance(msg.Index)
		if inst == nil {
			return m, nil
		}
		inst.flushPending = false
		inst.Ctrl.Settle()
		return m, m.afterTransition()

	case SeekSettleMsg:
		inst := m.instance(msg.Index)
		if inst == nil || msg.Version != inst.seekVersion || !inst.seeking {
			return m, nil
		}
		inst.seeking = false
		inst.Ctrl.SeekEnd(inst.seekTarget)
		return m, m.afterTransition()
	}
	return m, nil
}

// afterTransition schedules trailing throttle flushes and completion
// notifications for every instance.
func (m Model) afterTransition() tea.Cmd {
	var cmds []tea.Cmd
	for i, inst := range m.Instances {
		if !inst.flushPending {
			if wait, ok := inst.Ctrl.PendingCommit(); ok {
				inst.flushPending = true
				cmds = append(cmds, FlushCmd(i, wait))
			}
		}

		if done := inst.Ctrl.Completions(); done > inst.notified {
			inst.notified = done
			m.log.Info().Str("instance", inst.Timeline.ID).Msg("timeline finished")
			if m.Notifications {
				cmds = append(cmds, NotifyCmd(m.Notifier, notify.Finished(inst.Timeline.Title, inst.Ctrl.Label())))
			}
		}
	}
	return tea.Batch(cmds...)
}

func (m Model) instance(i int) *Instance {
	if i < 0 || i >= len(m.Instances) {
		return nil
	}
	return m.Instances[i]
}
