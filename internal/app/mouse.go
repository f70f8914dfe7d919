package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/graphtime/internal/ui/timelinebar"
)

// handleMouseMsg scrubs with the left button: press and drag send SeekMove,
// release sends SeekEnd.
func (m Model) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		idx := m.rowAt(msg.Y)
		if idx < 0 || !timelinebar.OnBar(m.Width, msg.X) {
			return m, nil
		}
		m.Focus = idx
		m.Dragging = idx
		inst := m.Instances[idx]
		inst.seekVersion++ // cancel a pending keyboard settle
		inst.seeking = false
		if p, ok := timelinebar.PositionAt(m.Width, msg.X); ok {
			inst.Ctrl.SeekMove(p)
		}

	case tea.MouseActionMotion:
		inst := m.instance(m.Dragging)
		if inst == nil {
			return m, nil
		}
		if p, ok := timelinebar.PositionAt(m.Width, msg.X); ok {
			inst.Ctrl.SeekMove(p)
		}

	case tea.MouseActionRelease:
		inst := m.instance(m.Dragging)
		m.Dragging = -1
		if inst == nil {
			return m, nil
		}
		if p, ok := timelinebar.PositionAt(m.Width, msg.X); ok {
			inst.Ctrl.SeekEnd(p)
		}
	}
	return m, m.afterTransition()
}

// rowAt returns the index of the instance rendered at line y, or -1.
// Hidden instances take no lines.
func (m Model) rowAt(y int) int {
	top := headerHeight
	for i, inst := range m.Instances {
		if !inst.Ctrl.Visible() {
			continue
		}
		if y >= top && y < top+timelinebar.Height {
			return i
		}
		top += timelinebar.Height
	}
	return -1
}
