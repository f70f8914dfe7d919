package app

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/graphtime/internal/ui/styles"
	"github.com/llehouerou/graphtime/internal/ui/timelinebar"
)

const headerHeight = 1

// View renders the header, one row per visible timeline, the status line
// and the help footer.
func (m Model) View() string {
	if m.Width == 0 {
		return ""
	}
	s := styles.T().S()

	rows := []string{m.header()}
	hidden := 0
	for i, inst := range m.Instances {
		row := timelinebar.Render(timelinebar.NewState(inst.Ctrl, inst.Timeline.Title, i == m.Focus), m.Width)
		if row == "" {
			hidden++
			continue
		}
		rows = append(rows, row)
	}

	switch {
	case m.ErrorMsg != "":
		rows = append(rows, s.Error.Render(m.ErrorMsg))
	case hidden > 0:
		rows = append(rows, s.Subtle.Render(fmt.Sprintf("%d hidden, tab to one and press v to show", hidden)))
	}
	rows = append(rows, m.Help.View(m.HelpKeys))

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) header() string {
	t := styles.T()
	title := styles.ApplyGradient("graphtime", t.Primary, t.Secondary)

	inst := m.Focused()
	if inst == nil {
		return title
	}
	focused := inst.Timeline.Title
	if !inst.Ctrl.Visible() {
		focused += " (hidden)"
	}
	return title + "  " + t.S().Muted.Render(focused)
}
