// Package timelinebar renders one timeline scrubber row.
//
// Format (inside a rounded border):
//
//	▶ 2x   Graph A       ▓▓▓▓▓░░░░░░  Mar 3rd, 2021
package timelinebar

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/llehouerou/graphtime/internal/speed"
	"github.com/llehouerou/graphtime/internal/timeline"
	"github.com/llehouerou/graphtime/internal/ui/styles"
)

const (
	playSymbol  = "▶"
	pauseSymbol = "⏸"
	filledBlock = "▓"
	emptyBlock  = "░"

	noLabel = "—"

	speedWidth = 5
	titleWidth = 16
	labelWidth = 15 // "Sep 22nd, 2021" plus slack

	// border + padding on each side
	frameWidth = 4
	minBar     = 3
)

// Height is the rendered height of a visible row.
const Height = 3

// State holds everything needed to render a row.
type State struct {
	Title    string
	Playing  bool
	Speed    float64
	Position float64
	Label    string // committed date label, "" when unset
	Focused  bool
	Visible  bool
}

// NewState snapshots a controller for rendering.
func NewState(c *timeline.Controller, title string, focused bool) State {
	st := c.State()
	return State{
		Title:    title,
		Playing:  st.Playing,
		Speed:    st.Speed,
		Position: st.Position,
		Label:    c.Label(),
		Focused:  focused,
		Visible:  c.Visible(),
	}
}

// layout is the horizontal split of a row's content.
type layout struct {
	titleW int
	barX   int // first bar column, relative to the row's left border
	barW   int
}

func computeLayout(width int) layout {
	inner := max(width-frameWidth, 0)
	fixed := 2 + speedWidth + 1 + 2 + labelWidth // glyph+space, speed, space, gap, label

	l := layout{titleW: titleWidth}
	l.barW = inner - fixed - l.titleW - 2
	if l.barW < minBar {
		l.titleW = 0
		l.barW = inner - fixed
	}
	if l.barW < minBar {
		l.barW = 0
	}

	l.barX = frameWidth/2 + 2 + speedWidth + 1
	if l.titleW > 0 {
		l.barX += l.titleW + 2
	}
	return l
}

// Render returns the bordered row, or "" when the timeline is hidden.
func Render(s State, width int) string {
	if !s.Visible {
		return ""
	}
	l := computeLayout(width)
	t := styles.T()

	glyph := pauseSymbol
	if s.Playing {
		glyph = playSymbol
	}

	var b strings.Builder
	b.WriteString(t.S().Base.Render(glyph))
	b.WriteString(" ")
	b.WriteString(t.S().Speed.Render(pad(speed.Label(s.Speed), speedWidth)))
	b.WriteString(" ")

	if l.titleW > 0 {
		titleStyle := t.S().Title
		if s.Focused {
			titleStyle = t.S().Focused
		}
		b.WriteString(titleStyle.Render(pad(ansi.Truncate(s.Title, l.titleW, "…"), l.titleW)))
		b.WriteString("  ")
	}

	if l.barW > 0 {
		b.WriteString(renderBar(s.Position, l.barW))
		b.WriteString("  ")
	}

	label := s.Label
	if label == "" {
		label = noLabel
	}
	b.WriteString(t.S().Date.Render(pad(ansi.Truncate(label, labelWidth, "…"), labelWidth)))

	return styles.PanelStyle(s.Focused).
		Width(max(width-2, 0)).
		Padding(0, 1).
		Render(b.String())
}

func renderBar(position float64, width int) string {
	filled := min(max(int(float64(width)*position), 0), width)
	t := styles.T()

	bar := styles.ApplyGradientSpan(strings.Repeat(filledBlock, filled), width, t.Primary, t.Secondary)
	return bar + t.S().Subtle.Render(strings.Repeat(emptyBlock, width-filled))
}

// PositionAt maps a column (relative to the row's left border) to a
// normalized position. Columns left or right of the bar clamp to 0 or 1. ok
// is false when the row is too narrow to show a bar.
func PositionAt(width, x int) (float64, bool) {
	l := computeLayout(width)
	if l.barW == 0 {
		return 0, false
	}
	if l.barW == 1 {
		return 0, true
	}
	p := float64(x-l.barX) / float64(l.barW-1)
	return min(max(p, 0), 1), true
}

// OnBar reports whether column x falls on the bar.
func OnBar(width, x int) bool {
	l := computeLayout(width)
	return l.barW > 0 && x >= l.barX && x < l.barX+l.barW
}

func pad(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
