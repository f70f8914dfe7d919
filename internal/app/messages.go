// Package app contains the bubbletea model that hosts the timeline scrubbers.
package app

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Message category interfaces for type-based routing in Update().

// TimelineMessage is implemented by messages addressed to one timeline.
type TimelineMessage interface {
	tea.Msg
	timelineMessage()
}

// DeliverMsg carries a bus delivery onto the UI goroutine.
type DeliverMsg struct {
	Deliver func()
}

// FlushMsg is sent when a timeline's throttle window may have elapsed.
type FlushMsg struct {
	Index int
}

func (FlushMsg) timelineMessage() {}

// SeekSettleMsg is sent after the keyboard seek debounce delay.
// Version is used to ignore stale timeouts when keys are pressed rapidly.
type SeekSettleMsg struct {
	Index   int
	Version int
}

func (SeekSettleMsg) timelineMessage() {}

// NotifyResultMsg reports the outcome of a completion notification.
type NotifyResultMsg struct {
	Err error
}
