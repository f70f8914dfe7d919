package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/graphtime/internal/notify"
)

// SeekSettleDelay is how long keyboard seeking must pause before the seek is
// committed with SeekEnd.
const SeekSettleDelay = 350 * time.Millisecond

// FlushCmd returns a command that sends FlushMsg after d.
func FlushCmd(index int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(_ time.Time) tea.Msg {
		return FlushMsg{Index: index}
	})
}

// SeekSettleCmd returns a command that sends SeekSettleMsg after SeekSettleDelay.
func SeekSettleCmd(index, version int) tea.Cmd {
	return tea.Tick(SeekSettleDelay, func(_ time.Time) tea.Msg {
		return SeekSettleMsg{Index: index, Version: version}
	})
}

// NotifyCmd sends n in the background.
func NotifyCmd(n notify.Notifier, notif notify.Notification) tea.Cmd {
	if n == nil {
		return nil
	}
	return func() tea.Msg {
		_, err := n.Notify(notif)
		return NotifyResultMsg{Err: err}
	}
}
