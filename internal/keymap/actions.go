// Package keymap defines key bindings and action dispatch for the application.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	// Global actions
	ActionQuit        Action = "quit"
	ActionSwitchFocus Action = "switch_focus"
	ActionHelp        Action = "help"

	// Playback actions
	ActionPlayPause  Action = "play_pause"
	ActionCycleSpeed Action = "cycle_speed"
	ActionSeekBack   Action = "seek_back"
	ActionSeekFwd    Action = "seek_forward"
	ActionSeekStart  Action = "seek_start"
	ActionSeekEnd    Action = "seek_end"

	// Timeline actions
	ActionToggleVisible Action = "toggle_visible" // v - persisted per storage key
	ActionRemount       Action = "remount"        // ctrl+r
)
