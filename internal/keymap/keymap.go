package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// Binding describes a single key binding.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
	Context     string // "global", "playback", "timeline"
}

// All contains every key binding, in help order.
var All = []Binding{
	// Playback
	{ActionPlayPause, []string{" "}, "play/pause", "playback"},
	{ActionCycleSpeed, []string{"s"}, "speed", "playback"},
	{ActionSeekBack, []string{"left", "h"}, "seek back", "playback"},
	{ActionSeekFwd, []string{"right", "l"}, "seek forward", "playback"},
	{ActionSeekStart, []string{"home"}, "to start", "playback"},
	{ActionSeekEnd, []string{"end"}, "to end", "playback"},

	// Timeline
	{ActionToggleVisible, []string{"v"}, "show/hide", "timeline"},
	{ActionRemount, []string{"ctrl+r"}, "remount", "timeline"},

	// Global
	{ActionSwitchFocus, []string{"tab"}, "next timeline", "global"},
	{ActionHelp, []string{"?"}, "help", "global"},
	{ActionQuit, []string{"q", "ctrl+c"}, "quit", "global"},
}

// ByContext returns key bindings filtered by context.
func ByContext(context string) []Binding {
	var result []Binding
	for _, kb := range All {
		if kb.Context == context {
			result = append(result, kb)
		}
	}
	return result
}

// helpKey renders a key the way users type it.
func helpKey(k string) string {
	switch k {
	case " ":
		return "space"
	case "left":
		return "←"
	case "right":
		return "→"
	default:
		return k
	}
}

// KeyBinding converts b to a bubbles key binding.
func (b Binding) KeyBinding() key.Binding {
	return key.NewBinding(
		key.WithKeys(b.Keys...),
		key.WithHelp(helpKey(b.Keys[0]), b.Description),
	)
}

// Help implements help.KeyMap over a set of bindings.
type Help struct {
	short []key.Binding
	full  [][]key.Binding
}

// NewHelp builds the help key map from bindings, one column per context.
func NewHelp(bindings []Binding) Help {
	var h Help
	groups := map[string]int{}
	for _, b := range bindings {
		kb := b.KeyBinding()
		idx, ok := groups[b.Context]
		if !ok {
			idx = len(h.full)
			groups[b.Context] = idx
			h.full = append(h.full, nil)
		}
		h.full[idx] = append(h.full[idx], kb)
	}
	for _, col := range h.full {
		h.short = append(h.short, col...)
	}
	return h
}

func (h Help) ShortHelp() []key.Binding  { return h.short }
func (h Help) FullHelp() [][]key.Binding { return h.full }
