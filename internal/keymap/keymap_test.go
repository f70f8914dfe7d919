//nolint:goconst // test cases intentionally repeat strings for readability
package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func TestByContext(t *testing.T) {
	tests := []struct {
		name            string
		context         string
		expectMinLength int
	}{
		{"global context", "global", 3},
		{"playback context", "playback", 6},
		{"timeline context", "timeline", 2},
		{"unknown context returns empty", "unknown", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ByContext(tt.context)
			if len(result) < tt.expectMinLength {
				t.Errorf("ByContext(%q) returned %d items, expected at least %d", tt.context, len(result), tt.expectMinLength)
			}
			if tt.expectMinLength == 0 && len(result) != 0 {
				t.Errorf("ByContext(%q) returned %d items, expected empty", tt.context, len(result))
			}
			for _, b := range result {
				if b.Context != tt.context {
					t.Errorf("binding context = %q, want %q", b.Context, tt.context)
				}
			}
		})
	}
}

func TestAll_NoDuplicateKeys(t *testing.T) {
	seen := map[string]Action{}
	for _, b := range All {
		if len(b.Keys) == 0 {
			t.Errorf("action %q has no keys", b.Action)
		}
		for _, k := range b.Keys {
			if prev, ok := seen[k]; ok {
				t.Errorf("key %q bound to both %q and %q", k, prev, b.Action)
			}
			seen[k] = b.Action
		}
	}
}

func TestResolver_Resolve(t *testing.T) {
	r := Default()

	tests := []struct {
		key      string
		expected Action
	}{
		{"q", ActionQuit},
		{"ctrl+c", ActionQuit},
		{" ", ActionPlayPause},
		{"s", ActionCycleSpeed},
		{"left", ActionSeekBack},
		{"right", ActionSeekFwd},
		{"home", ActionSeekStart},
		{"end", ActionSeekEnd},
		{"v", ActionToggleVisible},
		{"ctrl+r", ActionRemount},
		{"tab", ActionSwitchFocus},
		{"unknown", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := r.Resolve(tt.key); got != tt.expected {
				t.Errorf("Resolve(%q) = %q, want %q", tt.key, got, tt.expected)
			}
		})
	}
}

func TestResolver_FirstBindingWins(t *testing.T) {
	r := NewResolver([]Binding{
		{ActionQuit, []string{"q"}, "Quit", "global"},
		{ActionSeekBack, []string{"q", "h"}, "Seek back", "playback"},
	})

	if got := r.Resolve("q"); got != ActionQuit {
		t.Errorf("Resolve(q) = %q, want %q", got, ActionQuit)
	}
	if got := r.Resolve("h"); got != ActionSeekBack {
		t.Errorf("Resolve(h) = %q, want %q", got, ActionSeekBack)
	}
}

func TestKeyBinding_MatchesKeyMsg(t *testing.T) {
	b := Binding{ActionPlayPause, []string{" "}, "play/pause", "playback"}
	kb := b.KeyBinding()

	if !key.Matches(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, kb) {
		t.Error("space key should match play/pause binding")
	}
	if kb.Help().Key != "space" {
		t.Errorf("help key = %q, want %q", kb.Help().Key, "space")
	}
}

func TestNewHelp_GroupsByContext(t *testing.T) {
	h := NewHelp(All)

	if got := len(h.FullHelp()); got != 3 {
		t.Fatalf("FullHelp columns = %d, want 3", got)
	}
	if got := len(h.ShortHelp()); got != len(All) {
		t.Errorf("ShortHelp = %d bindings, want %d", got, len(All))
	}
}
