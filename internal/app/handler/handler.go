// Package handler chains key handlers that each claim a subset of keys.
package handler

import tea "github.com/charmbracelet/bubbletea"

// Result is the outcome of a key handler.
type Result struct {
	Handled bool
	Cmd     tea.Cmd
}

// NotHandled is returned when a handler doesn't claim the key.
var NotHandled = Result{}

// HandledNoCmd is returned by handlers that claim the key without a command.
var HandledNoCmd = Result{Handled: true}

// Handled claims the key with a command.
func Handled(cmd tea.Cmd) Result {
	return Result{Handled: true, Cmd: cmd}
}

// Handler attempts to handle key.
type Handler func(key string) Result

// Chain offers key to handlers in order until one claims it.
func Chain(key string, handlers ...Handler) Result {
	for _, h := range handlers {
		if r := h(key); r.Handled {
			return r
		}
	}
	return NotHandled
}
