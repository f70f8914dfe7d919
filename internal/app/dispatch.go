package app

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Pump is a bus.Dispatcher that forwards deliveries to the bubbletea
// program in publish order without blocking the publisher. Publishers may
// run on the UI goroutine itself (a renderer answering a command), so
// Dispatch must never wait on the program.
type Pump struct {
	mu     sync.Mutex
	queue  []func()
	signal chan struct{}
}

// NewPump creates an idle pump.
func NewPump() *Pump {
	return &Pump{signal: make(chan struct{}, 1)}
}

// Dispatch queues deliver.
func (p *Pump) Dispatch(deliver func()) {
	p.mu.Lock()
	p.queue = append(p.queue, deliver)
	p.mu.Unlock()

	select {
	case p.signal <- struct{}{}:
	default:
	}
}

// Drain removes and returns the queued deliveries.
func (p *Pump) Drain() []func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	batch := p.queue
	p.queue = nil
	return batch
}

// Run sends queued deliveries as DeliverMsg until ctx is canceled.
func (p *Pump) Run(ctx context.Context, send func(tea.Msg)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.signal:
			for _, deliver := range p.Drain() {
				send(DeliverMsg{Deliver: deliver})
			}
		}
	}
}
