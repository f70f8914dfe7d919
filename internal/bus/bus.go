// Package bus provides the typed, instance-scoped event channel shared by
// renderers and timeline controllers.
//
// A single Broker is created at process start. Each mounted controller owns
// a Scope: the set of (instance, topic) keys it registered. Closing the Scope
// removes exactly those keys in one step, and any delivery already queued for
// a closed Scope is dropped.
package bus

import (
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ErrInstanceInUse is returned when an instance id already has an active scope.
var ErrInstanceInUse = errors.New("instance id already subscribed")

// ErrClosed is returned when subscribing on a closed broker.
var ErrClosed = errors.New("broker closed")

// Handler receives events for one key.
type Handler func(Event)

// Dispatcher runs a delivery. It must preserve call order.
type Dispatcher func(deliver func())

// Inline runs deliveries synchronously on the publishing goroutine.
func Inline(deliver func()) { deliver() }

type listener struct {
	scope   *Scope
	handler Handler
}

// Broker routes events to the listeners registered for (instance, topic).
// It is safe for concurrent use.
type Broker struct {
	mu        sync.RWMutex
	listeners map[Key]listener
	dispatch  Dispatcher
	closed    bool
	nextScope atomic.Uint64
	log       zerolog.Logger
}

// Option configures a Broker.
type Option func(*Broker)

// WithDispatcher sets how deliveries are run.
func WithDispatcher(d Dispatcher) Option {
	return func(b *Broker) { b.dispatch = d }
}

// WithLogger sets the broker logger.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Broker) { b.log = l }
}

// NewBroker creates a broker that delivers inline unless configured otherwise.
func NewBroker(opts ...Option) *Broker {
	b := &Broker{
		listeners: make(map[Key]listener),
		dispatch:  Inline,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetDispatcher replaces the dispatcher. Used when the UI loop that
// deliveries must run on is created after the broker.
func (b *Broker) SetDispatcher(d Dispatcher) {
	if d == nil {
		d = Inline
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dispatch = d
}

// Subscribe registers one handler per topic for instance id and returns the
// scope owning them. Topics with a nil handler are skipped.
func (b *Broker) Subscribe(id InstanceID, handlers map[Topic]Handler) (*Scope, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}
	for topic, h := range handlers {
		if h == nil {
			continue
		}
		if _, taken := b.listeners[Key{Instance: id, Topic: topic}]; taken {
			return nil, ErrInstanceInUse
		}
	}

	s := &Scope{broker: b, id: id, seq: b.nextScope.Add(1)}
	for _, topic := range Topics {
		h := handlers[topic]
		if h == nil {
			continue
		}
		key := Key{Instance: id, Topic: topic}
		b.listeners[key] = listener{scope: s, handler: h}
		s.keys = append(s.keys, key)
	}
	b.log.Debug().
		Str("instance", string(id)).
		Uint64("scope", s.seq).
		Int("topics", len(s.keys)).
		Msg("subscribed")
	return s, nil
}

// Publish delivers e to the listener registered for (id, e.Topic()).
// Events for keys without a listener are discarded.
func (b *Broker) Publish(id InstanceID, e Event) {
	if e == nil {
		return
	}
	key := Key{Instance: id, Topic: e.Topic()}

	b.mu.RLock()
	l, ok := b.listeners[key]
	dispatch := b.dispatch
	b.mu.RUnlock()

	if !ok {
		return
	}
	dispatch(func() {
		if !l.scope.Active() {
			return
		}
		b.safeCall(key, l.handler, e)
	})
}

// safeCall invokes a handler and recovers from panics so one faulty
// listener cannot take down the publisher.
func (b *Broker) safeCall(key Key, h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Str("key", key.String()).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("event handler panicked")
		}
	}()
	h(e)
}

// Count returns the number of listeners registered for instance id.
func (b *Broker) Count(id InstanceID) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for key := range b.listeners {
		if key.Instance == id {
			n++
		}
	}
	return n
}

// Len returns the total number of registered listeners.
func (b *Broker) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// Close deactivates every scope and rejects further subscriptions.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, l := range b.listeners {
		l.scope.closed.Store(true)
	}
	b.listeners = make(map[Key]listener)
	b.closed = true
}

func (b *Broker) remove(s *Scope) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, key := range s.keys {
		if l, ok := b.listeners[key]; ok && l.scope == s {
			delete(b.listeners, key)
		}
	}
	b.log.Debug().
		Str("instance", string(s.id)).
		Uint64("scope", s.seq).
		Msg("unsubscribed")
}

// Scope is the handle a controller holds for the keys it registered.
type Scope struct {
	broker *Broker
	id     InstanceID
	seq    uint64
	keys   []Key
	closed atomic.Bool
}

// Active reports whether the scope still receives events.
func (s *Scope) Active() bool {
	return !s.closed.Load()
}

// Close unregisters every key of the scope at once.
// Returns true on the call that actually closed it.
func (s *Scope) Close() bool {
	if !s.closed.CompareAndSwap(false, true) {
		return false
	}
	s.broker.remove(s)
	return true
}
