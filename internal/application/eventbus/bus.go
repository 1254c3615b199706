// Package eventbus fans update notifications out to subscribers on two
// independent, strongly typed streams.
package eventbus

import (
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/bnema/upgate/internal/domain/entity"
)

// Handler receives one published value.
type Handler[T any] func(T)

// Subscription detaches a handler from its stream.
type Subscription interface {
	Unsubscribe()
}

type noopSubscription struct{}

func (noopSubscription) Unsubscribe() {}

type subscriber[T any] struct {
	id      uint64
	handler Handler[T]
	active  atomic.Bool
}

// Stream delivers values synchronously, in publish order, to every current
// subscriber before Publish returns.
//
// Handlers must not publish on the stream that is delivering to them.
type Stream[T any] struct {
	name string
	log  zerolog.Logger

	// deliverMu serializes publishes so delivery order matches publish order.
	deliverMu sync.Mutex

	mu     sync.RWMutex
	subs   []*subscriber[T]
	nextID uint64
	closed bool
}

// NewStream creates an empty stream.
func NewStream[T any](name string, log zerolog.Logger) *Stream[T] {
	return &Stream[T]{
		name: name,
		log:  log,
	}
}

// Subscribe registers a handler. Subscribing to a closed stream returns a
// subscription that does nothing.
func (s *Stream[T]) Subscribe(handler Handler[T]) Subscription {
	if handler == nil {
		return noopSubscription{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return noopSubscription{}
	}

	s.nextID++
	sub := &subscriber[T]{id: s.nextID, handler: handler}
	sub.active.Store(true)
	s.subs = append(s.subs, sub)

	return &streamSubscription[T]{stream: s, sub: sub}
}

// Publish delivers v to all current subscribers. Values published after
// Close are dropped.
func (s *Stream[T]) Publish(v T) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return
	}
	snapshot := make([]*subscriber[T], len(s.subs))
	copy(snapshot, s.subs)
	s.mu.RUnlock()

	for _, sub := range snapshot {
		// An unsubscribe during this delivery must stop further calls.
		if !sub.active.Load() {
			continue
		}
		s.safeCall(sub, v)
	}
}

// Len returns the number of active subscribers.
func (s *Stream[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// Close detaches every subscriber. Further publishes are dropped.
// It waits for an in-flight delivery to finish, so no handler runs after
// Close returns. It must not be called from a handler of this stream.
func (s *Stream[T]) Close() {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.subs {
		sub.active.Store(false)
	}
	s.subs = nil
	s.closed = true
}

func (s *Stream[T]) remove(target *subscriber[T]) {
	target.active.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subs {
		if sub.id == target.id {
			// Copy so in-flight snapshots are never mutated.
			next := make([]*subscriber[T], 0, len(s.subs)-1)
			next = append(next, s.subs[:i]...)
			next = append(next, s.subs[i+1:]...)
			s.subs = next
			return
		}
	}
}

// safeCall invokes a handler and recovers from any panic so one misbehaving
// subscriber cannot block delivery to the others.
func (s *Stream[T]) safeCall(sub *subscriber[T], v T) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().
				Str("stream", s.name).
				Uint64("subscriber", sub.id).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("event handler panicked")
		}
	}()
	sub.handler(v)
}

type streamSubscription[T any] struct {
	stream *Stream[T]
	sub    *subscriber[T]
	once   sync.Once
}

func (s *streamSubscription[T]) Unsubscribe() {
	s.once.Do(func() {
		s.stream.remove(s.sub)
	})
}

// Bus holds the status and progress streams. There is no ordering
// guarantee between the two streams.
type Bus struct {
	Lifecycle *Stream[*entity.LifecycleEvent]
	Progress  *Stream[entity.ProgressEvent]
}

// New creates a bus with both streams.
func New(log zerolog.Logger) *Bus {
	return &Bus{
		Lifecycle: NewStream[*entity.LifecycleEvent]("lifecycle", log),
		Progress:  NewStream[entity.ProgressEvent]("progress", log),
	}
}

// PublishLifecycle appends an event to the status stream.
func (b *Bus) PublishLifecycle(ev *entity.LifecycleEvent) {
	b.Lifecycle.Publish(ev)
}

// PublishProgress appends an event to the progress stream.
func (b *Bus) PublishProgress(ev entity.ProgressEvent) {
	b.Progress.Publish(ev)
}

// Close detaches all subscribers from both streams.
func (b *Bus) Close() {
	b.Lifecycle.Close()
	b.Progress.Close()
}
