package ecs

// EventQueue is a single-producer, single-consumer buffer of typed events,
// generalizing the byte queue the reference implementation's
// freecs_event_queue_t exposes as a raw capacity/count/data triple: Go's
// generics let each queue be typed at compile time instead of type-erased,
// so there is no equivalent of a monomorphized-per-use C struct to emit —
// one EventQueue[T] per event type takes its place.
type EventQueue[T any] struct {
	pending []T
}

// FactoryNewEventQueue constructs an empty EventQueue[T], following the
// package's convention of routing generic construction through a top-level
// FactoryNew* function rather than a generic method on Factory (Go does not
// allow type parameters on methods).
func FactoryNewEventQueue[T any]() *EventQueue[T] {
	return &EventQueue[T]{}
}

// Send appends an event to the queue.
func (q *EventQueue[T]) Send(event T) {
	q.pending = append(q.pending, event)
}

// Read returns every event currently queued, oldest first, without
// clearing the queue.
func (q *EventQueue[T]) Read() []T {
	return q.pending
}

// Clear drops every queued event. Typical use is once per simulation tick,
// after every system has had a chance to Read.
func (q *EventQueue[T]) Clear() {
	q.pending = q.pending[:0]
}

// Count returns the number of events currently queued.
func (q *EventQueue[T]) Count() int {
	return len(q.pending)
}
