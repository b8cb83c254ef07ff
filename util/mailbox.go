package util

import (
	"sync"
)

// Mailbox holds a single, latest value and provides non-blocking
// hand-off between one writer and one reader. Values posted while an
// earlier one is still unread replace it; the reader only ever sees the
// newest.
type Mailbox[T any] struct {
	mu      sync.Mutex
	value   T
	present bool
	notify  chan struct{} // capacity 1, signals an unread value
}

// NewMailbox creates an empty Mailbox.
func NewMailbox[T any]() *Mailbox[T] {
	return &Mailbox[T]{
		notify: make(chan struct{}, 1),
	}
}

// Post stores v as the latest value. It never blocks.
func (m *Mailbox[T]) Post(v T) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.value = v
	m.present = true

	select {
	case m.notify <- struct{}{}:
	default:
		// a notification is already pending
	}
}

// Ready returns the notification channel for use in select statements.
func (m *Mailbox[T]) Ready() <-chan struct{} {
	return m.notify
}

// Take returns the latest value and empties the mailbox. ok is false
// when nothing was posted since the last Take.
func (m *Mailbox[T]) Take() (v T, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok = m.value, m.present
	var zero T
	m.value = zero
	m.present = false

	select {
	case <-m.notify:
	default:
	}
	return v, ok
}

// Pending reports whether an unread value is waiting.
func (m *Mailbox[T]) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.present
}
