// Package events provides review session lifecycle events and a simple
// in-process emitter.
//
// The review service emits an event whenever a session starts, receives a
// review, pauses, resumes or ends. Handlers are registered on an
// InMemoryEventEmitter and run synchronously in registration order; a failing
// handler does not stop the others.
package events
