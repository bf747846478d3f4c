// Package entity is the runtime hosting world objects as independently
// scheduled actors.
//
// Every entity owns one goroutine draining an unbounded FIFO mailbox. An
// entity is composed from Behaviours, each bound to one attribute Key and
// owning the Attribute stored under that key. Messages reach a behaviour in
// one of two classes:
//   - calls (CallBehaviour, PutBehaviour, RemoveBehaviour) block the caller
//     until the entity replies, the caller's context expires, or the entity
//     terminates;
//   - events (Cast, Notify) are fire-and-forget and silently dropped if the
//     target is gone or has no behaviour for the event key.
//
// The entity runs each message to completion before taking the next one, so
// behaviours never need locks around their attribute. Messages from one
// sender to one entity are processed in submission order.
//
// A handler that panics, or an event handler that returns an error,
// terminates the entity. Watchers registered with Watch then receive a Died
// event; this is how containers learn that a child is gone.
package entity
