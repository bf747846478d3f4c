package entity

// Died is delivered to watchers when an entity terminates. Reason is nil for
// a graceful Stop.
type Died struct {
	Ref    *Ref
	Reason error
}

// Watch asks target to send Died to the behaviour for key on watcher when it
// terminates. Watching an entity that is already dead delivers Died right
// away. Watching twice with the same key yields one notification.
func Watch(target, watcher *Ref, key Key) {
	if target == nil || watcher == nil {
		return
	}
	if !target.mailbox.push(envelope{kind: kindWatch, key: key, watcher: watcher}) {
		// the mailbox closes just before done, so this wait is short
		<-target.done
		Notify(watcher, Event{Key: key, Payload: Died{Ref: target, Reason: target.reason}})
	}
}

// Unwatch cancels a previous Watch with the same watcher and key.
func Unwatch(target, watcher *Ref, key Key) {
	if target == nil || watcher == nil {
		return
	}
	target.mailbox.push(envelope{kind: kindUnwatch, key: key, watcher: watcher})
}
