package entity

// Notify delivers ev to target's mailbox. It is the relay used by behaviours
// to push messages to other entities, or to themselves to re-enter their own
// event path.
func Notify(target *Ref, ev Event) {
	Cast(target, ev.Key, ev.Payload)
}
