// Package inventory implements containment: an entity holding an ordered,
// newest-first list of other entities, with broadcast to everything it holds.
//
// Membership and the held entity's parent link are updated independently.
// AddEntity and RemoveEntity send the item an asynchronous parent.AddParent or
// parent.RemoveParent hint; an observer looking at the item right after the
// call may not see it yet. The container also watches every item it holds,
// and the resulting entity.Died event removes the dead item from the list.
// That death-driven cleanup is what eventually repairs the list.
//
// Nothing stops one entity from being held by several containers at once,
// and adding the same entity twice lists it twice.
package inventory
