package entity

import "fmt"

// store holds one entity's attributes and behaviours. Only the entity's own
// goroutine touches it.
type store struct {
	attributes map[Key]Attribute
	behaviours map[Key]Behaviour
}

func newStore() *store {
	return &store{
		attributes: make(map[Key]Attribute),
		behaviours: make(map[Key]Behaviour),
	}
}

func (s *store) behaviour(key Key) (Behaviour, bool) {
	b, ok := s.behaviours[key]
	return b, ok
}

func (s *store) install(b Behaviour, attr Attribute) {
	s.behaviours[b.Key()] = b
	s.attributes[b.Key()] = attr
}

func (s *store) uninstall(key Key) {
	delete(s.behaviours, key)
	delete(s.attributes, key)
}

func (s *store) get(key Key) (Attribute, error) {
	attr, ok := s.attributes[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return attr, nil
}

// put overwrites the attribute for attr's key. The key must belong to a
// registered behaviour so that attributes and behaviours stay paired.
func (s *store) put(attr Attribute) error {
	if attr == nil {
		return fmt.Errorf("%w: nil", ErrInvalidAttribute)
	}
	if _, ok := s.behaviours[attr.Key()]; !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, attr.Key())
	}
	s.attributes[attr.Key()] = attr
	return nil
}

func (s *store) update(key Key, transform func(Attribute) Attribute) error {
	attr, err := s.get(key)
	if err != nil {
		return err
	}
	next := transform(attr)
	if next == nil || next.Key() != key {
		return fmt.Errorf("%w: transform of %s returned %T", ErrInvalidAttribute, key, next)
	}
	s.attributes[key] = next
	return nil
}

func (s *store) keys() []Key {
	keys := make([]Key, 0, len(s.behaviours))
	for k := range s.behaviours {
		keys = append(keys, k)
	}
	return keys
}
