package codecgen

import "iter"

// Dict is a string-keyed map that remembers insertion order. Generated code
// uses it for wildcard fields so that re-encoding reproduces the order keys
// were decoded in.
type Dict[V any] struct {
	keys  []string
	index map[string]int
	vals  []V
}

// NewDict returns an empty Dict.
func NewDict[V any]() *Dict[V] {
	return &Dict[V]{index: make(map[string]int)}
}

// Set stores v under key. A new key is appended; an existing key keeps its
// position and has its value replaced.
func (d *Dict[V]) Set(key string, v V) {
	if d.index == nil {
		d.index = make(map[string]int)
	}
	if i, ok := d.index[key]; ok {
		d.vals[i] = v
		return
	}
	d.index[key] = len(d.keys)
	d.keys = append(d.keys, key)
	d.vals = append(d.vals, v)
}

// Get returns the value stored under key.
func (d *Dict[V]) Get(key string) (V, bool) {
	if d != nil {
		if i, ok := d.index[key]; ok {
			return d.vals[i], true
		}
	}
	var zero V
	return zero, false
}

// Len returns the number of entries; a nil Dict is empty.
func (d *Dict[V]) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// Keys returns the keys in insertion order.
func (d *Dict[V]) Keys() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.keys...)
}

// All iterates entries in insertion order.
func (d *Dict[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		if d == nil {
			return
		}
		for i, k := range d.keys {
			if !yield(k, d.vals[i]) {
				return
			}
		}
	}
}
