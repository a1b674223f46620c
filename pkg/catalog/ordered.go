// Package catalog resolves materials and textures between host scenes and
// Orbiter mesh files.
package catalog

// Ordered is a map that remembers insertion order. Indices are 1-based so
// they can be written to a mesh file unchanged; 0 means "none".
type Ordered[K comparable, V any] struct {
	keys   []K
	values []V
	index  map[K]int
}

// NewOrdered creates an empty catalog.
func NewOrdered[K comparable, V any]() *Ordered[K, V] {
	return &Ordered[K, V]{index: make(map[K]int)}
}

// Add inserts key with value unless it is already present, and returns the
// key's 1-based index. The first value stored for a key wins.
func (o *Ordered[K, V]) Add(key K, value V) (idx int, added bool) {
	if i, ok := o.index[key]; ok {
		return i, false
	}
	o.keys = append(o.keys, key)
	o.values = append(o.values, value)
	idx = len(o.keys)
	o.index[key] = idx
	return idx, true
}

// Index returns the 1-based index of key.
func (o *Ordered[K, V]) Index(key K) (int, bool) {
	i, ok := o.index[key]
	return i, ok
}

// Update calls fn with a pointer to the value stored for key.
func (o *Ordered[K, V]) Update(key K, fn func(v *V)) bool {
	i, ok := o.index[key]
	if !ok {
		return false
	}
	fn(&o.values[i-1])
	return true
}

// At returns the entry at 1-based index i.
func (o *Ordered[K, V]) At(i int) (K, V) {
	return o.keys[i-1], o.values[i-1]
}

// Len returns the number of entries.
func (o *Ordered[K, V]) Len() int {
	return len(o.keys)
}

// Keys returns the keys in insertion order.
func (o *Ordered[K, V]) Keys() []K {
	return append([]K(nil), o.keys...)
}

// Values returns the values in insertion order.
func (o *Ordered[K, V]) Values() []V {
	return append([]V(nil), o.values...)
}
