package cache

import "strings"

// Key is an ordered tuple of segments identifying a cache entry.
// Keys form a prefix hierarchy: ["budgets"] covers ["budgets","list"] and
// ["budgets","detail","7"].
type Key []string

// ListKey builds the key for an entity kind's collection entry.
func ListKey(kind string) Key {
	return Key{kind, "list"}
}

// DetailKey builds the key for a single entity's entry.
func DetailKey(kind, id string) Key {
	return Key{kind, "detail", id}
}

// KindKey builds the prefix covering every entry of an entity kind.
func KindKey(kind string) Key {
	return Key{kind}
}

// String renders the key for map indexing and logging.
func (k Key) String() string {
	return strings.Join(k, "/")
}

// HasPrefix reports whether the key starts with the given prefix.
// Every key has the empty prefix; a key is its own prefix.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i, seg := range prefix {
		if k[i] != seg {
			return false
		}
	}
	return true
}

// Equal reports whether two keys are identical.
func (k Key) Equal(other Key) bool {
	return len(k) == len(other) && k.HasPrefix(other)
}

// Clone returns an independent copy of the key.
func (k Key) Clone() Key {
	out := make(Key, len(k))
	copy(out, k)
	return out
}
