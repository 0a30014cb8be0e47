package cache

import (
	"sort"
	"strconv"
	"strings"
)

// Key builds a deterministic cache key from every parameter that affects the
// cached value. Set parameters are sorted so that two logically identical
// queries always produce the same key, and two distinct queries never collide.
type Key struct {
	parts []string
}

// NewKey starts a key with a namespace prefix, e.g. "prices" or "names".
func NewKey(prefix string) *Key {
	return &Key{parts: []string{prefix}}
}

// Str appends a scalar string selector.
func (k *Key) Str(name, v string) *Key {
	k.parts = append(k.parts, name+"="+v)
	return k
}

// Int appends a scalar integer selector.
func (k *Key) Int(name string, v int) *Key {
	k.parts = append(k.parts, name+"="+strconv.Itoa(v))
	return k
}

// StrSet appends a set-valued selector; order of the input is irrelevant.
func (k *Key) StrSet(name string, vs []string) *Key {
	s := append([]string(nil), vs...)
	sort.Strings(s)
	k.parts = append(k.parts, name+"="+strings.Join(s, ","))
	return k
}

// IntSet appends a set-valued integer selector; order of the input is irrelevant.
func (k *Key) IntSet(name string, vs []int) *Key {
	s := make([]string, len(vs))
	for i, v := range vs {
		s[i] = strconv.Itoa(v)
	}
	sort.Strings(s)
	k.parts = append(k.parts, name+"="+strings.Join(s, ","))
	return k
}

// String renders the key.
func (k *Key) String() string {
	return strings.Join(k.parts, ":")
}
