package domain

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ErrDomainConflict is returned by Union when the same key maps to different
// tuples in different operands.
var ErrDomainConflict = errors.New("fieldgraph(domain): conflicting domains for key in union")

// Multi is an immutable mapping from string keys to Tuples, describing the
// named components of a MultiField. Like Tuple it is interned, so == decides
// structural equality. Keys are held in sorted order.
type Multi struct {
	keys   []string
	tuples []*Tuple
	idx    map[string]int
	size   int
	key    string
}

var multiCache = newInternTable[*Multi]()

// MakeMulti returns the canonical Multi for the given key/tuple mapping.
// A nil or empty map yields the empty multi-domain.
func MakeMulti(m map[string]*Tuple) *Multi {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ":" + m[k].Key()
	}
	key := "{" + strings.Join(parts, ",") + "}"
	return multiCache.intern(key, func() *Multi {
		md := &Multi{
			keys: keys,
			idx:  make(map[string]int, len(keys)),
			key:  key,
		}
		for i, k := range keys {
			md.tuples = append(md.tuples, m[k])
			md.idx[k] = i
			md.size += m[k].Size()
		}
		return md
	})
}

// EmptyMulti returns the multi-domain with no keys. It is the domain of
// fully constant-folded operators.
func EmptyMulti() *Multi { return MakeMulti(nil) }

// Union merges several multi-domains. A key occurring in more than one
// operand must map to the identical tuple everywhere, else ErrDomainConflict.
func Union(doms ...*Multi) (*Multi, error) {
	if len(doms) == 1 {
		return doms[0], nil
	}
	merged := make(map[string]*Tuple)
	for _, d := range doms {
		for i, k := range d.keys {
			if have, ok := merged[k]; ok {
				if have != d.tuples[i] {
					return nil, errors.Wrapf(ErrDomainConflict, "key %q", k)
				}
				continue
			}
			merged[k] = d.tuples[i]
		}
	}
	return MakeMulti(merged), nil
}

// Keys returns the sorted key list. Callers must not modify it.
func (m *Multi) Keys() []string { return m.keys }

// Get returns the tuple for key, or nil if the key is absent.
func (m *Multi) Get(key string) *Tuple {
	if i, ok := m.idx[key]; ok {
		return m.tuples[i]
	}
	return nil
}

// Has reports whether key is present.
func (m *Multi) Has(key string) bool {
	_, ok := m.idx[key]
	return ok
}

// Len returns the number of keys.
func (m *Multi) Len() int { return len(m.keys) }

// Size returns the total number of elements across all components.
func (m *Multi) Size() int { return m.size }

// Key returns the canonical content string.
func (m *Multi) Key() string { return m.key }

func (m *Multi) String() string { return "MultiDomain" + m.key }

func (m *Multi) isSpec() {}
