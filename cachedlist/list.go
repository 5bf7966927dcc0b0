// Package cachedlist caches a list one item at a time. The cache encoding
// of a List contains only item identifiers; every item is cached under its
// own key. A list that might ordinarily exceed the maximum cache entry size
// can therefore be stored in smaller pieces that fit within the limit.
//
// Items travel through encoding/gob, so concrete item types must be
// registered with gob.Register by the caller.
package cachedlist

import (
	"bytes"
	"encoding/gob"
	"sync"
	"time"

	"github.com/revel/lazycache"
	"github.com/revel/lazycache/logger"
)

var listLog = logger.New("section", "cachedlist")

// Strategy tells a List how its items relate to the cache.
type Strategy interface {
	// Identify returns the identifier for an item. The identifier must be
	// enough to recreate the item from scratch via Rebuild.
	Identify(item interface{}) (string, error)

	// CacheKey returns the cache key used for the item the identifier
	// represents.
	CacheKey(id string) string

	// Rebuild returns items for identifiers whose cached copies were not
	// found. Order does not matter; identifiers that cannot be rebuilt are
	// simply absent from the result.
	Rebuild(missing []string) ([]interface{}, error)
}

// boxed forces gob encoding for every item, including scalars.
type boxed struct {
	Value interface{}
}

// listWire is the cache representation of a List.
type listWire struct {
	IDs     []string
	Expires time.Duration
}

// List is an ordered collection whose cache form references its items by
// identifier. After being decoded from the cache it holds identifiers only;
// the first access unpacks them, multi-getting the item keys and rebuilding
// whatever is missing.
type List struct {
	mu       sync.Mutex
	cache    *lazycache.LazyCache
	strategy Strategy
	expires  time.Duration

	items  []interface{}
	ids    []string
	packed bool
}

// New builds a List over the given items. The same cache and strategy must
// be supplied when constructing the destination of a cache Get.
func New(c *lazycache.LazyCache, s Strategy, items []interface{}) *List {
	return &List{cache: c, strategy: s, items: items}
}

// Items returns the list contents, unpacking them from the cache first if
// this List was itself fetched from the cache.
func (l *List) Items() ([]interface{}, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.unpack(); err != nil {
		return nil, err
	}
	return l.items, nil
}

// At returns the item at index i, unpacking first if needed.
func (l *List) At(i int) (interface{}, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.unpack(); err != nil {
		return nil, err
	}
	return l.items[i], nil
}

// Len returns the number of items, or the number of pending identifiers if
// the list has not been unpacked yet.
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.packed {
		return len(l.ids)
	}
	return len(l.items)
}

// Store caches this list under the given key, using the same expiry for the
// list and for the individual items. If the list is cached without using
// this method the items are cached with the default expiry and may end up
// expiring before the list, forcing a rebuild of those items the next time
// the list is fetched.
func (l *List) Store(key string, expires time.Duration) error {
	l.mu.Lock()
	original := l.expires
	l.expires = expires
	l.mu.Unlock()

	// Set gob-encodes the list, which locks it again to pack the items.
	err := l.cache.Set(key, l, expires)

	l.mu.Lock()
	l.expires = original
	l.mu.Unlock()
	return err
}

// GobEncode packs the list: every item is cached under its own key and only
// the identifiers are encoded. This is what keeps the cache value of the
// list itself small.
func (l *List) GobEncode() ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := l.ids
	if !l.packed {
		var err error
		if ids, err = l.packItems(); err != nil {
			return nil, err
		}
	}

	var b bytes.Buffer
	if err := gob.NewEncoder(&b).Encode(listWire{IDs: ids, Expires: l.expires}); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// GobDecode leaves the list packed. Unpacking happens lazily on first
// access because the identifiers may be decoded long before the caller is
// interested in the items.
func (l *List) GobDecode(data []byte) error {
	var wire listWire
	if err := gob.NewDecoder(bytes.NewBuffer(data)).Decode(&wire); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ids = wire.IDs
	l.expires = wire.Expires
	l.items = nil
	l.packed = true
	return nil
}

// packItems reduces the items to identifiers and caches each item under its
// own key.
func (l *List) packItems() ([]string, error) {
	ids := make([]string, len(l.items))
	data := make(map[string]interface{}, len(l.items))
	for i, item := range l.items {
		id, err := l.strategy.Identify(item)
		if err != nil {
			return nil, err
		}
		ids[i] = id
		data[l.strategy.CacheKey(id)] = boxed{Value: item}
	}
	if err := l.cache.SetMulti(data, l.expires); err != nil {
		return nil, err
	}
	return ids, nil
}

// unpack replaces the identifiers with the items they represent. Items are
// found in the cache or rebuilt and added back to the cache. Identifiers
// whose items cannot be rebuilt are dropped. Runs at most once.
func (l *List) unpack() error {
	if !l.packed {
		return nil
	}
	l.packed = false

	keys := make([]string, len(l.ids))
	for i, id := range l.ids {
		keys[i] = l.strategy.CacheKey(id)
	}

	found := make(map[string]interface{}, len(l.ids))
	var missing []string

	getter, err := l.cache.GetMulti(keys...)
	if err != nil {
		// Treat a failed multi-get as all-missing and rebuild everything.
		listLog.Error("unpack: multi-get failed, rebuilding all items", "error", err)
		missing = append(missing, l.ids...)
	} else {
		for i, id := range l.ids {
			var box boxed
			if err := getter.Get(keys[i], &box); err != nil || box.Value == nil {
				missing = append(missing, id)
				continue
			}
			found[id] = box.Value
		}
	}

	if len(missing) > 0 {
		rebuilt, err := l.strategy.Rebuild(missing)
		if err != nil {
			l.packed = true
			return err
		}

		// Cache the rebuilt items and index them by identifier so the final
		// pass below can put them back in order.
		data := make(map[string]interface{}, len(rebuilt))
		for _, item := range rebuilt {
			id, err := l.strategy.Identify(item)
			if err != nil {
				l.packed = true
				return err
			}
			found[id] = item
			data[l.strategy.CacheKey(id)] = boxed{Value: item}
		}
		if err := l.cache.SetMulti(data, l.expires); err != nil {
			listLog.Error("unpack: could not cache rebuilt items", "error", err)
		}
	}

	items := make([]interface{}, 0, len(l.ids))
	for _, id := range l.ids {
		if item, ok := found[id]; ok {
			items = append(items, item)
		}
	}
	l.items = items
	l.ids = nil
	return nil
}
