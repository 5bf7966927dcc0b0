package record

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Cache key namespaces. Row entries and lookup entries must never collide,
// so they carry distinct prefixes.
const (
	recordKeyNamespace = "ModelCache"
	lookupKeyNamespace = "ModelCacheLookup"
)

// versionedKey namespaces and versions a cache key. Bumping the version
// abandons every previously written entry at once.
func versionedKey(namespace, version, key string) string {
	return fmt.Sprintf("%s:%s:%s", namespace, version, key)
}

// RecordKey returns the cache key holding the row the identifier names.
func (r *Registry) RecordKey(id Identifier) string {
	return versionedKey(recordKeyNamespace, r.KeyVersion(), string(id))
}

// LookupKey returns the cache key holding the pk for a non-pk lookup. The
// lookup map is reduced to a stable hash so any map with equal contents
// produces the same key.
func (r *Registry) LookupKey(namespace, kind string, lookup map[string]interface{}) string {
	id := NewIdentifier(namespace, kind, lookupHash(lookup))
	return versionedKey(lookupKeyNamespace, r.KeyVersion(), string(id))
}

// lookupHash renders the lookup map into a canonical string and hashes it.
// Keys are sorted and values are rendered recursively so that maps and
// slices hash the same regardless of construction order.
func lookupHash(lookup map[string]interface{}) string {
	h := sha256.Sum256([]byte(canonical(lookup)))
	return hex.EncodeToString(h[:])
}

func canonical(value interface{}) string {
	switch v := value.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		pairs := make([]string, len(keys))
		for i, key := range keys {
			pairs[i] = key + "=" + canonical(v[key])
		}
		return "{" + strings.Join(pairs, ",") + "}"
	case []interface{}:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = canonical(item)
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}
