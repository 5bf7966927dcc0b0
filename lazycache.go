// Package lazycache wraps an expiring cache to provide more features:
// negative caching of missing values, miss-tolerant reads, and a
// get-or-compute helper. The subpackages build on it: cachedlist caches
// large lists one item at a time, and record caches lazy references to
// database rows.
package lazycache

import (
	"bytes"
	"errors"
	"time"

	"github.com/revel/config"

	"github.com/revel/lazycache/cache"
	"github.com/revel/lazycache/logger"
)

var lazyLog = logger.New("section", "lazycache")

// ErrNothing is returned by Get when the key holds a negative entry, i.e.
// it was recorded that there is no value rather than that nothing is known.
// It is distinct from cache.ErrCacheMiss.
var ErrNothing = errors.New("lazycache: nothing stored for key.")

// nothingToken marks a negative entry. Backends never see it as anything
// but an ordinary byte value.
var nothingToken = []byte("\x00lazycache:nothing\x00")

// LazyCache wraps a cache to provide more features.
//
// Values pass through cache.Serialize before they reach the backend, so all
// backends behave uniformly and a nil value can be recorded as a negative
// entry. Counters are not exposed here; use Backend for Increment and
// friends.
type LazyCache struct {
	backend       cache.Cache
	defaultExpiry time.Duration
}

// New wraps the given backend. defaultExpiry replaces
// cache.DefaultExpiryTime when entries are written; pass zero to defer to
// the backend's own default.
func New(backend cache.Cache, defaultExpiry time.Duration) *LazyCache {
	return &LazyCache{backend: backend, defaultExpiry: defaultExpiry}
}

// NewFromConfig builds the backend with cache.New and reads the wrapper's
// default expiry from "cache.lazy.expires" (a time.ParseDuration string).
func NewFromConfig(conf *config.Context) (*LazyCache, error) {
	backend, err := cache.New(conf)
	if err != nil {
		return nil, err
	}

	var defaultExpiry time.Duration
	if conf != nil {
		if expireStr, found := conf.String("cache.lazy.expires"); found {
			if defaultExpiry, err = time.ParseDuration(expireStr); err != nil {
				return nil, errors.New("Could not parse cache.lazy.expires duration " + expireStr + ": " + err.Error())
			}
		}
	}
	return New(backend, defaultExpiry), nil
}

// Backend returns the wrapped cache.
func (c *LazyCache) Backend() cache.Cache {
	return c.backend
}

func (c *LazyCache) expiry(expires time.Duration) time.Duration {
	if expires == cache.DefaultExpiryTime && c.defaultExpiry != 0 {
		return c.defaultExpiry
	}
	return expires
}

// Set stores the value under key. A nil value is stored as a negative
// entry, so a later Get reports ErrNothing instead of a miss.
func (c *LazyCache) Set(key string, value interface{}, expires time.Duration) error {
	b, err := c.encode(value)
	if err != nil {
		return err
	}
	return c.backend.Set(key, b, c.expiry(expires))
}

// SetNothing records that there is no value for key.
func (c *LazyCache) SetNothing(key string, expires time.Duration) error {
	return c.Set(key, nil, expires)
}

// Add stores the value under key only if the key does not already exist.
func (c *LazyCache) Add(key string, value interface{}, expires time.Duration) error {
	b, err := c.encode(value)
	if err != nil {
		return err
	}
	return c.backend.Add(key, b, c.expiry(expires))
}

// Replace stores the value under key only if the key already exists.
func (c *LazyCache) Replace(key string, value interface{}, expires time.Duration) error {
	b, err := c.encode(value)
	if err != nil {
		return err
	}
	return c.backend.Replace(key, b, c.expiry(expires))
}

// Get decodes the value stored under key into ptrValue.
//
// Returns:
//   - nil if a value was found and decoded
//   - ErrNothing if a negative entry was found
//   - cache.ErrCacheMiss if the key was not in the cache
//   - an implementation specific error otherwise
func (c *LazyCache) Get(key string, ptrValue interface{}) error {
	var raw []byte
	if err := c.backend.Get(key, &raw); err != nil {
		return err
	}
	return decode(raw, ptrValue)
}

// GetOrMiss is a read that never fails on a cold cache: a cache miss is
// reported through the missed return instead of an error. Passing refresh
// bypasses the cache and always reports a miss, which callers use to force
// regeneration:
//
//	missed, err := c.GetOrMiss(key, &value, refresh)
//	if missed {
//	    value = generate()
//	    c.Set(key, value, cache.DefaultExpiryTime)
//	}
func (c *LazyCache) GetOrMiss(key string, ptrValue interface{}, refresh bool) (missed bool, err error) {
	if refresh {
		return true, nil
	}
	switch err := c.Get(key, ptrValue); err {
	case nil:
		return false, nil
	case cache.ErrCacheMiss:
		return true, nil
	default:
		return false, err
	}
}

// Fetch gets the value for key, computing and caching it on a miss.
// A load that returns (nil, nil) is cached as a negative entry and reported
// as ErrNothing, now and on subsequent calls until the entry expires.
func (c *LazyCache) Fetch(key string, ptrValue interface{}, expires time.Duration,
	load func() (interface{}, error)) error {

	switch err := c.Get(key, ptrValue); err {
	case nil:
		return nil
	case ErrNothing:
		return ErrNothing
	case cache.ErrCacheMiss:
		// Fall through to the loader.
	default:
		// A broken cache should not break the read path.
		lazyLog.Error("Fetch: cache read failed, loading from source", "key", key, "error", err)
	}

	value, err := load()
	if err != nil {
		return err
	}
	if value == nil {
		if err := c.SetNothing(key, expires); err != nil {
			lazyLog.Error("Fetch: could not store negative entry", "key", key, "error", err)
		}
		return ErrNothing
	}

	b, err := cache.Serialize(value)
	if err != nil {
		return err
	}
	if err := c.backend.Set(key, b, c.expiry(expires)); err != nil {
		lazyLog.Error("Fetch: could not store loaded value", "key", key, "error", err)
	}
	return cache.Deserialize(b, ptrValue)
}

// Delete removes the entry, negative or not.
func (c *LazyCache) Delete(key string) error {
	return c.backend.Delete(key)
}

// GetMulti fetches several keys at once. Negative entries surface as
// ErrNothing from the returned Getter.
func (c *LazyCache) GetMulti(keys ...string) (cache.Getter, error) {
	g, err := c.backend.GetMulti(keys...)
	if err != nil {
		return nil, err
	}
	return lazyGetter{g}, nil
}

// SetMulti stores every entry of the map with the same expiry. The first
// error is returned, but all entries are attempted.
func (c *LazyCache) SetMulti(data map[string]interface{}, expires time.Duration) error {
	var firstErr error
	for key, value := range data {
		if err := c.Set(key, value, expires); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (c *LazyCache) encode(value interface{}) ([]byte, error) {
	if value == nil {
		// Copy so a backend cannot alias the token.
		return append([]byte(nil), nothingToken...), nil
	}
	return cache.Serialize(value)
}

func decode(raw []byte, ptrValue interface{}) error {
	if bytes.Equal(raw, nothingToken) {
		return ErrNothing
	}
	return cache.Deserialize(raw, ptrValue)
}

// lazyGetter restores negative entries fetched through GetMulti.
type lazyGetter struct {
	g cache.Getter
}

func (lg lazyGetter) Get(key string, ptrValue interface{}) error {
	var raw []byte
	if err := lg.g.Get(key, &raw); err != nil {
		return err
	}
	return decode(raw, ptrValue)
}
