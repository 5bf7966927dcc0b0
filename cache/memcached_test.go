package cache

import (
	"net"
	"testing"
	"time"
)

// These tests require memcached running on localhost:11211 (the default)
const testMemcachedServer = "localhost:11211"

var newMemcachedCache = func(t *testing.T, defaultExpiration time.Duration) Cache {
	c, err := net.Dial("tcp", testMemcachedServer)
	if err != nil {
		t.Skipf("couldn't connect to memcached on %s: %s", testMemcachedServer, err)
	}
	if _, err := c.Write([]byte("flush_all\r\n")); err != nil {
		t.Fatalf("couldn't flush memcached: %s", err)
	}
	c.Close()
	return NewMemcachedCache([]string{testMemcachedServer}, defaultExpiration)
}

func TestMemcachedCache_TypicalGetSet(t *testing.T) {
	typicalGetSet(t, newMemcachedCache)
}

func TestMemcachedCache_IncrDecr(t *testing.T) {
	incrDecr(t, newMemcachedCache)
}

func TestMemcachedCache_IncrWraparound(t *testing.T) {
	incrWraparound(t, newMemcachedCache)
}

func TestMemcachedCache_Expiration(t *testing.T) {
	expiration(t, newMemcachedCache)
}

func TestMemcachedCache_EmptyCache(t *testing.T) {
	emptyCache(t, newMemcachedCache)
}

func TestMemcachedCache_Replace(t *testing.T) {
	testReplace(t, newMemcachedCache)
}

func TestMemcachedCache_Add(t *testing.T) {
	testAdd(t, newMemcachedCache)
}

func TestMemcachedCache_GetMulti(t *testing.T) {
	testGetMulti(t, newMemcachedCache)
}
