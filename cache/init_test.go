package cache

import (
	"testing"
	"time"

	"github.com/revel/config"
)

func TestNewDefaultsToInMemory(t *testing.T) {
	c, err := New(nil)
	if err != nil {
		t.Fatalf("New(nil): %s", err)
	}
	if _, ok := c.(InMemoryCache); !ok {
		t.Errorf("Expected an InMemoryCache, got %T", c)
	}
}

func TestNewParsesExpires(t *testing.T) {
	conf := config.NewContext()
	conf.SetOption("cache.expires", "90s")

	c, err := New(conf)
	if err != nil {
		t.Fatalf("New: %s", err)
	}

	// Entries set with the default expiry must outlive a shorter one.
	if err := c.Set("k", "v", DefaultExpiryTime); err != nil {
		t.Fatalf("Set: %s", err)
	}
	var v string
	time.Sleep(10 * time.Millisecond)
	if err := c.Get("k", &v); err != nil || v != "v" {
		t.Errorf("Get: %v / %q", err, v)
	}
}

func TestNewRejectsBadExpires(t *testing.T) {
	conf := config.NewContext()
	conf.SetOption("cache.expires", "ninety seconds")
	if _, err := New(conf); err == nil {
		t.Error("Expected an error for an unparseable cache.expires")
	}
}

func TestNewMemcachedRequiresHosts(t *testing.T) {
	conf := config.NewContext()
	conf.SetOption("cache.memcached", "true")
	if _, err := New(conf); err == nil {
		t.Error("Expected an error when memcached is enabled without hosts")
	}
}

func TestNewSelectsMemcached(t *testing.T) {
	conf := config.NewContext()
	conf.SetOption("cache.memcached", "true")
	conf.SetOption("cache.hosts", "localhost:11211")

	c, err := New(conf)
	if err != nil {
		t.Fatalf("New: %s", err)
	}
	if _, ok := c.(MemcachedCache); !ok {
		t.Errorf("Expected a MemcachedCache, got %T", c)
	}
}

func TestNewSelectsRedis(t *testing.T) {
	conf := config.NewContext()
	conf.SetOption("cache.redis", "true")
	conf.SetOption("cache.hosts", "localhost:6379")
	conf.SetOption("cache.redis.maxidle", "10")

	c, err := New(conf)
	if err != nil {
		t.Fatalf("New: %s", err)
	}
	if _, ok := c.(RedisCache); !ok {
		t.Errorf("Expected a RedisCache, got %T", c)
	}
}

func TestInitSetsInstance(t *testing.T) {
	if err := Init(nil); err != nil {
		t.Fatalf("Init: %s", err)
	}
	if Instance == nil {
		t.Fatal("Init did not assign Instance")
	}
	if err := Set("init", 42, DefaultExpiryTime); err != nil {
		t.Errorf("Set through package sugar: %s", err)
	}
	var n int
	if err := Get("init", &n); err != nil || n != 42 {
		t.Errorf("Get through package sugar: %v / %d", err, n)
	}
}
