package cache

import (
	"errors"
	"strings"
	"time"

	"github.com/revel/config"
)

// New builds a Cache from the given configuration. Recognized options:
//
//	cache.expires               default entry lifetime, as a time.ParseDuration
//	                            string (default 1h)
//	cache.memcached             use memcached (default false)
//	cache.redis                 use redis (default false)
//	cache.hosts                 comma separated host list for the above
//	cache.redis.password        redis AUTH password
//	cache.redis.maxidle         pool tunables, see RedisOptions
//	cache.redis.maxactive
//	cache.redis.idletimeout     seconds
//	cache.redis.protocol
//	cache.redis.timeout.connect milliseconds
//	cache.redis.timeout.read    milliseconds
//	cache.redis.timeout.write   milliseconds
//
// By default an in-memory cache is used. A nil conf yields an in-memory
// cache with a one hour default expiration.
func New(conf *config.Context) (Cache, error) {
	// Set the default expiration time.
	defaultExpiration := time.Hour // The default for the default is one hour.
	if conf != nil {
		if expireStr, found := conf.String("cache.expires"); found {
			var err error
			if defaultExpiration, err = time.ParseDuration(expireStr); err != nil {
				return nil, errors.New("Could not parse default cache expiration duration " + expireStr + ": " + err.Error())
			}
		}

		// Use memcached?
		if conf.BoolDefault("cache.memcached", false) {
			hosts := splitHosts(conf.StringDefault("cache.hosts", ""))
			if len(hosts) == 0 {
				return nil, errors.New("Memcache enabled but no cache.hosts specified!")
			}
			return NewMemcachedCache(hosts, defaultExpiration), nil
		}

		// Use redis?
		if conf.BoolDefault("cache.redis", false) {
			hosts := splitHosts(conf.StringDefault("cache.hosts", ""))
			if len(hosts) == 0 {
				return nil, errors.New("Redis enabled but no cache.hosts specified!")
			}
			password := conf.StringDefault("cache.redis.password", "")
			return NewRedisCacheOptions(hosts[0], password, defaultExpiration, redisOptions(conf)), nil
		}
	}

	// By default, use the in-memory cache.
	return NewInMemoryCache(defaultExpiration), nil
}

// Init builds a Cache from the configuration and installs it as the
// package-level Instance.
func Init(conf *config.Context) error {
	instance, err := New(conf)
	if err != nil {
		return err
	}
	Instance = instance
	return nil
}

func redisOptions(conf *config.Context) RedisOptions {
	opts := DefaultRedisOptions()
	opts.MaxIdle = conf.IntDefault("cache.redis.maxidle", opts.MaxIdle)
	opts.MaxActive = conf.IntDefault("cache.redis.maxactive", opts.MaxActive)
	opts.IdleTimeout = time.Duration(conf.IntDefault("cache.redis.idletimeout", 240)) * time.Second
	opts.Protocol = conf.StringDefault("cache.redis.protocol", opts.Protocol)
	opts.ConnectTimeout = time.Millisecond * time.Duration(conf.IntDefault("cache.redis.timeout.connect", 10000))
	opts.ReadTimeout = time.Millisecond * time.Duration(conf.IntDefault("cache.redis.timeout.read", 5000))
	opts.WriteTimeout = time.Millisecond * time.Duration(conf.IntDefault("cache.redis.timeout.write", 5000))
	return opts
}

func splitHosts(hosts string) []string {
	var out []string
	for _, host := range strings.Split(hosts, ",") {
		if host = strings.TrimSpace(host); host != "" {
			out = append(out, host)
		}
	}
	return out
}
