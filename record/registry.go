package record

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/revel/config"

	"github.com/revel/lazycache"
	"github.com/revel/lazycache/logger"
)

var recordLog = logger.New("section", "record")

// Loader fetches rows from their source of truth, usually a database.
type Loader interface {
	// Load returns the row with the given pk, or (nil, nil) if there is no
	// such row. Errors are reserved for the source being unreachable.
	Load(pk string) (interface{}, error)

	// LookupPK resolves a non-pk lookup (column -> value constraints) to the
	// pk of the matching row, or "" if there is none.
	LookupPK(lookup map[string]interface{}) (string, error)
}

// Registry maps "namespace.kind" names to Loaders and carries the cache all
// row entries are kept in.
type Registry struct {
	mu      sync.RWMutex
	loaders map[string]Loader
	cache   *lazycache.LazyCache
	version string
}

// NewRegistry builds a registry over the given cache. The cache key version
// is read from "cache.keyversion"; when it is not configured, a
// process-unique token is generated so stale entries written by other
// versions are never read.
func NewRegistry(c *lazycache.LazyCache, conf *config.Context) *Registry {
	version := ""
	if conf != nil {
		version = conf.StringDefault("cache.keyversion", "")
	}
	if version == "" {
		version = uuid.NewString()
	}
	return &Registry{
		loaders: map[string]Loader{},
		cache:   c,
		version: version,
	}
}

// Register installs the loader for rows named "namespace.kind.*".
// Registering the same name twice replaces the previous loader.
func (r *Registry) Register(namespace, kind string, loader Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[namespace+"."+kind] = loader
}

// Cache returns the cache the registry stores rows in.
func (r *Registry) Cache() *lazycache.LazyCache {
	return r.cache
}

// KeyVersion returns the token embedded in every cache key.
func (r *Registry) KeyVersion() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// SetKeyVersion changes the key version, effectively abandoning all cached
// rows and lookups written under the previous version.
func (r *Registry) SetKeyVersion(version string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.version = version
}

func (r *Registry) loaderFor(id Identifier) (Loader, error) {
	return r.loaderForModel(id.Model())
}

func (r *Registry) loaderForModel(model string) (Loader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	loader, ok := r.loaders[model]
	if !ok {
		return nil, fmt.Errorf("record: no loader registered for %q", model)
	}
	return loader, nil
}

var (
	defaultMu       sync.RWMutex
	defaultRegistry *Registry
)

// SetDefault installs the registry that gob-decoded Refs attach to. The
// registry a Ref was built from cannot ride along in its encoded form, so
// the default is used when the Ref comes back out of a cache.
func SetDefault(r *Registry) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultRegistry = r
}

// Default returns the registry installed with SetDefault, or nil.
func Default() *Registry {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultRegistry
}
