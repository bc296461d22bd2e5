package api

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/gtplayer-cli/gtplayer/filesystem"
	"github.com/gtplayer-cli/gtplayer/where"
	"github.com/metafates/gache"
	"github.com/samber/mo"
)

// cacheData defines the structured format for persisting cached API records to disk.
type cacheData[K comparable, T any] struct {
	Entries map[K]T `json:"entries"`
}

// cacher provides a generic, thread-safe wrapper for high-level caching operations.
type cacher[K comparable, T any] struct {
	internal   *gache.Cache[*cacheData[K, T]]
	keyWrapper func(K) K
	mu         sync.RWMutex
}

// Get retrieves a value from the cache associated with the specified key.
func (c *cacher[K, T]) Get(key K) mo.Option[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, expired, err := c.internal.Get()
	if err != nil || expired || data == nil {
		return mo.None[T]()
	}

	entry, ok := data.Entries[c.keyWrapper(key)]
	if ok {
		return mo.Some(entry)
	}

	return mo.None[T]()
}

// Set persists a key-value pair to the cache.
func (c *cacher[K, T]) Set(key K, t T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, expired, err := c.internal.Get()
	if err != nil {
		return err
	}

	if !expired && data != nil {
		data.Entries[c.keyWrapper(key)] = t
		return c.internal.Set(data)
	}

	internal := &cacheData[K, T]{Entries: make(map[K]T)}
	internal.Entries[c.keyWrapper(key)] = t
	return c.internal.Set(internal)
}

// genresCacher persists genre listings per age bracket. The catalog moves
// slowly, so a long lifetime keeps the setup flow snappy and offline-friendly.
var genresCacher = &cacher[int, GenresPage]{
	internal: gache.New[*cacheData[int, GenresPage]](
		&gache.Options{
			Path:       where.Genres(),
			Lifetime:   time.Hour * 24 * 10,
			FileSystem: &filesystem.GacheFs{},
		},
	),
	keyWrapper: func(age int) int { return age },
}

// failCacher serves as short-term persistence for failed artist searches to
// mitigate redundant API pressure.
var failCacher = &cacher[string, bool]{
	internal: gache.New[*cacheData[string, bool]](
		&gache.Options{
			Path:       filepath.Join(where.Cache(), "search_fail_cache.json"),
			Lifetime:   time.Minute,
			FileSystem: &filesystem.GacheFs{},
		},
	),
	keyWrapper: normalizedName,
}
