package assets

// Cache memoizes exported assets by name for the duration of one export run.
// It is owned by a single export session and is not safe for concurrent use.
type Cache[T any] struct {
	data map[string]T

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache[T any]() *Cache[T] {
	return &Cache[T]{
		data: make(map[string]T),
	}
}

// Get retrieves an item from cache.
func (c *Cache[T]) Get(key string) (T, bool) {
	v, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

// Set stores an item in cache.
func (c *Cache[T]) Set(key string, v T) {
	c.data[key] = v
}

// GetOrCreate returns the cached item for key, calling create on a miss.
// A failed create is not cached.
func (c *Cache[T]) GetOrCreate(key string, create func() (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := create()
	if err != nil {
		return v, err
	}
	c.Set(key, v)
	return v, nil
}

// Len returns the number of cached items.
func (c *Cache[T]) Len() int {
	return len(c.data)
}

// Stats returns how many lookups were served from the cache and how many
// were not.
func (c *Cache[T]) Stats() (hits, misses int) {
	return c.hits, c.misses
}
