// Package cache provides a small generic LRU cache.
//
// The extractor keeps the adjacency of recently used meshes here so that
// switching back and forth between meshes (LOD levels, animation
// keyframes, several views of one asset) does not rebuild it.
//
//	c := cache.New[string, int](8)
//	v, hit, err := c.GetOrCreate("key", func() (int, error) { return 42, nil })
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
