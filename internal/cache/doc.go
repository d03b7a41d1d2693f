// Package cache provides a generic thread-safe LRU cache with a soft limit.
//
// When an insertion takes the cache past its soft limit, the least recently
// used entries are evicted until it is at three quarters of the limit.
//
//	c := cache.New[string, image.Image](64)
//	c.Set("floor.png", img)
//	img, ok := c.Get("floor.png")
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
