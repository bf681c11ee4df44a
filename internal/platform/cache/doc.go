// Package cache provides a Redis-backed read-through cache that decorates
// any store.TaskStore. Reads are served from Redis when possible; writes go
// to the decorated store first and then evict the affected keys. A Redis
// failure never fails a request: it is logged and the store is consulted.
package cache
