package cache

// Cache is a read-through cache keyed by opaque string tokens.
type Cache interface {
	Get(key string) (interface{}, bool)
	Add(key string, value interface{})
	Keys() []string
	Delete(key string)
}
