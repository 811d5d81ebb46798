package cache

// GetLocal retrieves a value from LocalCache and asserts its type.
func GetLocal[T any](c LocalCache[string, any], key string) (T, bool) {
	var zero T
	val, found := c.Get(key)
	if !found {
		return zero, false
	}
	// Direct type assertion since Cache is any
	if typed, ok := val.(T); ok {
		return typed, true
	}
	return zero, false
}

// SetLocal sets a value in LocalCache.
func SetLocal[T any](c LocalCache[string, any], key string, value T, cost int64) bool {
	return c.Set(key, any(value), cost)
}

// UpdateLocal helper updates an item in the cache only if it already exists.
func UpdateLocal[T any](c LocalCache[string, any], key string, value T, cost int64) {
	if _, found := GetLocal[T](c, key); found {
		SetLocal(c, key, value, cost)
	}
}

// DeleteLocal deletes a value from local cache.
func DeleteLocal(c LocalCache[string, any], key string) {
	c.Delete(key)
}
