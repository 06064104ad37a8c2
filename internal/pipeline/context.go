package pipeline

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Context is the shared data store threaded through the phase chain.
// It is append-only with write-once-per-key semantics: once a phase has
// written a key, later phases may read it but never replace it. The
// runner is the only writer, which keeps the store lock-free.
type Context struct {
	values map[string]any
	logger *zap.Logger
}

// NewContext creates an empty generation context. A nil logger
// disables logging.
func NewContext(logger *zap.Logger) *Context {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Context{
		values: make(map[string]any),
		logger: logger,
	}
}

// Logger returns the structured logger injected into this run.
func (c *Context) Logger() *zap.Logger {
	return c.logger
}

// Has reports whether a key has been written.
func (c *Context) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Get returns the raw value for a key.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Keys returns all written keys in sorted order.
func (c *Context) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// set writes a key exactly once. Only the runner calls this while
// merging a phase's declared outputs.
func (c *Context) set(key string, v any) error {
	if _, exists := c.values[key]; exists {
		return fmt.Errorf("context key %q already written", key)
	}
	c.values[key] = v
	return nil
}

// Value reads a key with its expected type. It fails if the key is
// absent or holds a different type, so later phases cannot silently
// consume outputs that do not exist yet.
func Value[T any](c *Context, key string) (T, error) {
	var zero T
	raw, ok := c.values[key]
	if !ok {
		return zero, fmt.Errorf("context key %q not written", key)
	}
	v, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("context key %q holds %T, not %T", key, raw, zero)
	}
	return v, nil
}
