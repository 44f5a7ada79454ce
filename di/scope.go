package di

import "sync"

// scopeCache owns the singleton instances created for one registry: one
// table keyed by type, one keyed by type-mapping identifier. It has its own
// lock so factories run without any registry lock held. Cycles through
// singleton descriptors are rejected when they are compiled; a pending slot
// is waited on. A constructor that asks the injector for its own singleton
// at run time therefore blocks.
type scopeCache struct {
	registry string

	mu       sync.Mutex
	byType   map[*Type]*slotted[any]
	byID     slotted[any]
	pending  map[scopeKey]chan struct{}
	disposed bool
}

type scopeKey struct {
	typ   *Type
	id    ID
	named bool
}

func newScopeCache(registry string) *scopeCache {
	return &scopeCache{
		registry: registry,
		byType:   make(map[*Type]*slotted[any]),
		pending:  make(map[scopeKey]chan struct{}),
	}
}

func (c *scopeCache) slots(key scopeKey) *slotted[any] {
	if key.named {
		return &c.byID
	}
	s, ok := c.byType[key.typ]
	if !ok {
		s = &slotted[any]{}
		c.byType[key.typ] = s
	}
	return s
}

// getOrCreate returns the instance cached under key, calling factory at
// most once per slot. A request that finds the slot being filled by
// another call waits for it; if that factory panics the slot stays empty
// and the next caller retries. created reports whether factory ran.
func (c *scopeCache) getOrCreate(key scopeKey, factory func() any) (v any, created bool, err error) {
	for {
		c.mu.Lock()
		if c.disposed {
			c.mu.Unlock()
			return nil, false, disposed(c.registry)
		}
		if v, ok := c.slots(key).get(key.id); ok {
			c.mu.Unlock()
			return v, false, nil
		}
		wait, busy := c.pending[key]
		if !busy {
			break
		}
		c.mu.Unlock()
		<-wait
	}

	done := make(chan struct{})
	c.pending[key] = done
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, key)
		if created && !c.disposed {
			c.slots(key).set(key.id, v)
		}
		close(done)
		c.mu.Unlock()
	}()

	v = factory()
	return v, true, nil
}

func (c *scopeCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, s := range c.byType {
		s.each(func(ID, any) { n++ })
	}
	c.byID.each(func(ID, any) { n++ })
	return n
}

// dispose drops every instance. Later requests fail with DISPOSED.
func (c *scopeCache) dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byType = make(map[*Type]*slotted[any])
	c.byID = slotted[any]{}
	c.disposed = true
}
