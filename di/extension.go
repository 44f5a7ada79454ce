package di

import "sync"

// extensionTable is created by the root injector and shared by the tree.
type extensionTable struct {
	mu        sync.RWMutex
	factories map[string]ExtensionFactory
}

func newExtensionTable() *extensionTable {
	return &extensionTable{factories: make(map[string]ExtensionFactory)}
}

func (t *extensionTable) add(kind string, f ExtensionFactory) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.factories[kind] = f
}

func (t *extensionTable) lookup(kind string) (ExtensionFactory, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	f, ok := t.factories[kind]
	return f, ok
}

func (t *extensionTable) kinds() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.factories))
	for k := range t.factories {
		out = append(out, k)
	}
	return out
}
