package di

// slotted keeps the unqualified entry apart from the id-indexed ones so the
// common lookup avoids a map access.
type slotted[V any] struct {
	def    V
	hasDef bool
	byID   map[ID]V
}

func (s *slotted[V]) get(id ID) (V, bool) {
	if id == Unqualified {
		return s.def, s.hasDef
	}
	v, ok := s.byID[id]
	return v, ok
}

func (s *slotted[V]) set(id ID, v V) {
	if id == Unqualified {
		s.def, s.hasDef = v, true
		return
	}
	if s.byID == nil {
		s.byID = make(map[ID]V)
	}
	s.byID[id] = v
}

func (s *slotted[V]) each(fn func(id ID, v V)) {
	if s.hasDef {
		fn(Unqualified, s.def)
	}
	for id, v := range s.byID {
		fn(id, v)
	}
}

// mappingRegistry holds the production rules local to one injector and
// delegates misses to its parent.
type mappingRegistry struct {
	parent  *mappingRegistry
	classes map[*Type]*slotted[*classMapping]
	types   map[ID]*typeMapping
	params  map[*Type]any
}

func newMappingRegistry(parent *mappingRegistry) *mappingRegistry {
	return &mappingRegistry{
		parent:  parent,
		classes: make(map[*Type]*slotted[*classMapping]),
		types:   make(map[ID]*typeMapping),
		params:  make(map[*Type]any),
	}
}

// registerClass replaces any local mapping for (t, id).
func (r *mappingRegistry) registerClass(t *Type, id ID, m *classMapping) {
	s, ok := r.classes[t]
	if !ok {
		s = &slotted[*classMapping]{}
		r.classes[t] = s
	}
	s.set(id, m)
}

func (r *mappingRegistry) registerType(id ID, m *typeMapping) {
	r.types[id] = m
}

func (r *mappingRegistry) lookupClass(t *Type, id ID) (*classMapping, bool) {
	for reg := r; reg != nil; reg = reg.parent {
		if s, ok := reg.classes[t]; ok {
			if m, ok := s.get(id); ok {
				return m, true
			}
		}
	}
	return nil, false
}

func (r *mappingRegistry) lookupType(id ID) (*typeMapping, bool) {
	for reg := r; reg != nil; reg = reg.parent {
		if m, ok := reg.types[id]; ok {
			return m, true
		}
	}
	return nil, false
}

func (r *mappingRegistry) lookupParam(t *Type) (any, bool) {
	for reg := r; reg != nil; reg = reg.parent {
		if v, ok := reg.params[t]; ok {
			return v, true
		}
	}
	return nil, false
}

func (r *mappingRegistry) clear() {
	r.classes = make(map[*Type]*slotted[*classMapping])
	r.types = make(map[ID]*typeMapping)
	r.params = make(map[*Type]any)
}
