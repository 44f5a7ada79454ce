package di

import (
	"cmp"
	"slices"
)

// Snapshot is a read-only view of one registry for diagnostics.
type Snapshot struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Parent          string             `json:"parent,omitempty"`
	Disposed        bool               `json:"disposed"`
	ClassMappings   []ClassMappingInfo `json:"class_mappings"`
	TypeMappings    []TypeMappingInfo  `json:"type_mappings"`
	Systems         []SystemInfo       `json:"systems"`
	Entities        []string           `json:"entities"`
	Extensions      []string           `json:"extensions"`
	Singletons      int                `json:"singletons"`
	CompiledClasses int                `json:"compiled_classes"`
}

// ClassMappingInfo describes one local class mapping.
type ClassMappingInfo struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
	Kind string `json:"kind"`
}

// TypeMappingInfo describes one local type mapping.
type TypeMappingInfo struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Target   string `json:"target,omitempty"`
	TargetID string `json:"target_id,omitempty"`
}

// SystemInfo describes one local system registration.
type SystemInfo struct {
	Type     string   `json:"type"`
	Required []string `json:"required"`
	Matches  []string `json:"matches"`
}

// Snapshot returns the local state of inj. Ancestors are not included.
func (inj *Injector) Snapshot() Snapshot {
	inj.mu.RLock()
	defer inj.mu.RUnlock()

	s := Snapshot{
		ID:              inj.id,
		Name:            inj.name,
		Disposed:        inj.disposed,
		ClassMappings:   []ClassMappingInfo{},
		TypeMappings:    []TypeMappingInfo{},
		Systems:         []SystemInfo{},
		Entities:        typeNames(inj.entities.all()),
		Extensions:      inj.extensions.kinds(),
		Singletons:      inj.scope.size(),
		CompiledClasses: len(inj.constructors),
	}
	if inj.parent != nil {
		s.Parent = inj.parent.id
	}

	for t, slots := range inj.mappings.classes {
		slots.each(func(id ID, m *classMapping) {
			s.ClassMappings = append(s.ClassMappings, ClassMappingInfo{
				Type: t.String(), ID: string(id), Kind: m.kind.String(),
			})
		})
	}
	slices.SortFunc(s.ClassMappings, func(a, b ClassMappingInfo) int {
		return cmp.Or(cmp.Compare(a.Type, b.Type), cmp.Compare(a.ID, b.ID))
	})

	for id, m := range inj.mappings.types {
		info := TypeMappingInfo{ID: string(id), Kind: m.kind.String(), TargetID: string(m.targetID)}
		if m.target != nil {
			info.Target = m.target.String()
		}
		s.TypeMappings = append(s.TypeMappings, info)
	}
	slices.SortFunc(s.TypeMappings, func(a, b TypeMappingInfo) int { return cmp.Compare(a.ID, b.ID) })

	for _, reg := range inj.systems {
		s.Systems = append(s.Systems, SystemInfo{
			Type:     reg.typ.String(),
			Required: typeNames(reg.required),
			Matches:  typeNames(inj.entities.matching(reg.required)),
		})
	}

	slices.Sort(s.Extensions)
	return s
}

// Tree returns snapshots of inj and its ancestors, root first.
func (inj *Injector) Tree() []Snapshot {
	var out []Snapshot
	for r := inj; r != nil; r = r.parent {
		out = append(out, r.Snapshot())
	}
	slices.Reverse(out)
	return out
}
