package di

// ClassKind is the lifetime of a class mapping.
type ClassKind int

const (
	ClassInstance  ClassKind = iota // new instance per resolution
	ClassValue                      // fixed value
	ClassSingleton                  // one instance per owning registry
	ClassProvider                   // factory called per resolution
)

func (k ClassKind) String() string {
	switch k {
	case ClassInstance:
		return "instance"
	case ClassValue:
		return "value"
	case ClassSingleton:
		return "singleton"
	case ClassProvider:
		return "provider"
	default:
		return "unknown"
	}
}

// TypeKind is the production rule of a type mapping.
type TypeKind int

const (
	TypeUnset     TypeKind = iota // declared without a target
	TypeClass                     // new instance of a target type
	TypeAlias                     // class-mode resolution of (target, targetID)
	TypeSingleton                 // one instance of a target type per owning registry
	TypeValue                     // fixed value
	TypeProvider                  // factory called per resolution
)

func (k TypeKind) String() string {
	switch k {
	case TypeUnset:
		return "unset"
	case TypeClass:
		return "class"
	case TypeAlias:
		return "alias"
	case TypeSingleton:
		return "singleton"
	case TypeValue:
		return "value"
	case TypeProvider:
		return "provider"
	default:
		return "unknown"
	}
}

// Provider is a factory registered with ToProvider. It is called on every
// resolution of the mapping.
type Provider func() any

type classMapping struct {
	kind     ClassKind
	value    any
	provider Provider
	owner    *Injector
}

type typeMapping struct {
	kind     TypeKind
	target   *Type
	targetID ID
	value    any
	provider Provider
	owner    *Injector
}

// ClassMapper configures the class mapping returned by Map. The mapping is
// Instance until one of the To methods is called.
type ClassMapper struct {
	inj     *Injector
	typ     *Type
	mapping *classMapping
}

// ToValue maps the type to v.
func (m *ClassMapper) ToValue(v any) {
	*m.mapping = classMapping{kind: ClassValue, value: v, owner: m.inj}
}

// ToSingleton maps the type to one instance cached in this registry.
func (m *ClassMapper) ToSingleton() {
	*m.mapping = classMapping{kind: ClassSingleton, owner: m.inj}
}

// ToProvider maps the type to p.
func (m *ClassMapper) ToProvider(p Provider) {
	*m.mapping = classMapping{kind: ClassProvider, provider: p, owner: m.inj}
}

// WithParameter sets the value bound to the type's Parameter dependency when
// it is constructed through this registry or its descendants.
func (m *ClassMapper) WithParameter(v any) *ClassMapper {
	m.inj.mappings.params[m.typ] = v
	return m
}

// TypeMapper configures the type mapping returned by MapType. The mapping is
// Unset until one of the To methods is called.
type TypeMapper struct {
	inj     *Injector
	mapping *typeMapping
}

// ToClass maps the identifier to a new instance of t per resolution. No
// class mapping for t is needed.
func (m *TypeMapper) ToClass(t *Type) {
	*m.mapping = typeMapping{kind: TypeClass, target: t, owner: m.inj}
}

// ToMapping maps the identifier to whatever the class mapping of (t, id)
// produces, honoring its lifetime.
func (m *TypeMapper) ToMapping(t *Type, id ...ID) {
	*m.mapping = typeMapping{kind: TypeAlias, target: t, targetID: firstID(id), owner: m.inj}
}

// ToSingleton maps the identifier to one instance of t cached in this registry.
func (m *TypeMapper) ToSingleton(t *Type) {
	*m.mapping = typeMapping{kind: TypeSingleton, target: t, owner: m.inj}
}

// ToValue maps the identifier to v.
func (m *TypeMapper) ToValue(v any) {
	*m.mapping = typeMapping{kind: TypeValue, value: v, owner: m.inj}
}

// ToProvider maps the identifier to p.
func (m *TypeMapper) ToProvider(p Provider) {
	*m.mapping = typeMapping{kind: TypeProvider, provider: p, owner: m.inj}
}

func firstID(ids []ID) ID {
	if len(ids) == 0 {
		return Unqualified
	}
	return ids[0]
}
