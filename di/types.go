package di

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// ID qualifies a mapping. Unqualified is the default slot.
type ID string

// Unqualified is the identifier used when none is given.
const Unqualified ID = ""

// NewSymbol returns an identifier that cannot collide with any other,
// including another symbol with the same description.
func NewSymbol(description string) ID {
	return ID(description + "#" + uuid.NewString())
}

// Constructor builds an instance from resolved arguments. args[i] holds the
// value for the dependency declared at parameter position i.
type Constructor func(args []any) any

// Type is a constructible type key. Identity is the pointer; the name is
// only used for diagnostics.
type Type struct {
	name  string
	ctor  Constructor
	deps  []Dependency
	slots []ComponentSlot
}

// NewType declares a constructible type with its ordered dependency
// descriptors. ctor may be nil for types that are only ever mapped to values
// or providers.
func NewType(name string, ctor Constructor, deps ...Dependency) *Type {
	return &Type{name: name, ctor: ctor, deps: slices.Clone(deps)}
}

// NewEntityType declares an entity class with its fixed component slots.
func NewEntityType(name string, slots ...ComponentSlot) *Type {
	return &Type{name: name, slots: slices.Clone(slots)}
}

// Declare appends dependency descriptors to t. This is the only way to
// describe mutually dependent types, since both must exist first. A
// descriptor that injects t into itself is rejected.
func (t *Type) Declare(deps ...Dependency) error {
	for _, d := range deps {
		if d.Kind == KindInject && d.Target == t {
			return undefinedDependencyType(t, d)
		}
	}
	t.deps = append(t.deps, deps...)
	return nil
}

// Name returns the diagnostic name.
func (t *Type) Name() string { return t.name }

// String implements fmt.Stringer.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.name
}

// Dependencies returns a copy of the declared descriptors.
func (t *Type) Dependencies() []Dependency { return slices.Clone(t.deps) }

// Components returns a copy of the declared component slots.
func (t *Type) Components() []ComponentSlot { return slices.Clone(t.slots) }

// Constructible reports whether t has a constructor.
func (t *Type) Constructible() bool { return t.ctor != nil }

// IsEntity reports whether t declares component slots.
func (t *Type) IsEntity() bool { return len(t.slots) > 0 }

func (t *Type) slot(component *Type) (ComponentSlot, bool) {
	for _, s := range t.slots {
		if s.Component == component {
			return s, true
		}
	}
	return ComponentSlot{}, false
}

// hasComponents reports whether every type in required has a slot on t.
func (t *Type) hasComponents(required []*Type) bool {
	for _, r := range required {
		if _, ok := t.slot(r); !ok {
			return false
		}
	}
	return true
}

// requiredComponents returns the distinct GetComponent targets of t in declaration order.
func (t *Type) requiredComponents() []*Type {
	var out []*Type
	for _, d := range t.deps {
		if d.Kind == KindGetComponent && d.Component != nil && !slices.Contains(out, d.Component) {
			out = append(out, d.Component)
		}
	}
	return out
}

func (t *Type) declaresParameter() bool {
	return slices.ContainsFunc(t.deps, func(d Dependency) bool { return d.Kind == KindParameter })
}

// DependencyKind discriminates dependency descriptors.
type DependencyKind int

const (
	KindInject       DependencyKind = iota // class mapping of Target under ID
	KindInjectNamed                        // type mapping under ID
	KindParameter                          // value supplied at registration
	KindGetEntity                          // the entity a system is created for
	KindGetComponent                       // a component of that entity
	KindExtension                          // resolved by a registered extension
)

func (k DependencyKind) String() string {
	switch k {
	case KindInject:
		return "inject"
	case KindInjectNamed:
		return "inject_named"
	case KindParameter:
		return "parameter"
	case KindGetEntity:
		return "get_entity"
	case KindGetComponent:
		return "get_component"
	case KindExtension:
		return "extension"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Dependency describes one constructor parameter. Only the fields relevant
// to Kind are set.
type Dependency struct {
	Kind      DependencyKind
	Index     int
	Target    *Type
	ID        ID
	Component *Type
	Extension string
	Payload   any
}

// Inject declares an unqualified class dependency at parameter index.
func Inject(index int, target *Type) Dependency {
	return Dependency{Kind: KindInject, Index: index, Target: target}
}

// InjectID declares a class dependency qualified by id.
func InjectID(index int, target *Type, id ID) Dependency {
	return Dependency{Kind: KindInject, Index: index, Target: target, ID: id}
}

// InjectNamed declares a dependency on the type mapping registered under id.
func InjectNamed(index int, id ID) Dependency {
	return Dependency{Kind: KindInjectNamed, Index: index, ID: id}
}

// Parameter declares a dependency on the registration-time parameter.
func Parameter(index int) Dependency {
	return Dependency{Kind: KindParameter, Index: index}
}

// GetEntity declares a dependency on the entity a system is created for.
func GetEntity(index int) Dependency {
	return Dependency{Kind: KindGetEntity, Index: index}
}

// GetComponent declares a dependency on the entity's component of the given type.
func GetComponent(index int, component *Type) Dependency {
	return Dependency{Kind: KindGetComponent, Index: index, Component: component}
}

// Extension declares a dependency resolved by the extension registered for kind.
func Extension(index int, kind string, payload any) Dependency {
	return Dependency{Kind: KindExtension, Index: index, Extension: kind, Payload: payload}
}

// Entity is implemented by instances of entity classes. A nil pointer
// entity is rejected before EntityType is called.
type Entity interface {
	EntityType() *Type
}

// ComponentAccessor reads a component from an entity instance.
type ComponentAccessor func(e Entity) any

// ComponentSlot declares that an entity class carries a component of type
// Component, read through Accessor.
type ComponentSlot struct {
	Component *Type
	Key       string
	Accessor  ComponentAccessor
}

// Slot builds a ComponentSlot.
func Slot(component *Type, key string, accessor ComponentAccessor) ComponentSlot {
	return ComponentSlot{Component: component, Key: key, Accessor: accessor}
}

// Arg returns args[i] as T, or the zero value when it is nil.
func Arg[T any](args []any, i int) T {
	v, _ := args[i].(T)
	return v
}
