package di

import (
	"fmt"

	"github.com/kbukum/injectkit/errors"
	"github.com/kbukum/injectkit/logger"
)

// Catalog names the types configuration may refer to.
type Catalog struct {
	types map[string]*Type
	order []string
}

// NewCatalog indexes types by name. Two types with the same name are an error.
func NewCatalog(types ...*Type) (*Catalog, error) {
	c := &Catalog{types: make(map[string]*Type, len(types))}
	for _, t := range types {
		if err := c.Add(t); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add indexes t by its name.
func (c *Catalog) Add(t *Type) error {
	if t == nil {
		return errors.InvalidConfig("catalog: nil type")
	}
	if _, exists := c.types[t.name]; exists {
		return errors.InvalidConfig(fmt.Sprintf("catalog: duplicate type name %q", t.name))
	}
	c.types[t.name] = t
	c.order = append(c.order, t.name)
	return nil
}

// Lookup returns the type registered under name.
func (c *Catalog) Lookup(name string) (*Type, bool) {
	t, ok := c.types[name]
	return t, ok
}

// Names returns the type names in registration order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}

// Scopes accepted in bindings.
const (
	ScopeInstance  = "instance"
	ScopeSingleton = "singleton"
	ScopeClass     = "class"
	ScopeMapping   = "mapping"
)

// Binding is a configured class mapping.
type Binding struct {
	Type  string
	ID    ID
	Scope string
}

// TypeBinding is a configured type mapping from ID to Class.
type TypeBinding struct {
	ID      ID
	Class   string
	ClassID ID
	Scope   string
}

// ApplyBindings registers the configured mappings on inj, resolving type
// names through c. An empty class scope means instance; an empty type
// scope means class.
func (inj *Injector) ApplyBindings(c *Catalog, classes []Binding, types []TypeBinding) error {
	for _, b := range classes {
		t, ok := c.Lookup(b.Type)
		if !ok {
			return errors.InvalidConfig(fmt.Sprintf("binding: unknown type %q", b.Type)).
				WithDetail("type", b.Type)
		}
		switch b.Scope {
		case "", ScopeInstance:
			inj.Map(t, b.ID)
		case ScopeSingleton:
			inj.Map(t, b.ID).ToSingleton()
		default:
			return errors.InvalidConfig(fmt.Sprintf("binding: unknown scope %q for %s", b.Scope, b.Type)).
				WithDetail("scope", b.Scope)
		}
	}

	for _, b := range types {
		t, ok := c.Lookup(b.Class)
		if !ok {
			return errors.InvalidConfig(fmt.Sprintf("type binding: unknown class %q", b.Class)).
				WithDetail("class", b.Class)
		}
		switch b.Scope {
		case "", ScopeClass:
			inj.MapType(b.ID).ToClass(t)
		case ScopeSingleton:
			inj.MapType(b.ID).ToSingleton(t)
		case ScopeMapping:
			inj.MapType(b.ID).ToMapping(t, b.ClassID)
		default:
			return errors.InvalidConfig(fmt.Sprintf("type binding: unknown scope %q for %s", b.Scope, b.ID)).
				WithDetail("scope", b.Scope)
		}
	}

	inj.log.Info("bindings applied", logger.Fields(
		"class_bindings", len(classes),
		"type_bindings", len(types),
	))
	return nil
}
