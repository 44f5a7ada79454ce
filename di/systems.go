package di

import (
	"context"
	"reflect"
	"slices"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/injectkit/errors"
	"github.com/kbukum/injectkit/logger"
	"github.com/kbukum/injectkit/observability"
)

// entityIndex is the tree-wide table of known entity classes, owned by
// the root.
type entityIndex struct {
	mu      sync.RWMutex
	classes []*Type
}

// add reports whether t was new.
func (x *entityIndex) add(t *Type) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	if slices.Contains(x.classes, t) {
		return false
	}
	x.classes = append(x.classes, t)
	return true
}

func (x *entityIndex) matching(required []*Type) []*Type {
	x.mu.RLock()
	defer x.mu.RUnlock()
	var out []*Type
	for _, c := range x.classes {
		if c.hasComponents(required) {
			out = append(out, c)
		}
	}
	return out
}

func (x *entityIndex) all() []*Type {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return slices.Clone(x.classes)
}

type systemRegistration struct {
	typ      *Type
	param    any
	hasParam bool
	required []*Type
}

type compiledSystem struct {
	typ       *Type
	construct Resolver
}

// SystemOption configures RegisterSystem.
type SystemOption func(*systemRegistration)

// WithSystemParameter binds v to the system's Parameter dependency.
func WithSystemParameter(v any) SystemOption {
	return func(r *systemRegistration) { r.param, r.hasParam = v, true }
}

// RegisterEntity adds entity classes to the tree-wide index. Systems match
// entity classes by their component slots whether or not they were
// registered; the index only feeds diagnostics.
func (inj *Injector) RegisterEntity(types ...*Type) error {
	for _, t := range types {
		if t == nil {
			return errors.New(errors.ErrCodeUndefinedDependencyType, "entity type is nil")
		}
		if inj.entities.add(t) {
			inj.log.Debug("entity class registered", logger.Fields(
				logger.FieldEntity, t.name,
				"components", len(t.slots),
			))
		}
	}
	return nil
}

// RegisterSystem registers a system type. Its required component set is
// the set of its GetComponent targets; it is created for every entity
// whose class has a slot for each of them. The descriptors are checked now
// and compiled on the first CreateSystems for a matching entity class.
func (inj *Injector) RegisterSystem(t *Type, opts ...SystemOption) error {
	if inj.isDisposed() {
		return disposed(inj.id)
	}
	if t == nil {
		return errors.New(errors.ErrCodeUndefinedDependencyType, "system type is nil")
	}
	if t.ctor == nil {
		return notConstructible(t)
	}
	if err := checkIndices(t); err != nil {
		return err
	}
	for _, d := range t.deps {
		if d.Kind == KindGetComponent && d.Component == nil {
			return undefinedDependencyType(t, d)
		}
	}

	reg := &systemRegistration{typ: t, required: t.requiredComponents()}
	for _, opt := range opts {
		opt(reg)
	}
	if declared := t.declaresParameter(); declared != reg.hasParam {
		return parameterMismatch(t, declared)
	}

	inj.mu.Lock()
	inj.systems = append(inj.systems, reg)
	clear(inj.systemCache)
	inj.mu.Unlock()

	matched := inj.entities.matching(reg.required)
	switch {
	case len(matched) == 0 && inj.opts.warnUnmatched:
		inj.log.Warn("system matches no registered entity class", logger.Fields(
			logger.FieldSystem, t.name,
			"required", typeNames(reg.required),
		))
	default:
		inj.log.Debug("system registered", logger.Fields(
			logger.FieldSystem, t.name,
			"entities", typeNames(matched),
		))
	}
	return nil
}

// CreateSystems returns new instances of every system matching e's entity
// class: systems registered on ancestors first, then in registration order.
// An entity class no system matches yields an empty list.
func (inj *Injector) CreateSystems(e Entity) (out []any, err error) {
	class := entityTypeOf(e)
	if class == nil {
		return nil, errors.New(errors.ErrCodeScopeViolation, "entity has no entity type")
	}

	ctx := context.Background()
	if inj.opts.tracer != nil {
		var span trace.Span
		ctx, span = observability.StartSystemsSpan(ctx, inj.opts.tracer, class.name, inj.id)
		defer func() { observability.EndSpan(span, err) }()
	}

	list, err := inj.systemsFor(class)
	if err != nil {
		inj.recordError(err, observability.ModeSystem)
		return nil, err
	}

	out = make([]any, len(list))
	for i, s := range list {
		if out[i], err = call(s.construct, e); err != nil {
			inj.recordError(err, observability.ModeSystem)
			return nil, err
		}
	}
	inj.opts.metrics.RecordSystems(ctx, class.name, len(out))
	return out, nil
}

// entityTypeOf returns nil for a nil entity, including a typed nil pointer,
// without calling EntityType on it.
func entityTypeOf(e Entity) *Type {
	if e == nil {
		return nil
	}
	if v := reflect.ValueOf(e); v.Kind() == reflect.Pointer && v.IsNil() {
		return nil
	}
	return e.EntityType()
}

// SystemsFor returns the system types CreateSystems would instantiate for
// entities of class.
func (inj *Injector) SystemsFor(class *Type) ([]*Type, error) {
	list, err := inj.systemsFor(class)
	if err != nil {
		return nil, err
	}
	out := make([]*Type, len(list))
	for i, s := range list {
		out[i] = s.typ
	}
	return out, nil
}

func (inj *Injector) systemsFor(class *Type) ([]compiledSystem, error) {
	inj.mu.RLock()
	if inj.disposed {
		inj.mu.RUnlock()
		return nil, disposed(inj.id)
	}
	if list, ok := inj.systemCache[class]; ok {
		inj.mu.RUnlock()
		return list, nil
	}
	inj.mu.RUnlock()

	inj.entities.add(class)

	inj.mu.Lock()
	defer inj.mu.Unlock()
	if inj.disposed {
		return nil, disposed(inj.id)
	}
	if list, ok := inj.systemCache[class]; ok {
		return list, nil
	}

	var list []compiledSystem
	for _, reg := range inj.registeredSystems() {
		if !class.hasComponents(reg.required) {
			continue
		}
		resolvers, err := inj.traceCompile(reg.typ, func() ([]Resolver, error) {
			return inj.compileLocked(ResolverContext{
				Injector: inj,
				Type:     reg.typ,
				Kind:     ContextEntity,
				Entity:   class,
				param:    reg.param,
				hasParam: reg.hasParam,
			})
		}, observability.ModeSystem)
		if err != nil {
			return nil, err
		}
		list = append(list, compiledSystem{typ: reg.typ, construct: constructResolver(reg.typ.ctor, resolvers)})
	}
	inj.systemCache[class] = list
	return list, nil
}

// registeredSystems returns the registrations visible from inj, root first.
func (inj *Injector) registeredSystems() []*systemRegistration {
	var chain []*Injector
	for r := inj; r != nil; r = r.parent {
		chain = append(chain, r)
	}
	var out []*systemRegistration
	for i := len(chain) - 1; i >= 0; i-- {
		out = append(out, chain[i].systems...)
	}
	return out
}

func typeNames(types []*Type) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
