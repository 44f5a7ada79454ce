package di

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/injectkit/logger"
	"github.com/kbukum/injectkit/observability"
)

// Resolver produces the value for one dependency. scope is the entity a
// system is being created for, or nil in class scope.
type Resolver func(scope Entity) any

// ContextKind tells a resolver compilation whether an entity is in scope.
type ContextKind int

const (
	ContextClass ContextKind = iota
	ContextEntity
)

func (k ContextKind) String() string {
	if k == ContextEntity {
		return "entity"
	}
	return "class"
}

// ResolverContext describes the compilation a dependency is part of. It is
// handed to extension factories.
type ResolverContext struct {
	// Injector is the registry performing the compilation.
	Injector *Injector
	// Type is the type whose dependencies are being compiled.
	Type *Type
	// Kind is ContextEntity while compiling a system.
	Kind ContextKind
	// Entity is the entity class in entity scope.
	Entity *Type

	param    any
	hasParam bool
}

// Parameter returns the registration-time parameter of the compiled type.
func (c ResolverContext) Parameter() (any, bool) { return c.param, c.hasParam }

// Resolve compiles a class-mode resolver for (t, id) through the compiling
// registry. Extension factories run while the registry is locked and must
// use this instead of Injector.Get.
func (c ResolverContext) Resolve(t *Type, id ...ID) (Resolver, error) {
	return c.Injector.classResolverLocked(t, firstID(id))
}

// ResolveNamed is Resolve for type mappings.
func (c ResolverContext) ResolveNamed(id ID) (Resolver, error) {
	return c.Injector.typeResolverLocked(id)
}

// ExtensionFactory compiles a resolver for a KindExtension dependency.
type ExtensionFactory func(ctx ResolverContext, dep Dependency) (Resolver, error)

// checkIndices requires the descriptors of t to cover 0..n-1 exactly once.
func checkIndices(t *Type) error {
	seen := make([]bool, len(t.deps))
	for _, d := range t.deps {
		if d.Index < 0 || d.Index >= len(t.deps) {
			return invalidDescriptor(t, fmt.Sprintf("parameter index %d out of range [0,%d)", d.Index, len(t.deps)))
		}
		if seen[d.Index] {
			return invalidDescriptor(t, fmt.Sprintf("parameter index %d declared twice", d.Index))
		}
		seen[d.Index] = true
	}
	return nil
}

// compileLocked builds one resolver per dependency of ctx.Type, placed at
// the dependency's parameter index. The first failure aborts compilation.
func (inj *Injector) compileLocked(ctx ResolverContext) ([]Resolver, error) {
	if err := checkIndices(ctx.Type); err != nil {
		return nil, err
	}
	if declared := ctx.Type.declaresParameter(); declared != ctx.hasParam {
		return nil, parameterMismatch(ctx.Type, declared)
	}

	out := make([]Resolver, len(ctx.Type.deps))
	for _, d := range ctx.Type.deps {
		r, err := inj.dependencyResolverLocked(ctx, d)
		if err != nil {
			return nil, err
		}
		out[d.Index] = r
	}
	return out, nil
}

func (inj *Injector) dependencyResolverLocked(ctx ResolverContext, d Dependency) (Resolver, error) {
	switch d.Kind {
	case KindInject:
		if d.Target == nil || d.Target == ctx.Type {
			return nil, undefinedDependencyType(ctx.Type, d)
		}
		return inj.classResolverLocked(d.Target, d.ID)

	case KindInjectNamed:
		return inj.typeResolverLocked(d.ID)

	case KindParameter:
		v := ctx.param
		return func(Entity) any { return v }, nil

	case KindGetEntity:
		if ctx.Kind != ContextEntity {
			return nil, scopeViolation(ctx.Type, "Entity")
		}
		return func(e Entity) any { return e }, nil

	case KindGetComponent:
		if d.Component == nil {
			return nil, undefinedDependencyType(ctx.Type, d)
		}
		if ctx.Kind != ContextEntity {
			return nil, scopeViolation(ctx.Type, d.Component.String())
		}
		slot, ok := ctx.Entity.slot(d.Component)
		if !ok {
			return nil, scopeViolation(ctx.Type, d.Component.String()).
				WithDetail("entity", ctx.Entity.String())
		}
		accessor := slot.Accessor
		return func(e Entity) any { return accessor(e) }, nil

	case KindExtension:
		factory, ok := inj.extensions.lookup(d.Extension)
		if !ok {
			return nil, unknownExtensionKind(ctx.Type, d.Extension)
		}
		return factory(ctx, d)

	default:
		return nil, invalidDescriptor(ctx.Type, fmt.Sprintf("unknown dependency kind %s", d.Kind))
	}
}

// classResolverLocked returns the memoized class-mode resolver for (t, id),
// compiling it on first use.
func (inj *Injector) classResolverLocked(t *Type, id ID) (Resolver, error) {
	if s, ok := inj.classResolvers[t]; ok {
		if r, ok := s.get(id); ok {
			return r, nil
		}
	}

	m, ok := inj.mappings.lookupClass(t, id)
	if !ok {
		return nil, mappingNotFound(t, id)
	}

	var r Resolver
	switch m.kind {
	case ClassInstance:
		var err error
		if r, err = inj.instanceResolverLocked(t); err != nil {
			return nil, err
		}
	case ClassValue:
		v := m.value
		r = func(Entity) any { return v }
	case ClassSingleton:
		var err error
		if r, err = inj.singletonResolverLocked(m.owner, scopeKey{typ: t, id: id}, t); err != nil {
			return nil, err
		}
	case ClassProvider:
		p := m.provider
		r = func(Entity) any { return p() }
	default:
		return nil, mappingNotFound(t, id)
	}

	s, ok := inj.classResolvers[t]
	if !ok {
		s = &slotted[Resolver]{}
		inj.classResolvers[t] = s
	}
	s.set(id, r)
	return r, nil
}

// typeResolverLocked returns the memoized type-mode resolver for id.
func (inj *Injector) typeResolverLocked(id ID) (Resolver, error) {
	if r, ok := inj.typeResolvers[id]; ok {
		return r, nil
	}

	m, ok := inj.mappings.lookupType(id)
	if !ok {
		return nil, typeMappingNotFound(id)
	}

	var r Resolver
	switch m.kind {
	case TypeUnset:
		return nil, typeMappingUnset(id)
	case TypeClass:
		if m.target == nil {
			return nil, typeMappingUnset(id)
		}
		var err error
		if r, err = inj.instanceResolverLocked(m.target); err != nil {
			return nil, err
		}
	case TypeAlias:
		if m.target == nil {
			return nil, typeMappingUnset(id)
		}
		var err error
		if r, err = inj.classResolverLocked(m.target, m.targetID); err != nil {
			return nil, err
		}
	case TypeSingleton:
		if m.target == nil {
			return nil, typeMappingUnset(id)
		}
		var err error
		if r, err = inj.singletonResolverLocked(m.owner, scopeKey{id: id, named: true}, m.target); err != nil {
			return nil, err
		}
	case TypeValue:
		v := m.value
		r = func(Entity) any { return v }
	case TypeProvider:
		p := m.provider
		r = func(Entity) any { return p() }
	default:
		return nil, typeMappingUnset(id)
	}

	inj.typeResolvers[id] = r
	return r, nil
}

// instanceResolverLocked returns a resolver constructing a new t per call
// with its dependencies resolved in this registry.
func (inj *Injector) instanceResolverLocked(t *Type) (Resolver, error) {
	if r, ok := inj.constructors[t]; ok {
		return r, nil
	}
	if t.ctor == nil {
		return nil, notConstructible(t)
	}
	if i := slices.Index(inj.compiling, t); i >= 0 {
		return nil, cyclicDependency(append(slices.Clone(inj.compiling[i:]), t))
	}
	inj.compiling = append(inj.compiling, t)
	defer func() { inj.compiling = inj.compiling[:len(inj.compiling)-1] }()

	param, hasParam := inj.mappings.lookupParam(t)
	resolvers, err := inj.traceCompile(t, func() ([]Resolver, error) {
		return inj.compileLocked(ResolverContext{
			Injector: inj,
			Type:     t,
			Kind:     ContextClass,
			param:    param,
			hasParam: hasParam,
		})
	}, observability.ModeClass)
	if err != nil {
		return nil, err
	}

	r := constructResolver(t.ctor, resolvers)
	inj.constructors[t] = r
	return r, nil
}

// traceCompile runs compile with the injector's tracing, metrics and debug
// logging around it.
func (inj *Injector) traceCompile(t *Type, compile func() ([]Resolver, error), mode string) ([]Resolver, error) {
	ctx := context.Background()
	var span trace.Span
	if inj.opts.tracer != nil {
		_, span = observability.StartCompileSpan(ctx, inj.opts.tracer, t.name, inj.id)
	}
	start := time.Now()

	resolvers, err := compile()

	if span != nil {
		observability.EndSpan(span, err)
	}
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)
	inj.opts.metrics.RecordCompile(ctx, t.name, mode, elapsed)
	inj.log.Debug("compiled resolvers", logger.Fields(
		logger.FieldType, t.name,
		logger.FieldKind, mode,
		"dependencies", len(resolvers),
		logger.FieldDuration, elapsed.Milliseconds(),
	))
	return resolvers, nil
}

// constructResolver calls ctor with a fresh argument slice per call so a
// constructor may keep it.
func constructResolver(ctor Constructor, resolvers []Resolver) Resolver {
	if len(resolvers) == 0 {
		return func(Entity) any { return ctor(nil) }
	}
	return func(scope Entity) any {
		args := make([]any, len(resolvers))
		for i, r := range resolvers {
			args[i] = r(scope)
		}
		return ctor(args)
	}
}

// singletonResolverLocked returns the resolver for the singleton slot key
// of owner, which is inj or one of its ancestors. The instance is built
// with owner's resolvers on the first call. Only inj's lock is held; the
// owner's lock is taken when it is an ancestor.
func (inj *Injector) singletonResolverLocked(owner *Injector, key scopeKey, t *Type) (Resolver, error) {
	if owner != inj {
		owner.mu.Lock()
		defer owner.mu.Unlock()
		if owner.disposed {
			return nil, disposed(owner.id)
		}
		if key.named {
			return owner.typeResolverLocked(key.id)
		}
		return owner.classResolverLocked(t, key.id)
	}

	if slices.Contains(inj.building, key) {
		return nil, cyclicConstruction(t, key.id)
	}
	inj.building = append(inj.building, key)
	defer func() { inj.building = inj.building[:len(inj.building)-1] }()

	construct, err := inj.instanceResolverLocked(t)
	if err != nil {
		return nil, err
	}
	return func(Entity) any {
		v, created, err := inj.scope.getOrCreate(key, func() any { return construct(nil) })
		if err != nil {
			panic(err)
		}
		if created {
			inj.recordSingleton(t, key.id)
		}
		return v
	}, nil
}

func (inj *Injector) recordSingleton(t *Type, id ID) {
	inj.opts.metrics.RecordSingleton(context.Background(), t.name)
	inj.log.Debug("singleton created", logger.Fields(
		logger.FieldType, t.name,
		logger.FieldIdentifier, string(id),
	))
}
