package di

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/injectkit/errors"
	"github.com/kbukum/injectkit/logger"
	"github.com/kbukum/injectkit/observability"
)

// InjectorType is the key every injector maps to itself. A constructor
// depending on it receives the registry that performed the construction.
var InjectorType = NewType("Injector", nil)

// Injector is one registry in a tree. It owns its mappings, singleton
// cache and compiled resolvers; lookups that miss locally go to the parent.
//
// Registration is not synchronized and must finish before resolution
// starts. Resolution is safe for concurrent use. Constructors, providers
// and singleton factories run without any injector lock held, so they may
// resolve through the injector they receive.
type Injector struct {
	mu sync.RWMutex

	id     string
	name   string
	parent *Injector
	opts   options
	log    *logger.Logger

	mappings *mappingRegistry
	scope    *scopeCache

	classResolvers map[*Type]*slotted[Resolver]
	typeResolvers  map[ID]Resolver
	constructors   map[*Type]Resolver
	compiling      []*Type
	building       []scopeKey

	systems     []*systemRegistration
	systemCache map[*Type][]compiledSystem

	extensions *extensionTable
	entities   *entityIndex

	disposed bool
}

// New creates a root injector.
func New(opts ...Option) *Injector {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.GetGlobalLogger()
	}
	inj := newInjector(nil, o, newExtensionTable(), &entityIndex{})
	for _, t := range o.entityTypes {
		if t != nil {
			inj.entities.add(t)
		}
	}
	inj.log.Debug("injector created")
	return inj
}

func newInjector(parent *Injector, o options, ext *extensionTable, entities *entityIndex) *Injector {
	inj := &Injector{
		id:         uuid.NewString(),
		name:       o.name,
		parent:     parent,
		opts:       o,
		extensions: ext,
		entities:   entities,
	}
	var parentMappings *mappingRegistry
	fields := logger.Fields(logger.FieldRegistry, inj.id)
	if parent != nil {
		parentMappings = parent.mappings
		fields[logger.FieldParent] = parent.id
	}
	inj.log = o.log.WithComponent("di").WithFields(fields)
	inj.mappings = newMappingRegistry(parentMappings)
	inj.scope = newScopeCache(inj.id)
	inj.resetCaches()
	inj.Map(InjectorType).ToValue(inj)
	return inj
}

func (inj *Injector) resetCaches() {
	inj.classResolvers = make(map[*Type]*slotted[Resolver])
	inj.typeResolvers = make(map[ID]Resolver)
	inj.constructors = make(map[*Type]Resolver)
	inj.compiling = nil
	inj.building = nil
	inj.systemCache = make(map[*Type][]compiledSystem)
}

// CreateChild returns a new injector whose lookups fall back to inj.
// The child shares the tree's extension resolvers and entity index.
func (inj *Injector) CreateChild() *Injector {
	o := inj.opts
	o.name = inj.name + "/child"
	o.entityTypes = nil
	child := newInjector(inj, o, inj.extensions, inj.entities)
	inj.log.Debug("child injector created", logger.Fields("child", child.id))
	return child
}

// ID returns the unique identifier of this registry.
func (inj *Injector) ID() string { return inj.id }

// Name returns the diagnostic name of this registry.
func (inj *Injector) Name() string { return inj.name }

// Parent returns the parent registry, or nil for a root.
func (inj *Injector) Parent() *Injector { return inj.parent }

// Map registers a class mapping for (t, id) in this registry, replacing any
// local mapping and shadowing ancestors. The mapping is Instance unless the
// returned mapper changes it.
func (inj *Injector) Map(t *Type, id ...ID) *ClassMapper {
	key := firstID(id)
	m := &classMapping{kind: ClassInstance, owner: inj}
	inj.mappings.registerClass(t, key, m)
	inj.log.Debug("class mapping registered", logger.Fields(
		logger.FieldType, t.String(),
		logger.FieldIdentifier, string(key),
	))
	return &ClassMapper{inj: inj, typ: t, mapping: m}
}

// MapType registers a type mapping for id. The mapping is Unset until the
// returned mapper sets a target.
func (inj *Injector) MapType(id ID) *TypeMapper {
	m := &typeMapping{kind: TypeUnset, owner: inj}
	inj.mappings.registerType(id, m)
	inj.log.Debug("type mapping registered", logger.Fields(logger.FieldIdentifier, string(id)))
	return &TypeMapper{inj: inj, mapping: m}
}

// AddExtensionResolver registers the factory for KindExtension dependencies
// of kind. The table is shared by the whole tree.
func (inj *Injector) AddExtensionResolver(kind string, f ExtensionFactory) {
	inj.extensions.add(kind, f)
	inj.log.Debug("extension resolver registered", logger.Fields(logger.FieldKind, kind))
}

// Get resolves the class mapping of (t, id).
func (inj *Injector) Get(t *Type, id ...ID) (any, error) {
	r, err := inj.classResolver(t, firstID(id))
	if err != nil {
		inj.recordError(err, observability.ModeClass)
		return nil, err
	}
	v, err := call(r, nil)
	if err != nil {
		inj.recordError(err, observability.ModeClass)
		return nil, err
	}
	inj.opts.metrics.RecordResolve(context.Background(), observability.ModeClass)
	return v, nil
}

// GetType resolves the type mapping registered under id.
func (inj *Injector) GetType(id ID) (any, error) {
	r, err := inj.typeResolver(id)
	if err != nil {
		inj.recordError(err, observability.ModeType)
		return nil, err
	}
	v, err := call(r, nil)
	if err != nil {
		inj.recordError(err, observability.ModeType)
		return nil, err
	}
	inj.opts.metrics.RecordResolve(context.Background(), observability.ModeType)
	return v, nil
}

// Resolver returns the compiled class-mode resolver for (t, id), for
// callers that resolve the same key repeatedly. Calling it panics with an
// *errors.AppError when a singleton it reaches cannot be created.
func (inj *Injector) Resolver(t *Type, id ...ID) (Resolver, error) {
	return inj.classResolver(t, firstID(id))
}

// call runs r and returns a singleton failure raised inside it as an error.
func call(r Resolver, scope Entity) (v any, err error) {
	defer func() {
		if p := recover(); p != nil {
			appErr, ok := p.(*errors.AppError)
			if !ok {
				panic(p)
			}
			v, err = nil, appErr
		}
	}()
	return r(scope), nil
}

func (inj *Injector) classResolver(t *Type, id ID) (Resolver, error) {
	inj.mu.RLock()
	if inj.disposed {
		inj.mu.RUnlock()
		return nil, disposed(inj.id)
	}
	if s, ok := inj.classResolvers[t]; ok {
		if r, ok := s.get(id); ok {
			inj.mu.RUnlock()
			return r, nil
		}
	}
	inj.mu.RUnlock()

	inj.mu.Lock()
	defer inj.mu.Unlock()
	if inj.disposed {
		return nil, disposed(inj.id)
	}
	return inj.classResolverLocked(t, id)
}

func (inj *Injector) typeResolver(id ID) (Resolver, error) {
	inj.mu.RLock()
	if inj.disposed {
		inj.mu.RUnlock()
		return nil, disposed(inj.id)
	}
	if r, ok := inj.typeResolvers[id]; ok {
		inj.mu.RUnlock()
		return r, nil
	}
	inj.mu.RUnlock()

	inj.mu.Lock()
	defer inj.mu.Unlock()
	if inj.disposed {
		return nil, disposed(inj.id)
	}
	return inj.typeResolverLocked(id)
}

// Dispose clears this registry's mappings, caches and systems. Ancestors
// and their caches are untouched. Every later call on inj fails with
// DISPOSED.
func (inj *Injector) Dispose() {
	inj.mu.Lock()
	defer inj.mu.Unlock()
	if inj.disposed {
		return
	}
	inj.mappings.clear()
	inj.scope.dispose()
	inj.resetCaches()
	inj.systems = nil
	inj.disposed = true
	inj.log.Debug("injector disposed")
}

// Disposed reports whether Dispose has been called.
func (inj *Injector) Disposed() bool { return inj.isDisposed() }

func (inj *Injector) isDisposed() bool {
	inj.mu.RLock()
	defer inj.mu.RUnlock()
	return inj.disposed
}

// CheckHealth reports this registry as down once disposed.
func (inj *Injector) CheckHealth(context.Context) observability.Health {
	h := observability.Health{
		Name:    "injector:" + inj.name,
		Status:  observability.HealthStatusUp,
		Details: map[string]string{"registry": inj.id},
	}
	if inj.isDisposed() {
		h.Status = observability.HealthStatusDown
		h.Message = "disposed"
	}
	return h
}

func (inj *Injector) recordError(err error, mode string) {
	code := string(errors.ErrCodeInternal)
	if appErr, ok := errors.AsAppError(err); ok {
		code = string(appErr.Code)
	}
	inj.opts.metrics.RecordError(context.Background(), code, mode)
}
