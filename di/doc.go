// Package di is a hierarchical object-graph resolver.
//
// An Injector holds production rules for types (class mappings) and for
// identifiers (type mappings). Resolving a key compiles, once per
// registry, one resolver per declared dependency and then invokes the
// constructor. Children fall back to their parent for anything they do not
// map themselves; singletons live in the registry that registered them and
// are built on first use. Constructors and providers run without any
// injector lock held, so a constructor may resolve through the injector it
// receives as InjectorType.
//
// Types declare their dependencies explicitly:
//
//	var Engine = di.NewType("Engine", func([]any) any { return &engine{} })
//	var Car = di.NewType("Car",
//	    func(args []any) any { return &car{engine: di.Arg[*engine](args, 0)} },
//	    di.Inject(0, Engine),
//	)
//
//	inj := di.New()
//	inj.Map(Engine).ToSingleton()
//	inj.Map(Car)
//	c := di.MustResolve[*car](inj, Car)
//
// # Systems
//
// Entity classes carry component slots. A system type registered with
// RegisterSystem is instantiated by CreateSystems for every entity whose
// class has all the components the system asks for with GetComponent.
//
// # Errors
//
// Every failure is an *errors.AppError. Use errors.Is with the exported
// sentinels (ErrMappingNotFound, ErrCyclicDependency, ...) or
// errors.HasCode.
package di
