package di

import (
	stderrors "errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/injectkit/errors"
)

func TestInjector_InstanceMapping(t *testing.T) {
	inj := newTestInjector()
	inj.Map(SimpleA)

	a1 := mustGet[*simpleA](t, inj, SimpleA)
	a2 := mustGet[*simpleA](t, inj, SimpleA)
	if a1 == a2 {
		t.Error("expected a new instance per resolution")
	}
}

func TestInjector_ValueMapping(t *testing.T) {
	inj := newTestInjector()
	v1, v2 := &simpleA{}, &simpleA{}
	inj.Map(SimpleA).ToValue(v1)
	inj.Map(SimpleA, "id").ToValue(v2)

	if got := mustGet[*simpleA](t, inj, SimpleA); got != v1 {
		t.Error("expected unqualified value")
	}
	if got := mustGet[*simpleA](t, inj, SimpleA, "id"); got != v2 {
		t.Error("expected qualified value")
	}
}

func TestInjector_SingletonMapping(t *testing.T) {
	inj := newTestInjector()
	inj.Map(SimpleA).ToSingleton()
	inj.Map(SimpleA, "id").ToSingleton()

	i1 := mustGet[*simpleA](t, inj, SimpleA)
	i2 := mustGet[*simpleA](t, inj, SimpleA)
	i3 := mustGet[*simpleA](t, inj, SimpleA, "id")

	if i1 != i2 {
		t.Error("expected the same singleton")
	}
	if i1 == i3 {
		t.Error("expected qualified singleton to be independent")
	}
}

func TestInjector_MapsItself(t *testing.T) {
	inj := newTestInjector()
	if got := mustGet[*Injector](t, inj, InjectorType); got != inj {
		t.Error("expected injector to resolve to itself")
	}

	child := inj.CreateChild()
	if got := mustGet[*Injector](t, child, InjectorType); got != child {
		t.Error("expected child to resolve to itself")
	}
}

func TestInjector_MultipleClasses(t *testing.T) {
	inj := newTestInjector()
	a := &simpleA{}
	inj.Map(SimpleA).ToValue(a)
	inj.Map(SimpleB).ToSingleton()
	inj.Map(SimpleC).ToSingleton()

	b := mustGet[*simpleB](t, inj, SimpleB)
	c := mustGet[*simpleC](t, inj, SimpleC)

	if b.a != a {
		t.Error("expected b.a to be the mapped value")
	}
	if c.a != a || c.b != b {
		t.Error("expected c to receive the mapped value and the singleton")
	}
}

func TestInjector_MapByID(t *testing.T) {
	inj := newTestInjector()
	a := &simpleA{}
	inj.Map(SimpleA, "one").ToValue(a)
	inj.Map(SimpleA, "two").ToSingleton()
	inj.Map(SimpleID).ToSingleton()

	sid := mustGet[*simpleID](t, inj, SimpleID)
	if sid.a1 != a {
		t.Error("expected a1 from id 'one'")
	}
	if sid.a2 != mustGet[*simpleA](t, inj, SimpleA, "two") {
		t.Error("expected a2 to be the 'two' singleton")
	}
}

func TestInjector_SymbolIDs(t *testing.T) {
	inj := newTestInjector()
	a1, a2 := &simpleA{}, &simpleA{}
	inj.Map(SimpleA, symbol1).ToValue(a1)
	inj.Map(SimpleA, symbol2).ToValue(a2)
	inj.Map(SimpleSymbol)

	ss := mustGet[*simpleID](t, inj, SimpleSymbol)
	if ss.a1 != a1 || ss.a2 != a2 {
		t.Error("expected values by symbol")
	}
	if NewSymbol("symbol1") == symbol1 {
		t.Error("expected symbols with equal descriptions to differ")
	}
}

func TestInjector_ProviderMapping(t *testing.T) {
	inj := newTestInjector()
	count := 0
	inj.Map(SimpleA).ToProvider(func() any {
		count++
		return &simpleA{}
	})
	inj.Map(SimpleB)

	b1 := mustGet[*simpleB](t, inj, SimpleB)
	b2 := mustGet[*simpleB](t, inj, SimpleB)
	a := mustGet[*simpleA](t, inj, SimpleA)

	if b1.a == nil || b2.a == nil || a == nil {
		t.Fatal("expected provider results to be injected")
	}
	if b1.a == b2.a || b1.a == a {
		t.Error("expected a fresh instance per resolution")
	}
	if count != 3 {
		t.Errorf("expected provider called 3 times, got %d", count)
	}
}

func TestInjector_TypeMappings(t *testing.T) {
	t.Run("value", func(t *testing.T) {
		inj := newTestInjector()
		st := &simpleTypeImpl{value: "test"}
		inj.MapType(symbol1).ToValue(st)
		inj.Map(SimpleTypeUser)

		if got := mustGetType[*simpleTypeImpl](t, inj, symbol1); got != st {
			t.Error("expected mapped value")
		}
		if got := mustGet[*simpleTypeUser](t, inj, SimpleTypeUser); got.simpleType != st {
			t.Error("expected injected value")
		}
	})

	t.Run("provider", func(t *testing.T) {
		inj := newTestInjector()
		count := 0
		inj.MapType(symbol1).ToProvider(func() any {
			v := &simpleTypeImpl{value: "testvalue" + strconv.Itoa(count)}
			count++
			return v
		})
		inj.Map(SimpleTypeUser)

		if got := mustGetType[*simpleTypeImpl](t, inj, symbol1); got.value != "testvalue0" {
			t.Errorf("expected testvalue0, got %q", got.value)
		}
		user := mustGet[*simpleTypeUser](t, inj, SimpleTypeUser)
		if got, ok := user.simpleType.(*simpleTypeImpl); !ok || got.value != "testvalue1" {
			t.Errorf("expected injected testvalue1, got %v", user.simpleType)
		}
	})

	t.Run("class", func(t *testing.T) {
		inj := newTestInjector()
		inj.MapType(symbol1).ToClass(SimpleTypeImpl)
		inj.Map(SimpleTypeUser)

		i1 := mustGetType[*simpleTypeImpl](t, inj, symbol1)
		i2 := mustGet[*simpleTypeUser](t, inj, SimpleTypeUser).simpleType
		i3 := mustGet[*simpleTypeUser](t, inj, SimpleTypeUser).simpleType
		if i1 == i2 || i2 == i3 {
			t.Error("expected a new instance per resolution")
		}
	})

	t.Run("singleton differs from class", func(t *testing.T) {
		inj := newTestInjector()
		inj.Map(SimpleB).ToSingleton()
		inj.Map(SimpleA).ToSingleton()
		inj.MapType(symbol1).ToClass(SimpleTypeImplB)
		inj.MapType("test").ToSingleton(SimpleTypeImplB)

		i1 := mustGetType[*simpleTypeImplB](t, inj, symbol1)
		i2 := mustGetType[*simpleTypeImplB](t, inj, "test")
		i3 := mustGetType[*simpleTypeImplB](t, inj, "test")
		if i1 == i2 {
			t.Error("expected class and singleton instances to differ")
		}
		if i2 != i3 {
			t.Error("expected the same type singleton")
		}
		if i1.b != i2.b {
			t.Error("expected both to share the SimpleB singleton")
		}
	})

	t.Run("mapping honors class lifetime", func(t *testing.T) {
		inj := newTestInjector()
		inj.Map(SimpleA, "shared").ToSingleton()
		inj.MapType("alias").ToMapping(SimpleA, "shared")

		if mustGetType[*simpleA](t, inj, "alias") != mustGet[*simpleA](t, inj, SimpleA, "shared") {
			t.Error("expected alias to resolve the class singleton")
		}
	})

	t.Run("nested class mappings are fresh", func(t *testing.T) {
		inj := newTestInjector()
		typeA := NewType("MultiTypeA", func([]any) any { return &simpleA{} })
		typeB := NewType("MultiTypeB",
			func(args []any) any { return &simpleB{a: Arg[*simpleA](args, 0)} },
			InjectNamed(0, "typeA"),
		)
		inj.MapType("typeA").ToClass(typeA)
		inj.MapType("myTest").ToClass(typeB)

		b1 := mustGetType[*simpleB](t, inj, "myTest")
		b2 := mustGetType[*simpleB](t, inj, "myTest")
		if b1.a == nil || b1.a == b2.a {
			t.Error("expected distinct nested instances")
		}
	})
}

func TestInjector_MissingMappings(t *testing.T) {
	tests := []struct {
		name string
		run  func(inj *Injector) error
		code errors.ErrorCode
		msg  string
	}{
		{
			name: "unmapped type",
			run:  func(inj *Injector) error { _, err := inj.Get(SimpleA); return err },
			code: errors.ErrCodeMappingNotFound,
			msg:  "no mapping for type SimpleA",
		},
		{
			name: "unmapped id",
			run: func(inj *Injector) error {
				inj.Map(SimpleA)
				_, err := inj.Get(SimpleA, "id")
				return err
			},
			code: errors.ErrCodeMappingNotFound,
			msg:  "no mapping for type SimpleA with id 'id'",
		},
		{
			name: "unmapped type id",
			run:  func(inj *Injector) error { _, err := inj.GetType("test"); return err },
			code: errors.ErrCodeTypeMappingNotFound,
			msg:  "no type mapping for id 'test'",
		},
		{
			name: "unset type mapping",
			run: func(inj *Injector) error {
				inj.MapType("test")
				_, err := inj.GetType("test")
				return err
			},
			code: errors.ErrCodeTypeMappingUnset,
			msg:  "has no target",
		},
		{
			name: "missing transitive dependency",
			run: func(inj *Injector) error {
				inj.Map(SimpleB)
				_, err := inj.Get(SimpleB)
				return err
			},
			code: errors.ErrCodeMappingNotFound,
			msg:  "SimpleA",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run(newTestInjector())
			expectCode(t, err, tt.code, tt.msg)
		})
	}
}

func TestInjector_SentinelMatching(t *testing.T) {
	inj := newTestInjector()
	_, err := inj.Get(SimpleA)
	if !stderrors.Is(err, ErrMappingNotFound) {
		t.Errorf("expected errors.Is to match ErrMappingNotFound, got %v", err)
	}
	if stderrors.Is(err, ErrTypeMappingNotFound) {
		t.Error("expected no match for a different code")
	}
}

func TestInjector_PrimitiveKeys(t *testing.T) {
	boolType := NewType("bool", nil)
	stringType := NewType("string", nil)
	intType := NewType("int", nil)

	type primitives struct {
		b bool
		s string
		n int
	}
	prims := NewType("Primitives",
		func(args []any) any {
			return &primitives{b: Arg[bool](args, 0), s: Arg[string](args, 1), n: Arg[int](args, 2)}
		},
		Inject(0, boolType), Inject(1, stringType), Inject(2, intType),
	)

	inj := newTestInjector()
	inj.Map(boolType).ToValue(true)
	inj.Map(stringType).ToValue("string")
	inj.Map(intType).ToValue(7)
	inj.Map(prims)

	p := mustGet[*primitives](t, inj, prims)
	if !p.b || p.s != "string" || p.n != 7 {
		t.Errorf("unexpected primitives %+v", p)
	}
}

func TestInjector_NotConstructible(t *testing.T) {
	inj := newTestInjector()
	key := NewType("KeyOnly", nil)
	inj.Map(key)

	_, err := inj.Get(key)
	expectCode(t, err, errors.ErrCodeNotConstructible, "KeyOnly")
}

func TestInjector_Dispose(t *testing.T) {
	inj := newTestInjector()
	inj.Map(SimpleA)
	child := inj.CreateChild()

	if _, err := child.Get(SimpleA); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	child.Dispose()
	child.Dispose()

	if _, err := inj.Get(SimpleA); err != nil {
		t.Errorf("expected parent to be untouched, got %v", err)
	}
	_, err := child.Get(SimpleA)
	expectCode(t, err, errors.ErrCodeDisposed, "disposed")

	_, err = child.GetType("x")
	expectCode(t, err, errors.ErrCodeDisposed, "")

	if !child.Disposed() || inj.Disposed() {
		t.Error("unexpected disposed state")
	}
}

func TestInjector_ConcurrentResolution(t *testing.T) {
	inj := newTestInjector()
	inj.Map(SimpleA).ToSingleton()
	inj.Map(SimpleB)
	inj.Map(SimpleC)
	child := inj.CreateChild()

	var wg sync.WaitGroup
	results := make([]*simpleC, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			target := inj
			if i%2 == 1 {
				target = child
			}
			c, err := Resolve[*simpleC](target, SimpleC)
			if err != nil {
				t.Errorf("resolve: %v", err)
				return
			}
			results[i] = c
		}(i)
	}
	wg.Wait()

	for i, c := range results {
		if c == nil {
			continue
		}
		if c.a != results[0].a {
			t.Errorf("result %d: expected shared singleton", i)
		}
	}
}

func TestResolveHelpers(t *testing.T) {
	inj := newTestInjector()
	inj.Map(SimpleA)

	if _, err := Resolve[*simpleB](inj, SimpleA); err == nil {
		t.Error("expected type mismatch error")
	}
	if _, ok := TryResolve[*simpleA](inj, SimpleB); ok {
		t.Error("expected TryResolve to report a missing mapping")
	}
	if _, ok := TryResolve[*simpleA](inj, SimpleA); !ok {
		t.Error("expected TryResolve to succeed")
	}

	defer func() {
		if recover() == nil {
			t.Error("expected MustResolve to panic")
		}
	}()
	MustResolve[*simpleA](inj, SimpleB)
}

// resolveWithin runs fn and fails the test if it does not return in time.
func resolveWithin(t *testing.T, fn func() (any, error)) any {
	t.Helper()
	type result struct {
		v   any
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{v, err}
	}()
	select {
	case r := <-ch:
		if r.err != nil {
			t.Fatalf("unexpected error: %v", r.err)
		}
		return r.v
	case <-time.After(2 * time.Second):
		t.Fatal("resolution did not return")
	}
	return nil
}

func TestInjector_SingletonConstructorResolvesThroughInjector(t *testing.T) {
	holder := NewType("Holder", func(args []any) any {
		a, err := args[0].(*Injector).Get(SimpleA)
		if err != nil {
			return err
		}
		return &holderB{a: a}
	}, Inject(0, InjectorType))

	t.Run("class singleton", func(t *testing.T) {
		inj := newTestInjector()
		inj.Map(SimpleA).ToSingleton()
		inj.Map(holder).ToSingleton()

		v := resolveWithin(t, func() (any, error) { return inj.Get(holder) })
		h, ok := v.(*holderB)
		if !ok {
			t.Fatalf("expected *holderB, got %v", v)
		}
		if h.a != mustGet[*simpleA](t, inj, SimpleA) {
			t.Error("expected the singleton SimpleA")
		}
		if mustGet[*holderB](t, inj, holder) != h {
			t.Error("expected Holder to be cached")
		}
	})

	t.Run("type singleton owned by parent", func(t *testing.T) {
		inj := newTestInjector()
		child := inj.CreateChild()
		inj.Map(SimpleA).ToSingleton()
		inj.MapType("holder").ToSingleton(holder)

		v := resolveWithin(t, func() (any, error) { return child.GetType("holder") })
		if _, ok := v.(*holderB); !ok {
			t.Fatalf("expected *holderB, got %v", v)
		}
		if mustGetType[*holderB](t, inj, "holder") != v {
			t.Error("expected one instance across the tree")
		}
	})
}

func TestInjector_SingletonBuiltOnFirstCall(t *testing.T) {
	count := 0
	lazy := NewType("Lazy", func([]any) any {
		count++
		return &holderA{}
	})
	user := NewType("LazyUser", func(args []any) any { return &holderB{a: args[0]} }, Inject(0, lazy))

	inj := newTestInjector()
	inj.Map(lazy).ToSingleton()
	inj.Map(user)

	r, err := inj.Resolver(user)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatalf("expected no construction while compiling, got %d", count)
	}
	u1, u2 := r(nil).(*holderB), r(nil).(*holderB)
	if count != 1 {
		t.Errorf("expected one construction, got %d", count)
	}
	if u1 == u2 || u1.a != u2.a {
		t.Error("expected fresh users sharing the singleton")
	}
}

func TestInjector_SingletonOfDisposedOwner(t *testing.T) {
	inj := newTestInjector()
	inj.Map(SimpleA).ToSingleton()
	child := inj.CreateChild()
	mustGet[*simpleA](t, child, SimpleA)

	inj.Dispose()

	_, err := child.Get(SimpleA)
	expectCode(t, err, errors.ErrCodeDisposed, inj.ID())
}
