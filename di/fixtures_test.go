package di

import (
	"strings"
	"testing"

	"github.com/kbukum/injectkit/errors"
	"github.com/kbukum/injectkit/logger"
)

type simpleA struct{ _ byte }

type simpleB struct{ a *simpleA }

type simpleC struct {
	a *simpleA
	b *simpleB
}

type simpleID struct{ a1, a2 *simpleA }

type simpleTypeImpl struct{ value string }

type simpleTypeImplB struct {
	a *simpleA
	b *simpleB
}

type simpleTypeUser struct{ simpleType any }

var (
	symbol1 = NewSymbol("symbol1")
	symbol2 = NewSymbol("symbol2")

	SimpleA = NewType("SimpleA", func([]any) any { return &simpleA{} })
	SimpleB = NewType("SimpleB",
		func(args []any) any { return &simpleB{a: Arg[*simpleA](args, 0)} },
		Inject(0, SimpleA),
	)
	SimpleC = NewType("SimpleC",
		func(args []any) any { return &simpleC{a: Arg[*simpleA](args, 0), b: Arg[*simpleB](args, 1)} },
		Inject(0, SimpleA),
		Inject(1, SimpleB),
	)
	SimpleID = NewType("SimpleId",
		func(args []any) any { return &simpleID{a1: Arg[*simpleA](args, 0), a2: Arg[*simpleA](args, 1)} },
		InjectID(0, SimpleA, "one"),
		InjectID(1, SimpleA, "two"),
	)
	SimpleSymbol = NewType("SimpleSymbol",
		func(args []any) any { return &simpleID{a1: Arg[*simpleA](args, 0), a2: Arg[*simpleA](args, 1)} },
		InjectID(0, SimpleA, symbol1),
		InjectID(1, SimpleA, symbol2),
	)
	SimpleTypeImpl  = NewType("SimpleTypeImpl", func([]any) any { return &simpleTypeImpl{value: "impl"} })
	SimpleTypeImplB = NewType("SimpleTypeImplB",
		func(args []any) any { return &simpleTypeImplB{a: Arg[*simpleA](args, 0), b: Arg[*simpleB](args, 1)} },
		Inject(0, SimpleA),
		Inject(1, SimpleB),
	)
	SimpleTypeUser = NewType("SimpleTypeUser",
		func(args []any) any { return &simpleTypeUser{simpleType: args[0]} },
		InjectNamed(0, symbol1),
	)
)

// mustGet resolves (t, id) and fails the test on error.
func mustGet[T any](t *testing.T, inj *Injector, typ *Type, id ...ID) T {
	t.Helper()
	v, err := Resolve[T](inj, typ, id...)
	if err != nil {
		t.Fatalf("resolve %s: %v", typ, err)
	}
	return v
}

func mustGetType[T any](t *testing.T, inj *Injector, id ID) T {
	t.Helper()
	v, err := ResolveType[T](inj, id)
	if err != nil {
		t.Fatalf("resolve type %s: %v", id, err)
	}
	return v
}

// expectCode fails unless err carries code and its message contains msg.
func expectCode(t *testing.T, err error, code errors.ErrorCode, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if !errors.HasCode(err, code) {
		t.Fatalf("expected code %s, got %v", code, err)
	}
	if msg != "" && !strings.Contains(err.Error(), msg) {
		t.Errorf("expected error containing %q, got %q", msg, err.Error())
	}
}

func newTestInjector() *Injector {
	return New(WithLogger(logger.NewNop()))
}
