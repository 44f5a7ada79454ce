package di

import "fmt"

// MustResolve resolves the class mapping of (t, id) as T, panics on error.
// Use this in wiring code where a missing dependency is a programming error.
//
// Example:
//
//	repo := di.MustResolve[*UserRepository](inj, UserRepositoryType)
func MustResolve[T any](inj *Injector, t *Type, id ...ID) T {
	result, err := Resolve[T](inj, t, id...)
	if err != nil {
		panic(fmt.Sprintf("di: %v", err))
	}
	return result
}

// Resolve resolves the class mapping of (t, id) as T, returns error on failure.
//
// Example:
//
//	repo, err := di.Resolve[*UserRepository](inj, UserRepositoryType)
//	if err != nil {
//	    return fmt.Errorf("failed to get user repository: %w", err)
//	}
func Resolve[T any](inj *Injector, t *Type, id ...ID) (T, error) {
	var zero T
	instance, err := inj.Get(t, id...)
	if err != nil {
		return zero, fmt.Errorf("di: failed to resolve %s: %w", t, err)
	}
	result, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("di: %s resolved to %T, expected %T", t, instance, zero)
	}
	return result, nil
}

// TryResolve resolves the class mapping of (t, id), returns zero value and
// false on any failure. Use this when a dependency is optional.
//
// Example:
//
//	if metrics, ok := di.TryResolve[*Metrics](inj, MetricsType); ok {
//	    metrics.Record(...)
//	}
func TryResolve[T any](inj *Injector, t *Type, id ...ID) (T, bool) {
	result, err := Resolve[T](inj, t, id...)
	return result, err == nil
}

// ResolveType resolves the type mapping registered under id as T.
func ResolveType[T any](inj *Injector, id ID) (T, error) {
	var zero T
	instance, err := inj.GetType(id)
	if err != nil {
		return zero, fmt.Errorf("di: failed to resolve '%s': %w", id, err)
	}
	result, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("di: '%s' resolved to %T, expected %T", id, instance, zero)
	}
	return result, nil
}
