package di

import (
	"strings"

	"github.com/kbukum/injectkit/errors"
)

// Sentinels for errors.Is. Matching is by code.
var (
	ErrMappingNotFound         = errors.New(errors.ErrCodeMappingNotFound, "mapping not found")
	ErrTypeMappingNotFound     = errors.New(errors.ErrCodeTypeMappingNotFound, "type mapping not found")
	ErrTypeMappingUnset        = errors.New(errors.ErrCodeTypeMappingUnset, "type mapping unset")
	ErrUndefinedDependencyType = errors.New(errors.ErrCodeUndefinedDependencyType, "undefined dependency type")
	ErrInvalidDescriptor       = errors.New(errors.ErrCodeInvalidDescriptor, "invalid dependency descriptor")
	ErrScopeViolation          = errors.New(errors.ErrCodeScopeViolation, "entity scope required")
	ErrUnknownExtensionKind    = errors.New(errors.ErrCodeUnknownExtensionKind, "unknown extension kind")
	ErrParameterMismatch       = errors.New(errors.ErrCodeParameterMismatch, "parameter mismatch")
	ErrNotConstructible        = errors.New(errors.ErrCodeNotConstructible, "type is not constructible")
	ErrCyclicDependency        = errors.New(errors.ErrCodeCyclicDependency, "cyclic dependency")
	ErrCyclicConstruction      = errors.New(errors.ErrCodeCyclicConstruction, "cyclic construction")
	ErrDisposed                = errors.New(errors.ErrCodeDisposed, "injector disposed")
)

func mappingNotFound(t *Type, id ID) *errors.AppError {
	if id == Unqualified {
		return errors.Newf(errors.ErrCodeMappingNotFound, "no mapping for type %s", t).
			WithDetail("type", t.String())
	}
	return errors.Newf(errors.ErrCodeMappingNotFound, "no mapping for type %s with id '%s'", t, id).
		WithDetails(map[string]any{"type": t.String(), "id": string(id)})
}

func typeMappingNotFound(id ID) *errors.AppError {
	return errors.Newf(errors.ErrCodeTypeMappingNotFound, "no type mapping for id '%s'", id).
		WithDetail("id", string(id))
}

func typeMappingUnset(id ID) *errors.AppError {
	return errors.Newf(errors.ErrCodeTypeMappingUnset, "type mapping for id '%s' has no target", id).
		WithDetail("id", string(id))
}

func undefinedDependencyType(owner *Type, d Dependency) *errors.AppError {
	return errors.Newf(errors.ErrCodeUndefinedDependencyType,
		"undefined type for dependency %d of %s; self-references and forward references must be declared with Declare",
		d.Index, owner).
		WithDetails(map[string]any{"type": owner.String(), "index": d.Index})
}

func invalidDescriptor(owner *Type, reason string) *errors.AppError {
	return errors.Newf(errors.ErrCodeInvalidDescriptor, "invalid dependencies for %s: %s", owner, reason).
		WithDetail("type", owner.String())
}

func scopeViolation(owner *Type, what string) *errors.AppError {
	return errors.Newf(errors.ErrCodeScopeViolation, "could not resolve %s for %s", what, owner).
		WithDetails(map[string]any{"type": owner.String(), "dependency": what})
}

func unknownExtensionKind(owner *Type, kind string) *errors.AppError {
	return errors.Newf(errors.ErrCodeUnknownExtensionKind, "no extension resolver for kind '%s' used by %s", kind, owner).
		WithDetails(map[string]any{"type": owner.String(), "kind": kind})
}

func parameterMismatch(owner *Type, declared bool) *errors.AppError {
	msg := "%s was given a parameter but declares no Parameter dependency"
	if declared {
		msg = "%s declares a Parameter dependency but was registered without a parameter"
	}
	return errors.Newf(errors.ErrCodeParameterMismatch, msg, owner).
		WithDetails(map[string]any{"type": owner.String(), "declared": declared})
}

func notConstructible(t *Type) *errors.AppError {
	return errors.Newf(errors.ErrCodeNotConstructible, "type %s has no constructor", t).
		WithDetail("type", t.String())
}

func cyclicDependency(path []*Type) *errors.AppError {
	names := make([]string, len(path))
	for i, t := range path {
		names[i] = t.String()
	}
	return errors.Newf(errors.ErrCodeCyclicDependency, "cyclic dependency: %s", strings.Join(names, " -> ")).
		WithDetail("path", names)
}

func cyclicConstruction(t *Type, id ID) *errors.AppError {
	return errors.Newf(errors.ErrCodeCyclicConstruction, "singleton %s requested itself while being created", t).
		WithDetails(map[string]any{"type": t.String(), "id": string(id)})
}

func disposed(registry string) *errors.AppError {
	return errors.Newf(errors.ErrCodeDisposed, "injector %s has been disposed", registry).
		WithDetail("registry", registry)
}
