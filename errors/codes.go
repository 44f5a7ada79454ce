package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Lookup errors
const (
	// ErrCodeMappingNotFound indicates no class mapping exists for a (type, id) pair in the registry chain.
	ErrCodeMappingNotFound ErrorCode = "MAPPING_NOT_FOUND"
	// ErrCodeTypeMappingNotFound indicates no type mapping exists for an identifier in the registry chain.
	ErrCodeTypeMappingNotFound ErrorCode = "TYPE_MAPPING_NOT_FOUND"
	// ErrCodeTypeMappingUnset indicates a type mapping was declared without a target.
	ErrCodeTypeMappingUnset ErrorCode = "TYPE_MAPPING_UNSET"
)

// Descriptor errors
const (
	// ErrCodeUndefinedDependencyType indicates a self-reference or a descriptor built before its target existed.
	ErrCodeUndefinedDependencyType ErrorCode = "UNDEFINED_DEPENDENCY_TYPE"
	// ErrCodeInvalidDescriptor indicates duplicate or missing parameter positions.
	ErrCodeInvalidDescriptor ErrorCode = "INVALID_DESCRIPTOR"
	// ErrCodeScopeViolation indicates an entity-only descriptor compiled outside an entity scope.
	ErrCodeScopeViolation ErrorCode = "SCOPE_VIOLATION"
	// ErrCodeUnknownExtensionKind indicates no extension resolver is registered for a descriptor kind.
	ErrCodeUnknownExtensionKind ErrorCode = "UNKNOWN_EXTENSION_KIND"
	// ErrCodeParameterMismatch indicates a declared parameter without a value, or a value without a declaration.
	ErrCodeParameterMismatch ErrorCode = "PARAMETER_MISMATCH"
	// ErrCodeNotConstructible indicates an Instance mapping for a type without a constructor.
	ErrCodeNotConstructible ErrorCode = "NOT_CONSTRUCTIBLE"
)

// Graph errors
const (
	// ErrCodeCyclicDependency indicates a cycle in the dependency descriptor graph.
	ErrCodeCyclicDependency ErrorCode = "CYCLIC_DEPENDENCY"
	// ErrCodeCyclicConstruction indicates a singleton requested its own cache slot while being created.
	ErrCodeCyclicConstruction ErrorCode = "CYCLIC_CONSTRUCTION"
)

// Lifecycle and configuration errors
const (
	// ErrCodeDisposed indicates the registry was disposed.
	ErrCodeDisposed ErrorCode = "DISPOSED"
	// ErrCodeInvalidConfig indicates configuration failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)
