// Package validation validates configuration structs.
//
// Struct tag validation uses go-playground/validator and reports fields by
// their mapstructure key:
//
//	type Binding struct {
//	    Type  string `mapstructure:"type" validate:"required"`
//	    Scope string `mapstructure:"scope" validate:"omitempty,oneof=instance singleton"`
//	}
//	err := validation.Validate(cfg)
//
// Cross-field checks use the collecting Validator:
//
//	v := validation.New()
//	v.Unique("bindings", "bindings[1]", "SimpleA/")
//	if appErr := v.Validate(); appErr != nil { ... }
//
// Both return *errors.AppError with code INVALID_CONFIG and the failing
// fields under Details["fields"].
package validation
