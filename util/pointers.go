package util

// Ptr returns a pointer to the given value.
func Ptr[T any](v T) *T {
	return &v
}

// DerefOr returns the value pointed to by p, or fallback if p is nil.
func DerefOr[T any](p *T, fallback T) T {
	if p != nil {
		return *p
	}
	return fallback
}
