package utils

// Ptr returns a pointer to v. Handy for optional request fields.
func Ptr[T any](v T) *T {
	return &v
}

// Value dereferences p, returning the zero value when p is nil.
func Value[T any](p *T) T {
	if p == nil {
		return *new(T)
	}
	return *p
}
