// Package utils provides small helpers shared by the quoting service.
package utils

// ToPtr returns a pointer to a copy of v, for optional model columns.
func ToPtr[T any](v T) *T {
	return &v
}

// IsTrue treats a nil flag as false; courier flags stay NULL until recorded.
func IsTrue(b *bool) bool {
	return b != nil && *b
}
