package extract

// Resolver attempts to produce a value from the document; ok reports whether
// it succeeded. Fallback cascades are expressed as ordered resolver slices so
// the tier order is a visible, testable data structure rather than nested
// conditionals.
type Resolver[T any] func() (T, bool)

// Chain runs resolvers in order and returns the first success. The final
// return reports whether any tier produced a value.
func Chain[T any](resolvers ...Resolver[T]) (T, bool) {
	for _, r := range resolvers {
		if v, ok := r(); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Constant wraps a literal last-resort default as the terminal chain tier.
func Constant[T any](v T) Resolver[T] {
	return func() (T, bool) { return v, true }
}
