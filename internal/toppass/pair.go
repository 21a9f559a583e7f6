package toppass

// Pair is the product environment C5's combinator operates over. Its zero
// value is (zero E1, zero E2), the identity of the product monoid whenever
// E1 and E2's own zero values are their identities — true of every Env
// this codebase defines.
type Pair[E1 Monoid[E1], E2 Monoid[E2]] struct {
	First  E1
	Second E2
}

// Combine implements the product monoid componentwise, satisfying the
// Monoid constraint so a Pair can itself be nested in a further Pair —
// what makes the associativity requirement in spec §4.5 meaningful.
func (p Pair[E1, E2]) Combine(other Pair[E1, E2]) Pair[E1, E2] {
	return Pair[E1, E2]{First: p.First.Combine(other.First), Second: p.Second.Combine(other.Second)}
}
