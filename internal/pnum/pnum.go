// Package pnum defines the proof/disproof number type shared by the
// df-pn+ search engine and its transposition table.
package pnum

// PnDn is a proof number or disproof number. Both are saturating 64-bit
// unsigned counters; arithmetic never wraps.
type PnDn uint64

// Unit is the smallest increment used when seeding a child's initial
// (pn, dn) estimate. df-pn+ seeds children above 1 so that half-units
// remain representable during threshold propagation.
const Unit PnDn = 2

// Infinite represents "proven for the opposite polarity": pn == Infinite
// means the node is disproven, dn == Infinite means it is proven.
const Infinite PnDn = 1 << 62

// Add returns x+y saturating at Infinite (the search never needs values
// larger than Infinite; anything that would overflow collapses to it).
func Add(x, y PnDn) PnDn {
	if x >= Infinite || y >= Infinite {
		return Infinite
	}
	sum := x + y
	if sum < x || sum >= Infinite {
		return Infinite
	}
	return sum
}

// Phi returns the side-agnostic "prove" value: pn for an OR node, dn for
// an AND node.
func Phi(pn, dn PnDn, orNode bool) PnDn {
	if orNode {
		return pn
	}
	return dn
}

// Delta returns the side-agnostic "disprove" value: dn for an OR node,
// pn for an AND node.
func Delta(pn, dn PnDn, orNode bool) PnDn {
	if orNode {
		return dn
	}
	return pn
}

// Max returns the larger of x and y.
func Max(x, y PnDn) PnDn {
	if x > y {
		return x
	}
	return y
}

// Min returns the smaller of x and y.
func Min(x, y PnDn) PnDn {
	if x < y {
		return x
	}
	return y
}
