// Package engine implements the capital distribution and returns engine:
// pro-rata capital call allocation, the four-tier distribution waterfall
// and per-investor performance attribution.
//
// Every function in this package is a pure function of its arguments.
// Nothing is persisted, nothing is shared, and degenerate inputs (zero
// commitments, negative proceeds, zero called capital) produce zero or
// clamped results instead of errors. Input sanitization beyond those clamps
// belongs to the caller; see the Validate* helpers in the domain package.
package engine
