// Package widgets contains dumb render primitives.
//
// Allowed here:
// - stateless drawing/composition helpers (cards, stacks, popup overlay compositor)
//
// Not allowed here:
// - key handling, async state, money formatting, or anything that knows about the ledger
package widgets
