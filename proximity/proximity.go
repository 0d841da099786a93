// Package proximity provides spatial indexes agents use to find nearby
// agents. An agent allocates a token from a Database, updates the token
// every time it moves, queries it for neighbors, and closes it when it leaves
// the index.
//
// Contract: immediately after UpdateForNewPosition(p), any FindNeighbors
// call whose sphere contains p includes the token's content. Indexes are not
// safe for concurrent mutation; hosts update tokens in one phase and query in
// another.
package proximity

import "gonum.org/v1/gonum/spatial/r3"

// Token is one agent's handle into a Database.
type Token[T any] interface {
	// UpdateForNewPosition records the content's new position.
	UpdateForNewPosition(p r3.Vec)

	// FindNeighbors appends to dst the content of every token whose last
	// recorded position lies within radius of center (the caller's own
	// content included) and returns the extended slice. Reuse dst across
	// calls to avoid allocations.
	FindNeighbors(center r3.Vec, radius float64, dst []T) []T

	// Close removes the token from its database. Further use is a no-op.
	Close()
}

// Database hands out tokens and answers their queries.
type Database[T any] interface {
	AllocateToken(content T) Token[T]

	// Count returns the number of open tokens.
	Count() int
}

// within reports whether p lies inside or on the sphere.
func within(p, center r3.Vec, radiusSq float64) bool {
	return r3.Norm2(r3.Sub(p, center)) <= radiusSq
}
