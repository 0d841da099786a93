package proximity

import (
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
)

// BruteForce is a Database that checks every token on every query. Results
// come back in allocation order. Fine for small populations.
type BruteForce[T any] struct {
	tokens []*bruteForceToken[T]
}

// NewBruteForce creates an empty brute force database.
func NewBruteForce[T any]() *BruteForce[T] {
	return &BruteForce[T]{}
}

// AllocateToken adds content to the database at the origin.
func (db *BruteForce[T]) AllocateToken(content T) Token[T] {
	tok := &bruteForceToken[T]{db: db, content: content}
	db.tokens = append(db.tokens, tok)
	return tok
}

// Count returns the number of open tokens.
func (db *BruteForce[T]) Count() int {
	return len(db.tokens)
}

type bruteForceToken[T any] struct {
	db       *BruteForce[T]
	content  T
	position r3.Vec
	closed   bool
}

func (t *bruteForceToken[T]) UpdateForNewPosition(p r3.Vec) {
	t.position = p
}

func (t *bruteForceToken[T]) FindNeighbors(center r3.Vec, radius float64, dst []T) []T {
	if t.closed {
		return dst
	}
	r2 := radius * radius
	for _, other := range t.db.tokens {
		if within(other.position, center, r2) {
			dst = append(dst, other.content)
		}
	}
	return dst
}

func (t *bruteForceToken[T]) Close() {
	if t.closed {
		return
	}
	t.closed = true
	if i := slices.Index(t.db.tokens, t); i >= 0 {
		t.db.tokens = slices.Delete(t.db.tokens, i, i+1)
	}
}
