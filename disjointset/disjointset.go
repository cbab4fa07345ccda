// Package disjointset implements a union-find universe over comparable keys with
// union by rank, path compression and per-set sizes.
package disjointset

import "fmt"

// node is the record kept for every element.
type node[K comparable] struct {
	parent K
	rank   int
	size   int
}

// Set is a disjoint-set universe. The zero value is not usable; call New.
//
// Set is not safe for concurrent use. Find mutates internal parent links.
type Set[K comparable] struct {
	nodes map[K]*node[K]
	count int
}

// New returns an empty universe with room for hint elements.
func New[K comparable](hint int) *Set[K] {
	if hint < 0 {
		hint = 0
	}
	return &Set[K]{nodes: make(map[K]*node[K], hint)}
}

// MakeSet adds x as a singleton set. Adding an existing element is a no-op.
func (s *Set[K]) MakeSet(x K) {
	if _, ok := s.nodes[x]; ok {
		return
	}
	s.nodes[x] = &node[K]{parent: x, size: 1}
	s.count++
}

// Contains reports whether x has been added.
func (s *Set[K]) Contains(x K) bool {
	_, ok := s.nodes[x]
	return ok
}

// Find returns the representative of the set containing x and rewrites the
// parent of every element visited on the way to point directly at it.
//
// Find panics if x was never added.
func (s *Set[K]) Find(x K) K {
	root := x
	for {
		n := s.lookup(root)
		if n.parent == root {
			break
		}
		root = n.parent
	}
	for x != root {
		n := s.nodes[x]
		x, n.parent = n.parent, root
	}
	return root
}

// Join merges the sets whose representatives are a and b and returns the
// surviving representative.
//
// The root of lower rank is attached under the other; on equal rank b survives
// and its rank grows by one. Joining a representative with itself returns it
// unchanged.
//
// Join panics if a or b is not a representative; resolve keys with Find first.
//
// Arguments:
//   - a: A representative.
//   - b: A representative.
//
// Returns:
//   - K: The representative of the merged set.
func (s *Set[K]) Join(a, b K) K {
	na, nb := s.lookup(a), s.lookup(b)
	if na.parent != a || nb.parent != b {
		panic(fmt.Sprintf("disjointset: join of non-representative %v, %v", a, b))
	}
	if a == b {
		return a
	}

	if na.rank > nb.rank {
		nb.parent = a
		na.size += nb.size
		s.count--
		return a
	}
	na.parent = b
	nb.size += na.size
	if na.rank == nb.rank {
		nb.rank++
	}
	s.count--
	return b
}

// Size returns the size recorded on x. It is the size of x's set only when x is
// a representative.
func (s *Set[K]) Size(x K) int {
	return s.lookup(x).size
}

// Count returns the number of distinct sets.
func (s *Set[K]) Count() int {
	return s.count
}

// Len returns the number of elements.
func (s *Set[K]) Len() int {
	return len(s.nodes)
}

// Roots returns every representative, in no particular order.
func (s *Set[K]) Roots() []K {
	roots := make([]K, 0, s.count)
	for k, n := range s.nodes {
		if n.parent == k {
			roots = append(roots, k)
		}
	}
	return roots
}

// Clear removes every element.
func (s *Set[K]) Clear() {
	clear(s.nodes)
	s.count = 0
}

func (s *Set[K]) lookup(x K) *node[K] {
	n, ok := s.nodes[x]
	if !ok {
		panic(fmt.Sprintf("disjointset: unknown element %v", x))
	}
	return n
}
