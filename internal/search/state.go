package search

import (
	"sort"
	"strconv"
	"strings"

	"stripsplan/internal/ground"
	"stripsplan/internal/strips"
)

// Status is a search node's place in spec.md §4.6's status lattice:
// new -> open on first push, open -> closed on expansion, closed -> open
// only on re-opening with a strictly smaller g, new -> closed directly on a
// detected dead-end.
type Status int

const (
	StatusNew Status = iota
	StatusOpen
	StatusClosed
)

// Node is one state's search record: parent state id, the operator that
// produced it, cost-so-far, and status. Parent/Op are -1 for "none" (the
// initial state).
type Node struct {
	Parent int
	Op     int
	G      ground.Cost
	Status Status

	// H and Verified support lazy best-first search (spec.md §4.7 step 8):
	// a lazily-generated successor is pushed with a placeholder H borrowed
	// from its parent, and only gets its own heuristic evaluated (and
	// Verified set) the moment it is popped for expansion.
	H        ground.Cost
	Verified bool
}

// Space is C6's insert-with-dedup store of visited propositional states: a
// state (a sorted fact-id set) hashes to a dense id, and each id owns
// exactly one Node record, mutated only through SetNode (spec.md §4.6
// "the state content itself is never mutated").
type Space struct {
	contents [][]strips.Fact
	nodes    []Node
	byKey    map[string]int
}

// NewSpace returns an empty state space.
func NewSpace() *Space {
	return &Space{byKey: make(map[string]int)}
}

// encodeState produces a collision-free key for a sorted fact-id set,
// mirroring fact.encodeKey's unit-separator-joined scheme.
func encodeState(content []strips.Fact) string {
	var b strings.Builder
	for i, f := range content {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(strconv.Itoa(int(f)))
	}
	return b.String()
}

// Insert finds or allocates the dense id for content, canonicalizing it to
// ascending sorted order first so that set-equal fact collections always
// hash and compare identically regardless of discovery order. A fresh id
// starts with Node{-1, -1, -1, New}. Insert is injective on state content
// (spec.md §8): two insertions of the same fact set return the same id.
func (s *Space) Insert(content []strips.Fact) int {
	sorted := append([]strips.Fact(nil), content...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	key := encodeState(sorted)
	if id, ok := s.byKey[key]; ok {
		return id
	}
	id := len(s.contents)
	s.contents = append(s.contents, sorted)
	s.nodes = append(s.nodes, Node{Parent: -1, Op: -1, G: -1, Status: StatusNew})
	s.byKey[key] = id
	return id
}

// SetNode atomically overwrites a state's node record. The state id must
// already have been produced by Insert.
func (s *Space) SetNode(id int, n Node) {
	s.nodes[id] = n
}

// Node returns the current node record for id.
func (s *Space) Node(id int) Node {
	return s.nodes[id]
}

// Content returns the fact-id set a state id was inserted with.
func (s *Space) Content(id int) []strips.Fact {
	return s.contents[id]
}

// Len reports how many distinct states have been inserted.
func (s *Space) Len() int {
	return len(s.contents)
}
