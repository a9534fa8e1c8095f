package tetris

import (
	"github.com/kamstrup/intmap"

	"github.com/vovakirdan/duotris/internal/core"
)

// cellSet is a set of grid points keyed by a packed integer.
// Points may lie outside the playfield.
type cellSet struct {
	m *intmap.Map[int, struct{}]
}

const cellKeyBias = 1 << 10

func cellKey(p core.Point) int {
	return (p.Y+cellKeyBias)<<16 | (p.X + cellKeyBias)
}

func newCellSet(cells ...core.Point) cellSet {
	s := cellSet{m: intmap.New[int, struct{}](len(cells)*2 + 8)}
	for _, c := range cells {
		s.add(c)
	}
	return s
}

// add inserts p and reports whether it was absent.
func (s cellSet) add(p core.Point) bool {
	k := cellKey(p)
	if _, ok := s.m.Get(k); ok {
		return false
	}
	s.m.Put(k, struct{}{})
	return true
}

func (s cellSet) has(p core.Point) bool {
	_, ok := s.m.Get(cellKey(p))
	return ok
}

func (s cellSet) len() int {
	return s.m.Len()
}

// intersects reports whether any of cells is in the set.
func (s cellSet) intersects(cells []core.Point) bool {
	for _, c := range cells {
		if s.has(c) {
			return true
		}
	}
	return false
}
