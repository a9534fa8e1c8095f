package tetris

import "math/rand"

// ShapeSource supplies the shape of each new piece.
type ShapeSource interface {
	NextShape() Shape
}

// RandomSource draws shapes uniformly from a seeded generator.
type RandomSource struct {
	rng *rand.Rand
}

// NewRandomSource creates a deterministic source for the given seed.
func NewRandomSource(seed int64) *RandomSource {
	return &RandomSource{rng: rand.New(rand.NewSource(seed))}
}

// NextShape returns a uniformly chosen shape.
func (r *RandomSource) NextShape() Shape {
	return Shape(r.rng.Intn(int(shapeCount)))
}

// SequenceSource cycles through a fixed list of shapes.
type SequenceSource struct {
	shapes []Shape
	i      int
}

// NewSequenceSource returns a source that repeats shapes in order.
// An empty list yields ShapeO forever.
func NewSequenceSource(shapes ...Shape) *SequenceSource {
	if len(shapes) == 0 {
		shapes = []Shape{ShapeO}
	}
	return &SequenceSource{shapes: shapes}
}

// NextShape returns the next shape in the cycle.
func (s *SequenceSource) NextShape() Shape {
	sh := s.shapes[s.i%len(s.shapes)]
	s.i++
	return sh
}
