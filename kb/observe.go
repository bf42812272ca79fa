package kb

import (
	"github.com/hupe1980/symgo/diamond"
	"github.com/hupe1980/symgo/hdc"
)

// ObservePoint records an example point for a concept, creating it first
// if needed. The point extends the nearest existing diamond; a concept
// with no diamonds gets its first one.
func (s *Store) ObservePoint(label string, point []int8) error {
	c, err := s.EnsureConcept(label)
	if err != nil {
		return err
	}

	if d := c.nearestDiamond(point); d != nil {
		return d.Extend(point)
	}

	d, err := diamond.New(point)
	if err != nil {
		return err
	}
	c.Diamonds = append(c.Diamonds, d)
	return nil
}

// ObserveSense records an example point as a fresh sub-sense: a new
// diamond is always started, so disjoint regions of a polysemous label
// stay separate instead of being widened into one.
func (s *Store) ObserveSense(label string, point []int8) error {
	c, err := s.EnsureConcept(label)
	if err != nil {
		return err
	}

	d, err := diamond.New(point)
	if err != nil {
		return err
	}
	c.Diamonds = append(c.Diamonds, d)
	return nil
}

// ObserveVector records a bit-vector observation as an example point.
func (s *Store) ObserveVector(label string, v hdc.Vector) error {
	return s.ObservePoint(label, v.Components())
}
