package kb

import (
	"github.com/hupe1980/symgo/diamond"
	"github.com/hupe1980/symgo/hdc"
)

// Concept is a labeled point of the vector space. The prototype vector is
// stamped deterministically from the label at creation; observed examples
// accumulate into one or more bounded diamonds, one per sub-sense of a
// polysemous label.
type Concept struct {
	// Label is the unique key of the concept.
	Label string

	// Prototype is the deterministic stamp for the label in the store's
	// theory. It never changes after creation.
	Prototype hdc.Vector

	// Diamonds are the observed regions, in creation order.
	Diamonds []*diamond.Diamond

	// Uses counts creations and fact participations, for
	// threshold-based forgetting.
	Uses uint64
}

// Center returns the concept's best center point: the first diamond's
// center when examples were observed, otherwise the prototype's
// components.
func (c *Concept) Center() []int8 {
	if len(c.Diamonds) > 0 {
		return c.Diamonds[0].Center
	}
	return c.Prototype.Components()
}

// nearestDiamond returns the diamond with the smallest L1 center
// distance to point, or nil when the concept has none.
func (c *Concept) nearestDiamond(point []int8) *diamond.Diamond {
	var (
		best     *diamond.Diamond
		bestDist int
	)
	for _, d := range c.Diamonds {
		dist, err := d.CenterDistance(point)
		if err != nil {
			continue
		}
		if best == nil || dist < bestDist {
			best = d
			bestDist = dist
		}
	}
	return best
}
