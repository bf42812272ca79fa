// Package diamond implements bounded concept regions: componentwise
// min/max envelopes with an L1 radius, a relevance mask over the axes that
// discriminate the concept, and a locality-sensitive fingerprint of the
// center. A diamond belongs to exactly one concept and is widened
// incrementally as new example points are observed.
//
// Containment checks against center and radius are a coarse gate used to
// skip exact similarity work, never a correctness requirement.
package diamond

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/symgo/hdc"
)

var (
	// ErrEmptyPoint is returned when a diamond is built from no axes.
	ErrEmptyPoint = errors.New("point must not be empty")

	// ErrInvalidBounds is returned when restored bounds have min > max.
	ErrInvalidBounds = errors.New("min bound exceeds max bound")
)

// ErrAxisMismatch indicates a point whose axis count does not match the
// diamond's.
type ErrAxisMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrAxisMismatch) Error() string {
	return fmt.Sprintf("axis count mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Diamond is the occupied region of one concept sense. Components are
// signed and bounded to -127..127.
type Diamond struct {
	Min         []int8
	Max         []int8
	Center      []int8
	L1Radius    int
	Relevance   *roaring.Bitmap
	Fingerprint uint64
}

// New creates a diamond collapsed onto a single example point.
func New(point []int8) (*Diamond, error) {
	if len(point) == 0 {
		return nil, ErrEmptyPoint
	}

	d := &Diamond{
		Min:       append([]int8(nil), point...),
		Max:       append([]int8(nil), point...),
		Center:    make([]int8, len(point)),
		Relevance: roaring.New(),
	}
	d.recompute()
	return d, nil
}

// FromVector creates a diamond from a bit vector's 0/1 components.
func FromVector(v hdc.Vector) (*Diamond, error) {
	return New(v.Components())
}

// FromBounds rebuilds a diamond from serialized min/max envelopes,
// recomputing the derived center, radius, relevance, and fingerprint.
func FromBounds(min, max []int8) (*Diamond, error) {
	if len(min) == 0 {
		return nil, ErrEmptyPoint
	}
	if len(min) != len(max) {
		return nil, &ErrAxisMismatch{Expected: len(min), Actual: len(max)}
	}
	for i := range min {
		if min[i] > max[i] {
			return nil, ErrInvalidBounds
		}
	}

	d := &Diamond{
		Min:       append([]int8(nil), min...),
		Max:       append([]int8(nil), max...),
		Center:    make([]int8, len(min)),
		Relevance: roaring.New(),
	}
	d.recompute()
	return d, nil
}

// Geometry returns the number of axes.
func (d *Diamond) Geometry() int { return len(d.Min) }

// Extend widens the envelope with further example points and recomputes
// the derived fields.
func (d *Diamond) Extend(points ...[]int8) error {
	for _, p := range points {
		if len(p) != len(d.Min) {
			return &ErrAxisMismatch{Expected: len(d.Min), Actual: len(p)}
		}
	}

	for _, p := range points {
		for i, v := range p {
			if v < d.Min[i] {
				d.Min[i] = v
			}
			if v > d.Max[i] {
				d.Max[i] = v
			}
		}
	}
	d.recompute()
	return nil
}

// ExtendVector widens the envelope with a bit vector's components.
func (d *Diamond) ExtendVector(v hdc.Vector) error {
	return d.Extend(v.Components())
}

// CoarseContains reports whether p lies within the diamond's L1 radius of
// the center, plus slack. A coarse accept still requires an exact check;
// a coarse reject is final.
func (d *Diamond) CoarseContains(p []int8, slack int) (bool, error) {
	dist, err := d.CenterDistance(p)
	if err != nil {
		return false, err
	}
	return dist <= d.L1Radius+slack, nil
}

// CenterDistance returns the L1 distance between p and the center.
func (d *Diamond) CenterDistance(p []int8) (int, error) {
	if len(p) != len(d.Center) {
		return 0, &ErrAxisMismatch{Expected: len(d.Center), Actual: len(p)}
	}

	dist := 0
	for i, v := range p {
		delta := int(v) - int(d.Center[i])
		if delta < 0 {
			delta = -delta
		}
		dist += delta
	}
	return dist, nil
}

// recompute derives center, radius, relevance, and fingerprint from the
// min/max envelope. The center is the truncating integer midpoint; an
// axis is relevant when its bounds diverge or hold a nonzero constant.
func (d *Diamond) recompute() {
	d.Relevance.Clear()

	radius := 0
	for i := range d.Min {
		lo, hi := int(d.Min[i]), int(d.Max[i])
		d.Center[i] = int8((lo + hi) / 2)
		radius += hi - lo
		if lo != hi || lo != 0 {
			d.Relevance.Add(uint32(i))
		}
	}
	d.L1Radius = radius
	d.Fingerprint = fingerprint(d.Center)
}
