package logic

import (
	"fmt"
	"strconv"

	"github.com/hupe1980/symgo/hdc"
	"github.com/hupe1980/symgo/internal/hash"
)

// Argument roles are encoded positionally: the stamp for argument i is
// permuted by a role permutation seeded from the position, then bound
// with the operator stamp. Bundling the bound pairs yields a statement
// vector that stays similar to statements sharing operator and arguments
// in the same roles.

// EncodeStatement encodes a leaf statement into the space's geometry.
// Literals stamp in the default theory, holes in the "hole" theory, so a
// hole named Dog never collides with the constant Dog.
func EncodeStatement(space *hdc.Space, s *Statement) (hdc.Vector, error) {
	vs := make([]hdc.Vector, 0, len(s.Args)+1)
	vs = append(vs, space.FromNameTheory(s.Operator, "operator"))

	for i, a := range s.Args {
		var stamp hdc.Vector
		switch t := a.(type) {
		case Literal:
			stamp = space.FromName(t.Value)
		case Hole:
			stamp = space.FromNameTheory(t.Name, "hole")
		default:
			return hdc.Vector{}, fmt.Errorf("unsupported term %T", a)
		}

		placed, err := space.Permute(stamp, RolePermutation(space, i))
		if err != nil {
			return hdc.Vector{}, err
		}

		bound, err := space.Bind(vs[0], placed)
		if err != nil {
			return hdc.Vector{}, err
		}

		vs = append(vs, bound)
	}

	return space.Bundle(vs)
}

// EncodeNode encodes any statement tree. Compounds bundle their encoded
// parts and bind the result with a kind stamp; unresolved references
// stamp by name in the "ref" theory so they remain matchable before
// resolution.
func EncodeNode(space *hdc.Space, n Node) (hdc.Vector, error) {
	switch n := n.(type) {
	case *Statement:
		return EncodeStatement(space, n)
	case *Compound:
		if len(n.Parts) == 0 {
			return space.FromNameTheory(n.Kind.String(), "compound"), nil
		}
		vs := make([]hdc.Vector, 0, len(n.Parts))
		for _, p := range n.Parts {
			v, err := EncodeNode(space, p)
			if err != nil {
				return hdc.Vector{}, err
			}
			vs = append(vs, v)
		}
		inner, err := space.Bundle(vs)
		if err != nil {
			return hdc.Vector{}, err
		}
		return space.Bind(space.FromNameTheory(n.Kind.String(), "compound"), inner)
	case *Ref:
		return space.FromNameTheory(n.Name, "ref"), nil
	default:
		return hdc.Vector{}, fmt.Errorf("unsupported node %T", n)
	}
}

// RolePermutation returns the argument-position permutation for role i.
// The seed depends only on the position, so every statement places its
// first argument through the same permutation.
func RolePermutation(space *hdc.Space, i int) *hdc.Permutation {
	return space.NewPermutation(int64(hash.Seed("role", strconv.Itoa(i))))
}
