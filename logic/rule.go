package logic

import (
	"errors"
	"strconv"
	"strings"

	"github.com/hupe1980/symgo/hdc"
	"github.com/hupe1980/symgo/internal/hash"
)

// ErrIncompleteRule occurs when a rule is built without both a condition
// and a conclusion.
var ErrIncompleteRule = errors.New("rule requires condition and conclusion")

// Rule pairs a condition tree with a conclusion tree. The derived fields
// are computed once at construction so matching and leveling never
// re-walk the trees.
type Rule struct {
	// ID is the CRC32-C hex of the normalized signature. Renaming holes
	// does not change it, so alpha-equivalent rules collide by design of
	// the normalization, and the id survives reload.
	ID string

	// Name is the caller-supplied label. It plays no part in identity.
	Name string

	Condition  Node
	Conclusion Node

	// ConditionParts holds every condition leaf including those under
	// Not; premise walks need all of them.
	ConditionParts []*Statement

	// ConclusionParts holds the conclusion leaves reachable without
	// crossing Not; these are the statements the rule can produce.
	ConclusionParts []*Statement

	ConditionVars  []string
	ConclusionVars []string

	// Vector encodes the conclusion so rules are retrievable by goal
	// similarity.
	Vector hdc.Vector
}

// NewRule builds a rule with all derived fields populated. The space
// stamps the conclusion encoding; condition and conclusion must be
// Ref-free (resolve first).
func NewRule(space *hdc.Space, name string, condition, conclusion Node) (*Rule, error) {
	if condition == nil || conclusion == nil {
		return nil, ErrIncompleteRule
	}

	vec, err := EncodeNode(space, conclusion)
	if err != nil {
		return nil, err
	}

	sig := Signature(condition, conclusion)

	return &Rule{
		ID:              hash.CRC32CHex([]byte(sig)),
		Name:            name,
		Condition:       condition,
		Conclusion:      conclusion,
		ConditionParts:  FlattenAll(condition),
		ConclusionParts: Flatten(conclusion),
		ConditionVars:   Vars(condition),
		ConclusionVars:  Vars(conclusion),
		Vector:          vec,
	}, nil
}

// Signature renders a rule's normalized textual form. Holes are replaced
// by positional tokens in first-appearance order across conclusion then
// condition, so the signature is invariant under variable renaming.
func Signature(condition, conclusion Node) string {
	idx := make(map[string]int)

	var b strings.Builder
	writeSignature(&b, conclusion, idx)
	b.WriteString("<-")
	writeSignature(&b, condition, idx)
	return b.String()
}

func writeSignature(b *strings.Builder, n Node, idx map[string]int) {
	switch n := n.(type) {
	case *Statement:
		b.WriteString(n.Operator)
		b.WriteByte('(')
		for i, a := range n.Args {
			if i > 0 {
				b.WriteByte(',')
			}
			switch t := a.(type) {
			case Literal:
				b.WriteString(t.Value)
			case Hole:
				pos, ok := idx[t.Name]
				if !ok {
					pos = len(idx)
					idx[t.Name] = pos
				}
				b.WriteByte('?')
				b.WriteString(strconv.Itoa(pos))
			}
		}
		b.WriteByte(')')
	case *Compound:
		b.WriteString(n.Kind.String())
		b.WriteByte('(')
		for i, p := range n.Parts {
			if i > 0 {
				b.WriteByte(',')
			}
			writeSignature(b, p, idx)
		}
		b.WriteByte(')')
	case *Ref:
		b.WriteByte('@')
		b.WriteString(n.Name)
	}
}
