// Package unify matches ground goal statements against quantified rule
// conclusions, builds variable bindings, optionally prunes candidates by
// constructivist level, and delegates condition proof back to the engine
// that owns the rule base. Absence of a match is a falsy result, never an
// error.
package unify

import (
	"github.com/hupe1980/symgo/logic"
)

// Options contains configuration for a Unifier.
type Options struct {
	// Decay is multiplied into the proof confidence per unification hop,
	// so deeper derivation chains carry strictly less confidence than
	// direct facts.
	Decay float64

	// LevelPruning enables the constructivist-level walk.
	LevelPruning bool

	// StrictPruning skips candidates whose hardest premise levels above
	// the goal. Only meaningful with LevelPruning.
	StrictPruning bool

	// MaxDepth caps unification recursion. Reaching it terminates the
	// search with a falsy result.
	MaxDepth int
}

// DefaultOptions returns the default Unifier options.
func DefaultOptions() Options {
	return Options{
		Decay:    0.9,
		MaxDepth: 16,
	}
}

// Proof is what a ConditionProver reports for a proven condition.
type Proof struct {
	Confidence float64
	Steps      []string
}

// ConditionProver proves an instantiated rule condition. The engine
// embedding the unifier implements it: statements resolve against facts
// or recurse into further rules, compounds combine their parts.
type ConditionProver interface {
	// Prove attempts the condition at the given depth. The second return
	// is false when the condition could not be established.
	Prove(condition logic.Node, depth int) (Proof, bool)
}

// Result is the outcome of one unification attempt. The zero value is
// the universal non-match.
type Result struct {
	Valid      bool
	Bindings   *Bindings
	Confidence float64
	Steps      []string
}

// Unifier runs goal-against-rule unification.
type Unifier struct {
	opts Options
}

// New creates a Unifier.
func New(optFns ...func(o *Options)) *Unifier {
	opts := DefaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Unifier{opts: opts}
}

// Unify matches goal against the rule's conclusion candidates in order.
// For each candidate with the goal's operator and arity it builds
// bindings left to right, optionally prunes by level, and asks the
// prover for the instantiated condition at depth+1. The first proven
// candidate wins; exhausting all candidates is a non-match.
func (u *Unifier) Unify(goal *logic.Statement, rule *logic.Rule, depth int, prover ConditionProver) Result {
	if depth >= u.opts.MaxDepth {
		return Result{}
	}

	args, ok := goalArgs(goal)
	if !ok {
		return Result{}
	}

	goalLevel := logic.Level(goal, nil)

	for _, candidate := range rule.ConclusionParts {
		if candidate.Operator != goal.Operator || len(candidate.Args) != len(args) {
			continue
		}

		bindings, ok := bindArgs(candidate, args)
		if !ok {
			continue
		}

		if u.opts.LevelPruning && u.opts.StrictPruning && u.premiseLevel(rule, bindings) > goalLevel {
			continue
		}

		if prover == nil {
			continue
		}

		condition := Substitute(rule.Condition, bindings)
		proof, proven := prover.Prove(condition, depth+1)
		if !proven {
			continue
		}

		steps := make([]string, 0, len(proof.Steps)+1)
		steps = append(steps, proof.Steps...)
		steps = append(steps, "rule "+ruleLabel(rule)+" concluded "+goal.Format(bindings.Lookup))

		return Result{
			Valid:      true,
			Bindings:   bindings,
			Confidence: proof.Confidence * u.opts.Decay,
			Steps:      steps,
		}
	}

	return Result{}
}

// goalArgs extracts the goal's ground argument names. A goal with no
// operator, no arguments, or a hole argument cannot unify.
func goalArgs(goal *logic.Statement) ([]string, bool) {
	if goal == nil || goal.Operator == "" || len(goal.Args) == 0 {
		return nil, false
	}

	args := make([]string, len(goal.Args))
	for i, a := range goal.Args {
		lit, ok := a.(logic.Literal)
		if !ok || lit.Value == "" {
			return nil, false
		}
		args[i] = lit.Value
	}
	return args, true
}

// bindArgs builds bindings left to right. A repeated variable must meet
// the same ground name at every occurrence; a constant must equal the
// goal's argument exactly, case-sensitive.
func bindArgs(candidate *logic.Statement, args []string) (*Bindings, bool) {
	bindings := NewBindings()
	for i, a := range candidate.Args {
		switch t := a.(type) {
		case logic.Hole:
			if prev, bound := bindings.Lookup(t.Name); bound {
				if prev != args[i] {
					return nil, false
				}
				continue
			}
			bindings.Bind(t.Name, args[i])
		case logic.Literal:
			if t.Value != args[i] {
				return nil, false
			}
		}
	}
	return bindings, true
}

// premiseLevel is the maximum level across the rule's premises after
// substitution. Unbound holes count zero, which under-approximates and
// never prunes falsely.
func (u *Unifier) premiseLevel(rule *logic.Rule, bindings *Bindings) int {
	max := 0
	for _, premise := range rule.ConditionParts {
		if lvl := Level(premise, bindings); lvl > max {
			max = lvl
		}
	}
	return max
}

func ruleLabel(rule *logic.Rule) string {
	if rule.Name != "" {
		return rule.Name
	}
	return rule.ID
}
