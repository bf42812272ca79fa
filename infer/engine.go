// Package infer derives new facts from stored ones: direct lookup,
// transitive/symmetric/inverse relation reasoning, property inheritance,
// defaults with exceptions, user-registered composition rules, and
// saturating forward chaining. Relation properties live in an explicit
// Relations configuration, never in package state.
package infer

import (
	"strings"

	"github.com/hupe1980/symgo/kb"
)

// Options contains configuration for an Engine.
type Options struct {
	// MaxDepth bounds transitive and hierarchy walks.
	MaxDepth int

	// MaxIterations bounds forward chaining when the caller passes no
	// explicit limit.
	MaxIterations int
}

// DefaultOptions returns the default Engine options.
func DefaultOptions() Options {
	return Options{
		MaxDepth:      8,
		MaxIterations: 10,
	}
}

// Engine runs the derivation strategies against a fact source.
type Engine struct {
	rel  *Relations
	opts Options
}

// New creates an Engine over the given relation configuration.
func New(rel *Relations, optFns ...func(o *Options)) *Engine {
	opts := DefaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	if rel == nil {
		rel = NewRelations()
	}
	return &Engine{rel: rel, opts: opts}
}

// Relations returns the engine's relation configuration.
func (e *Engine) Relations() *Relations { return e.rel }

// usable filters out facts asserted below Possible: an impossible or
// unproven triple never serves as a derivation premise.
func usable(f *kb.Fact) bool {
	return f.Existence >= kb.Possible
}

// Infer tries the strategies in fixed priority order (direct,
// transitive, symmetric, inverse, inheritance, composition, default)
// and returns the first conclusion. Callers may rely on this order for
// the reported Method.
func (e *Engine) Infer(src kb.Source, subject, relation, object string) Result {
	for _, strategy := range []func(kb.Source, string, string, string) Result{
		e.Direct,
		e.Transitive,
		e.Symmetric,
		e.Inverse,
		e.Inheritance,
		e.Composition,
		e.Default,
	} {
		if result := strategy(src, subject, relation, object); result.Known() {
			return result
		}
	}
	return Result{}
}

// Direct matches the triple against stored facts, case-insensitively.
func (e *Engine) Direct(src kb.Source, subject, relation, object string) Result {
	for _, f := range src.All() {
		if !usable(f) {
			continue
		}
		if strings.EqualFold(f.Subject, subject) &&
			strings.EqualFold(f.Relation, relation) &&
			strings.EqualFold(f.Object, object) {
			return Result{
				Truth:  TrueCertain,
				Method: "direct",
				Steps:  []string{f.Triple()},
			}
		}
	}
	return Result{}
}

// hop is one node of a breadth-first walk, chained back to the start so
// the witnessing fact sequence can be unwound.
type hop struct {
	node string
	via  *kb.Fact
	prev *hop
}

// Transitive walks the relation graph breadth-first up to the depth
// bound and reports the witnessing chain.
func (e *Engine) Transitive(src kb.Source, subject, relation, object string) Result {
	if !e.rel.IsTransitive(relation) {
		return Result{}
	}

	visited := map[string]struct{}{subject: {}}
	frontier := []*hop{{node: subject}}

	for depth := 0; depth < e.opts.MaxDepth && len(frontier) > 0; depth++ {
		var next []*hop
		for _, h := range frontier {
			for _, f := range src.FactsBySubject(h.node) {
				if !usable(f) || f.Relation != relation {
					continue
				}
				if _, seen := visited[f.Object]; seen {
					continue
				}

				reached := &hop{node: f.Object, via: f, prev: h}
				if f.Object == object {
					return Result{
						Truth:  TrueCertain,
						Method: "transitive",
						Steps:  chainSteps(reached),
					}
				}

				visited[f.Object] = struct{}{}
				next = append(next, reached)
			}
		}
		frontier = next
	}
	return Result{}
}

// chainSteps unwinds the parent pointers into subject-to-object order.
func chainSteps(h *hop) []string {
	var steps []string
	for ; h != nil && h.via != nil; h = h.prev {
		steps = append(steps, h.via.Triple())
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return steps
}

// Symmetric accepts the swapped triple when the relation is declared
// symmetric.
func (e *Engine) Symmetric(src kb.Source, subject, relation, object string) Result {
	if !e.rel.IsSymmetric(relation) {
		return Result{}
	}

	for _, f := range src.FactsBySubject(object) {
		if usable(f) && f.Relation == relation && f.Object == subject {
			return Result{
				Truth:  TrueCertain,
				Method: "symmetric",
				Steps:  []string{f.Triple()},
			}
		}
	}
	return Result{}
}

// Inverse accepts a fact under the registered inverse relation with the
// arguments swapped.
func (e *Engine) Inverse(src kb.Source, subject, relation, object string) Result {
	inv, ok := e.rel.InverseOf(relation)
	if !ok {
		return Result{}
	}

	for _, f := range src.FactsBySubject(object) {
		if usable(f) && f.Relation == inv && f.Object == subject {
			return Result{
				Truth:  TrueCertain,
				Method: "inverse",
				Steps:  []string{f.Triple()},
			}
		}
	}
	return Result{}
}
