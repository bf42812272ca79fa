package kb

import (
	"path"
	"sort"
)

// Protect marks a concept so Forget never removes it. Protecting an
// unknown label is a no-op.
func (s *Store) Protect(label string) {
	if _, ok := s.concepts[label]; ok {
		s.protected[label] = struct{}{}
	}
}

// Unprotect clears a concept's protection.
func (s *Store) Unprotect(label string) {
	delete(s.protected, label)
}

// IsProtected reports whether a concept is protected.
func (s *Store) IsProtected(label string) bool {
	_, ok := s.protected[label]
	return ok
}

// ListProtected returns the protected labels, sorted.
func (s *Store) ListProtected() []string {
	out := make([]string, 0, len(s.protected))
	for label := range s.protected {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

// ForgetSpec selects concepts for removal. The selectors union: an exact
// label, a glob pattern (path.Match syntax), and a usage threshold
// (matches concepts used at most Threshold times; zero disables the
// selector).
type ForgetSpec struct {
	Concept   string
	Pattern   string
	Threshold uint64

	// DryRun reports what would be removed without mutating the store.
	DryRun bool
}

// ForgetResult reports the outcome of one Forget call. Protected
// concepts are never removed and never counted; they are listed
// separately.
type ForgetResult struct {
	Removed     []string
	WouldRemove []string
	Protected   []string
	Count       int
}

// Forget removes the selected concepts and cascades to every fact in
// which a removed concept is the subject or the object. A malformed glob
// pattern fails before anything is selected.
func (s *Store) Forget(spec ForgetSpec) (ForgetResult, error) {
	if spec.Pattern != "" {
		// Surfaces ErrBadPattern before any selection happens.
		if _, err := path.Match(spec.Pattern, ""); err != nil {
			return ForgetResult{}, err
		}
	}

	var result ForgetResult
	var eligible []string

	for _, label := range s.conceptOrder {
		if !s.selects(spec, label) {
			continue
		}
		if s.IsProtected(label) {
			result.Protected = append(result.Protected, label)
			continue
		}
		eligible = append(eligible, label)
	}

	if spec.DryRun {
		result.WouldRemove = eligible
		result.Count = len(eligible)
		return result, nil
	}

	for _, label := range eligible {
		s.removeConcept(label)
	}
	result.Removed = eligible
	result.Count = len(eligible)
	return result, nil
}

func (s *Store) selects(spec ForgetSpec, label string) bool {
	if spec.Concept != "" && spec.Concept == label {
		return true
	}
	if spec.Pattern != "" {
		if ok, _ := path.Match(spec.Pattern, label); ok {
			return true
		}
	}
	if spec.Threshold > 0 && s.concepts[label].Uses <= spec.Threshold {
		return true
	}
	return false
}

// removeConcept deletes the concept and cascades to its facts.
func (s *Store) removeConcept(label string) {
	var cascade []FactID
	for _, id := range s.order {
		f := s.facts[id]
		if f.Subject == label || f.Object == label {
			cascade = append(cascade, id)
		}
	}
	for _, id := range cascade {
		s.RemoveFact(id)
	}

	delete(s.concepts, label)
	delete(s.protected, label)
	for i, l := range s.conceptOrder {
		if l == label {
			s.conceptOrder = append(s.conceptOrder[:i], s.conceptOrder[i+1:]...)
			break
		}
	}
}
