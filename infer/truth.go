package infer

// Truth is the qualitative outcome of a derivation. TrueDefault is
// deliberately weaker than TrueCertain so downstream consumers can
// distinguish typical-case conclusions from certain ones.
type Truth int

const (
	// Unknown means no strategy reached a conclusion.
	Unknown Truth = iota
	// False means a strategy actively refuted the triple.
	False
	// TrueDefault means a typical-case rule concluded the triple.
	TrueDefault
	// TrueCertain means the triple is established.
	TrueCertain
)

// String returns the canonical truth label.
func (t Truth) String() string {
	switch t {
	case False:
		return "FALSE"
	case TrueDefault:
		return "TRUE_DEFAULT"
	case TrueCertain:
		return "TRUE_CERTAIN"
	default:
		return "UNKNOWN"
	}
}

// Result reports one derivation. Method names the strategy that
// concluded; Steps is the witnessing fact chain where one exists.
type Result struct {
	Truth  Truth
	Method string
	Steps  []string

	// InheritedFrom is the ancestor holding the property, for the
	// inheritance strategy.
	InheritedFrom string

	// Reason is set on refutations, e.g. "exception_applies".
	Reason string
}

// Known reports whether any strategy concluded.
func (r Result) Known() bool { return r.Truth != Unknown }
