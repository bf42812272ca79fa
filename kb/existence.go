package kb

import "fmt"

// Existence is the 5-point confidence scale attached to every fact. Levels
// only move upward, through UpgradeExistence; version unification on insert
// compares against the best level already stored for the same triple.
type Existence int8

const (
	// Impossible marks a fact ruled out entirely.
	Impossible Existence = -127
	// Unproven marks a fact asserted but unsupported.
	Unproven Existence = -64
	// Possible marks a fact that is consistent with the store.
	Possible Existence = 0
	// Demonstrated marks a fact with supporting derivation.
	Demonstrated Existence = 64
	// Certain is the default level for directly asserted facts.
	Certain Existence = 127
)

// Valid reports whether e is one of the five canonical levels.
func (e Existence) Valid() bool {
	switch e {
	case Impossible, Unproven, Possible, Demonstrated, Certain:
		return true
	default:
		return false
	}
}

// String returns the canonical level name, or the raw value for
// non-canonical levels.
func (e Existence) String() string {
	switch e {
	case Impossible:
		return "IMPOSSIBLE"
	case Unproven:
		return "UNPROVEN"
	case Possible:
		return "POSSIBLE"
	case Demonstrated:
		return "DEMONSTRATED"
	case Certain:
		return "CERTAIN"
	default:
		return fmt.Sprintf("EXISTENCE(%d)", int8(e))
	}
}

// ParseExistence parses a canonical level name.
func ParseExistence(name string) (Existence, error) {
	switch name {
	case "IMPOSSIBLE":
		return Impossible, nil
	case "UNPROVEN":
		return Unproven, nil
	case "POSSIBLE":
		return Possible, nil
	case "DEMONSTRATED":
		return Demonstrated, nil
	case "CERTAIN":
		return Certain, nil
	default:
		return 0, fmt.Errorf("unknown existence level %q", name)
	}
}

// Confidence maps the level onto the [0,1] confidence used by proof
// scoring. Direct certain facts anchor at 1.0 so unification decay is the
// only source of attenuation on fully grounded chains.
func (e Existence) Confidence() float64 {
	switch {
	case e >= Certain:
		return 1.0
	case e >= Demonstrated:
		return 0.85
	case e >= Possible:
		return 0.5
	case e >= Unproven:
		return 0.25
	default:
		return 0.0
	}
}
