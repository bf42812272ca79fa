package logic

import (
	"fmt"
	"strings"
)

// ErrMalformedStatement occurs when a fact string does not parse as
// `OP(arg, ...)`.
type ErrMalformedStatement struct {
	// Input is the rejected fact string.
	Input string

	// Reason describes what was missing or misplaced.
	Reason string
}

// Error implements the error interface.
func (e *ErrMalformedStatement) Error() string {
	return fmt.Sprintf("malformed statement %q: %s", e.Input, e.Reason)
}

// ParseStatement parses the canonical fact-string form `OP(a, b)`.
// Arguments prefixed with `?` become holes, everything else becomes a
// literal. Whitespace around the operator and arguments is ignored;
// nesting is not supported, compounds are built programmatically.
func ParseStatement(input string) (*Statement, error) {
	open := strings.IndexByte(input, '(')
	if open < 0 {
		return nil, &ErrMalformedStatement{Input: input, Reason: "missing opening parenthesis"}
	}

	operator := strings.TrimSpace(input[:open])
	if operator == "" {
		return nil, &ErrMalformedStatement{Input: input, Reason: "missing operator"}
	}

	rest := input[open+1:]
	close := strings.LastIndexByte(rest, ')')
	if close < 0 || strings.TrimSpace(rest[close+1:]) != "" {
		return nil, &ErrMalformedStatement{Input: input, Reason: "missing closing parenthesis"}
	}

	body := strings.TrimSpace(rest[:close])
	if body == "" {
		return NewStatement(operator), nil
	}

	raw := strings.Split(body, ",")
	args := make([]Term, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			return nil, &ErrMalformedStatement{Input: input, Reason: "empty argument"}
		}
		if strings.HasPrefix(r, "?") {
			name := r[1:]
			if name == "" {
				return nil, &ErrMalformedStatement{Input: input, Reason: "unnamed hole"}
			}
			args = append(args, Var(name))
			continue
		}
		args = append(args, Lit(r))
	}

	return NewStatement(operator, args...), nil
}
