package logic

import "fmt"

// NodeRecord is the serializable form of a statement tree. Kind selects
// the shape: "STATEMENT" uses Operator and Args, "AND"/"OR"/"NOT" use
// Parts, "REF" uses Name.
type NodeRecord struct {
	Kind     string       `json:"kind"`
	Operator string       `json:"operator,omitempty"`
	Args     []TermRecord `json:"args,omitempty"`
	Parts    []NodeRecord `json:"parts,omitempty"`
	Name     string       `json:"name,omitempty"`
}

// TermRecord is the serializable form of a term. A non-empty Hole is a
// variable; otherwise Value is taken as a literal.
type TermRecord struct {
	Value string `json:"value,omitempty"`
	Hole  string `json:"hole,omitempty"`
}

const (
	kindStatement = "STATEMENT"
	kindRef       = "REF"
)

// NewNodeRecord captures a statement tree as a record.
func NewNodeRecord(n Node) NodeRecord {
	switch v := n.(type) {
	case *Statement:
		args := make([]TermRecord, len(v.Args))
		for i, a := range v.Args {
			switch t := a.(type) {
			case Hole:
				args[i] = TermRecord{Hole: t.Name}
			case Literal:
				args[i] = TermRecord{Value: t.Value}
			}
		}
		return NodeRecord{Kind: kindStatement, Operator: v.Operator, Args: args}
	case *Compound:
		parts := make([]NodeRecord, len(v.Parts))
		for i, p := range v.Parts {
			parts[i] = NewNodeRecord(p)
		}
		return NodeRecord{Kind: v.Kind.String(), Parts: parts}
	case *Ref:
		return NodeRecord{Kind: kindRef, Name: v.Name}
	}
	return NodeRecord{}
}

// Node rebuilds the statement tree the record describes.
func (r NodeRecord) Node() (Node, error) {
	switch r.Kind {
	case kindStatement:
		args := make([]Term, len(r.Args))
		for i, a := range r.Args {
			if a.Hole != "" {
				args[i] = Var(a.Hole)
			} else {
				args[i] = Lit(a.Value)
			}
		}
		return NewStatement(r.Operator, args...), nil
	case "AND", "OR", "NOT":
		kind := And
		switch r.Kind {
		case "OR":
			kind = Or
		case "NOT":
			kind = Not
		}
		parts := make([]Node, len(r.Parts))
		for i, p := range r.Parts {
			n, err := p.Node()
			if err != nil {
				return nil, err
			}
			parts[i] = n
		}
		return NewCompound(kind, parts...), nil
	case kindRef:
		return NewRef(r.Name), nil
	}
	return nil, fmt.Errorf("unknown node kind %q", r.Kind)
}
