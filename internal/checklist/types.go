// Package checklist models the nested completion checklist and evaluates it
// against externally supplied evidence. Leaf verification (running commands,
// checking files, judging quality) happens outside this package; the
// evaluator only aggregates outcomes, bottom-up and without short-circuit.
package checklist

import (
	"fmt"
	"strings"
)

// Kind tags a leaf check. The variant is closed: every kind's required fields
// are checked at construction/validation time, not at evaluation time.
type Kind string

const (
	// KindCommand passes iff the supplied exit code is zero.
	KindCommand Kind = "command"
	// KindNotCommand passes iff the supplied exit code is non-zero.
	KindNotCommand Kind = "not_command"
	// KindFile passes iff the path exists.
	KindFile Kind = "file"
	// KindNotFile passes iff the path does not exist.
	KindNotFile Kind = "not_file"
	// KindAssertion passes iff an external judgment says so; the leaf is
	// additionally flagged as requiring user confirmation.
	KindAssertion Kind = "assertion"
	// KindQuality passes iff the normalized weighted average of per-criterion
	// scores meets the pass threshold. Scores come from an external judge.
	KindQuality Kind = "quality"
)

// Criterion is one weighted axis of a quality check. Weights sum
// informatively, not necessarily to 1; evaluation normalizes by the weight sum.
type Criterion struct {
	Name   string  `yaml:"name" json:"name"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// Check is a leaf verification.
type Check struct {
	Kind Kind `yaml:"type" json:"type"`
	// Value carries the command string, the path, or the natural-language
	// condition, depending on Kind.
	Value         string      `yaml:"value,omitempty" json:"value,omitempty"`
	Criteria      []Criterion `yaml:"criteria,omitempty" json:"criteria,omitempty"`
	PassThreshold float64     `yaml:"pass_threshold,omitempty" json:"pass_threshold,omitempty"`
}

// Validate enforces the closed-variant field requirements.
func (c *Check) Validate() error {
	switch c.Kind {
	case KindCommand, KindNotCommand:
		if strings.TrimSpace(c.Value) == "" {
			return fmt.Errorf("%s check requires a command value", c.Kind)
		}
	case KindFile, KindNotFile:
		if strings.TrimSpace(c.Value) == "" {
			return fmt.Errorf("%s check requires a path value", c.Kind)
		}
	case KindAssertion:
		if strings.TrimSpace(c.Value) == "" {
			return fmt.Errorf("assertion check requires a condition value")
		}
	case KindQuality:
		if len(c.Criteria) == 0 {
			return fmt.Errorf("quality check requires at least one criterion")
		}
		for _, crit := range c.Criteria {
			if crit.Name == "" {
				return fmt.Errorf("quality criterion requires a name")
			}
			if crit.Weight <= 0 {
				return fmt.Errorf("quality criterion %q requires a positive weight", crit.Name)
			}
		}
		if c.PassThreshold < 1 || c.PassThreshold > 5 {
			return fmt.Errorf("quality pass_threshold must be within the 1-5 score range, got %v", c.PassThreshold)
		}
	default:
		return fmt.Errorf("unknown check type: %q", c.Kind)
	}
	return nil
}

// Node is one item in the checklist tree. Exactly one of Group (AND: all
// children must pass), AnyOf (OR: at least one child must pass), or Check
// (leaf) must be set.
type Node struct {
	Item  string `yaml:"item" json:"item"`
	Group []Node `yaml:"group,omitempty" json:"group,omitempty"`
	AnyOf []Node `yaml:"any_of,omitempty" json:"any_of,omitempty"`
	Check *Check `yaml:"check,omitempty" json:"check,omitempty"`
}

// Validate checks the node and its subtree. Malformed checklists are a
// structural error detected at write time.
func (n *Node) Validate() error {
	if n.Item == "" {
		return fmt.Errorf("checklist item requires a name")
	}
	set := 0
	if len(n.Group) > 0 {
		set++
	}
	if len(n.AnyOf) > 0 {
		set++
	}
	if n.Check != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("checklist item %q must have exactly one of group, any_of, or check", n.Item)
	}
	if n.Check != nil {
		if err := n.Check.Validate(); err != nil {
			return fmt.Errorf("checklist item %q: %w", n.Item, err)
		}
	}
	for i := range n.Group {
		if err := n.Group[i].Validate(); err != nil {
			return err
		}
	}
	for i := range n.AnyOf {
		if err := n.AnyOf[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAll validates a top-level checklist (an implicit AND group).
func ValidateAll(items []Node) error {
	if len(items) == 0 {
		return fmt.Errorf("checklist must have at least one item")
	}
	for i := range items {
		if err := items[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Leaves returns every leaf node paired with its slash-joined path from the
// root, in document order. Paths are the evidence keys.
func Leaves(items []Node) []Leaf {
	var out []Leaf
	var walk func(nodes []Node, prefix string)
	walk = func(nodes []Node, prefix string) {
		for i := range nodes {
			n := &nodes[i]
			path := n.Item
			if prefix != "" {
				path = prefix + "/" + n.Item
			}
			switch {
			case n.Check != nil:
				out = append(out, Leaf{Path: path, Check: n.Check})
			case len(n.Group) > 0:
				walk(n.Group, path)
			case len(n.AnyOf) > 0:
				walk(n.AnyOf, path)
			}
		}
	}
	walk(items, "")
	return out
}

// Leaf pairs a leaf check with its evidence key.
type Leaf struct {
	Path  string
	Check *Check
}
