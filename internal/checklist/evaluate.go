package checklist

import (
	"fmt"
	"sort"
)

// Outcome is the three-valued result of evaluating a node. Assertion and
// quality leaves cannot be resolved internally; until the caller supplies a
// judgment they stay pending rather than being forced to a boolean.
type Outcome string

const (
	OutcomePass    Outcome = "pass"
	OutcomeFail    Outcome = "fail"
	OutcomePending Outcome = "pending"
)

// Judgment is an externally supplied verdict for an assertion leaf.
type Judgment struct {
	Passed bool `yaml:"passed" json:"passed"`
	// Confirmed records that a human (or judgment-capable actor) confirmed
	// the verdict. Overall checklist pass requires every assertion leaf to
	// be confirmed.
	Confirmed bool `yaml:"confirmed" json:"confirmed"`
}

// LeafEvidence carries the externally executed outcome for one leaf, keyed by
// the leaf's slash-joined item path. Only the field matching the leaf's kind
// is consulted.
type LeafEvidence struct {
	ExitCode *int               `yaml:"exit_code,omitempty" json:"exit_code,omitempty"`
	Exists   *bool              `yaml:"exists,omitempty" json:"exists,omitempty"`
	Judgment *Judgment          `yaml:"judgment,omitempty" json:"judgment,omitempty"`
	Scores   map[string]float64 `yaml:"scores,omitempty" json:"scores,omitempty"`
}

// Evidence maps leaf paths to their externally supplied outcomes.
type Evidence map[string]LeafEvidence

// Report mirrors one checklist node with its evaluation result. Every child
// is evaluated and reported even after an early failure, so the output always
// shows the full picture.
type Report struct {
	Item                 string   `json:"item"`
	Path                 string   `json:"path"`
	Outcome              Outcome  `json:"outcome"`
	Passed               bool     `json:"passed"`
	Evidence             string   `json:"evidence,omitempty"`
	RequiresConfirmation bool     `json:"requires_user_confirmation,omitempty"`
	Children             []Report `json:"children,omitempty"`
}

// Result is the full evaluation outcome.
type Result struct {
	// Passed is the overall verdict: the root must pass and every assertion
	// leaf must have received confirmation.
	Passed bool `json:"passed"`
	// Outcome is the root's three-valued outcome, before confirmations.
	Outcome Outcome `json:"outcome"`
	// Checklist mirrors the input tree.
	Checklist []Report `json:"checklist"`
	// Pending lists leaf paths that could not be machine-decided and await
	// external judgment.
	Pending []string `json:"pending,omitempty"`
	// Unconfirmed lists assertion leaf paths judged but not yet confirmed.
	Unconfirmed []string `json:"unconfirmed,omitempty"`
}

// Evaluate scores a checklist (an implicit AND over the top-level items)
// against the supplied evidence. Evaluation is bottom-up and total; the tree
// is assumed finite and acyclic by construction. Malformed checklists fail
// validation before any scoring.
func Evaluate(items []Node, ev Evidence) (*Result, error) {
	if err := ValidateAll(items); err != nil {
		return nil, err
	}

	result := &Result{}
	reports := make([]Report, 0, len(items))
	for i := range items {
		reports = append(reports, evalNode(&items[i], "", ev, result))
	}
	result.Checklist = reports
	result.Outcome = combineAll(reports)
	result.Passed = result.Outcome == OutcomePass && len(result.Unconfirmed) == 0
	return result, nil
}

func evalNode(n *Node, prefix string, ev Evidence, result *Result) Report {
	path := n.Item
	if prefix != "" {
		path = prefix + "/" + n.Item
	}
	report := Report{Item: n.Item, Path: path}

	switch {
	case len(n.Group) > 0:
		for i := range n.Group {
			report.Children = append(report.Children, evalNode(&n.Group[i], path, ev, result))
		}
		report.Outcome = combineAll(report.Children)
		report.Evidence = groupEvidence("AND", report.Children, len(report.Children))

	case len(n.AnyOf) > 0:
		for i := range n.AnyOf {
			report.Children = append(report.Children, evalNode(&n.AnyOf[i], path, ev, result))
		}
		report.Outcome = combineAny(report.Children)
		report.Evidence = groupEvidence("OR", report.Children, 1)

	default:
		leaf := evalLeaf(n.Check, ev[path])
		report.Outcome = leaf.outcome
		report.Evidence = leaf.evidence
		report.RequiresConfirmation = leaf.requiresConfirmation
		if leaf.outcome == OutcomePending {
			result.Pending = append(result.Pending, path)
		}
		if leaf.unconfirmed {
			result.Unconfirmed = append(result.Unconfirmed, path)
		}
	}

	report.Passed = report.Outcome == OutcomePass
	return report
}

// combineAll is AND: fail if any child fails, pending if none fail but some
// are undecided, pass otherwise.
func combineAll(children []Report) Outcome {
	pending := false
	for _, c := range children {
		switch c.Outcome {
		case OutcomeFail:
			return OutcomeFail
		case OutcomePending:
			pending = true
		}
	}
	if pending {
		return OutcomePending
	}
	return OutcomePass
}

// combineAny is OR: pass if any child passes, pending if none pass but some
// are undecided, fail otherwise.
func combineAny(children []Report) Outcome {
	pending := false
	for _, c := range children {
		switch c.Outcome {
		case OutcomePass:
			return OutcomePass
		case OutcomePending:
			pending = true
		}
	}
	if pending {
		return OutcomePending
	}
	return OutcomeFail
}

func groupEvidence(kind string, children []Report, need int) string {
	passed := 0
	for _, c := range children {
		if c.Outcome == OutcomePass {
			passed++
		}
	}
	if kind == "OR" {
		return fmt.Sprintf("OR group: %d/%d passed (need %d)", passed, len(children), need)
	}
	return fmt.Sprintf("AND group: %d/%d passed", passed, len(children))
}

type leafResult struct {
	outcome              Outcome
	evidence             string
	requiresConfirmation bool
	unconfirmed          bool
}

func evalLeaf(check *Check, ev LeafEvidence) leafResult {
	switch check.Kind {
	case KindCommand:
		if ev.ExitCode == nil {
			return leafResult{outcome: OutcomePending, evidence: "no command result supplied"}
		}
		if *ev.ExitCode == 0 {
			return leafResult{outcome: OutcomePass, evidence: "command exited 0"}
		}
		return leafResult{outcome: OutcomeFail, evidence: fmt.Sprintf("command exited %d", *ev.ExitCode)}

	case KindNotCommand:
		if ev.ExitCode == nil {
			return leafResult{outcome: OutcomePending, evidence: "no command result supplied"}
		}
		if *ev.ExitCode != 0 {
			return leafResult{outcome: OutcomePass, evidence: fmt.Sprintf("command exited %d as expected", *ev.ExitCode)}
		}
		return leafResult{outcome: OutcomeFail, evidence: "command exited 0 but was expected to fail"}

	case KindFile:
		if ev.Exists == nil {
			return leafResult{outcome: OutcomePending, evidence: "no existence evidence supplied"}
		}
		if *ev.Exists {
			return leafResult{outcome: OutcomePass, evidence: "file exists: " + check.Value}
		}
		return leafResult{outcome: OutcomeFail, evidence: "file missing: " + check.Value}

	case KindNotFile:
		if ev.Exists == nil {
			return leafResult{outcome: OutcomePending, evidence: "no existence evidence supplied"}
		}
		if !*ev.Exists {
			return leafResult{outcome: OutcomePass, evidence: "file absent as expected: " + check.Value}
		}
		return leafResult{outcome: OutcomeFail, evidence: "file exists but should not: " + check.Value}

	case KindAssertion:
		if ev.Judgment == nil {
			return leafResult{
				outcome:              OutcomePending,
				evidence:             "assertion requires external judgment: " + check.Value,
				requiresConfirmation: true,
			}
		}
		res := leafResult{requiresConfirmation: true, unconfirmed: !ev.Judgment.Confirmed}
		if ev.Judgment.Passed {
			res.outcome = OutcomePass
			res.evidence = "assertion judged true"
		} else {
			res.outcome = OutcomeFail
			res.evidence = "assertion judged false"
		}
		return res

	case KindQuality:
		return evalQuality(check, ev)
	}
	// Unreachable for validated checklists.
	return leafResult{outcome: OutcomeFail, evidence: fmt.Sprintf("unknown check type: %q", check.Kind)}
}

// evalQuality computes the weighted average of per-criterion scores,
// normalized by the weight sum, and compares it against the pass threshold.
// Missing scores leave the leaf pending for an external judge.
func evalQuality(check *Check, ev LeafEvidence) leafResult {
	if len(ev.Scores) == 0 {
		return leafResult{
			outcome:  OutcomePending,
			evidence: fmt.Sprintf("quality check requires external judgment (threshold: %v)", check.PassThreshold),
		}
	}
	var missing []string
	var weightedSum, weightSum float64
	for _, crit := range check.Criteria {
		score, ok := ev.Scores[crit.Name]
		if !ok {
			missing = append(missing, crit.Name)
			continue
		}
		weightedSum += score * crit.Weight
		weightSum += crit.Weight
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return leafResult{
			outcome:  OutcomePending,
			evidence: fmt.Sprintf("missing scores for criteria: %v", missing),
		}
	}
	average := weightedSum / weightSum
	evidence := fmt.Sprintf("weighted average %.2f (threshold %v)", average, check.PassThreshold)
	if average >= check.PassThreshold {
		return leafResult{outcome: OutcomePass, evidence: evidence}
	}
	return leafResult{outcome: OutcomeFail, evidence: evidence}
}
