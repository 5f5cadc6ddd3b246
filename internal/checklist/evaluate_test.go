package checklist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int    { return &v }
func boolp(v bool) *bool { return &v }

func TestEvaluate_ANDNoShortCircuit(t *testing.T) {
	items := []Node{
		{
			Item: "build",
			Group: []Node{
				{Item: "compiles", Check: &Check{Kind: KindCommand, Value: "go build ./..."}},
				{Item: "tests", Check: &Check{Kind: KindCommand, Value: "go test ./..."}},
			},
		},
	}
	ev := Evidence{
		"build/compiles": {ExitCode: intp(0)},
		"build/tests":    {ExitCode: intp(1)},
	}

	result, err := Evaluate(items, ev)
	require.NoError(t, err)

	assert.False(t, result.Passed)
	assert.Equal(t, OutcomeFail, result.Outcome)

	// Both children are present in output despite the early failure.
	root := result.Checklist[0]
	require.Len(t, root.Children, 2)
	assert.Equal(t, OutcomePass, root.Children[0].Outcome)
	assert.Equal(t, OutcomeFail, root.Children[1].Outcome)
	assert.Equal(t, "AND group: 1/2 passed", root.Evidence)
}

func TestEvaluate_AnyOfPassesWithOneChild(t *testing.T) {
	items := []Node{
		{
			Item: "artifact",
			AnyOf: []Node{
				{Item: "binary", Check: &Check{Kind: KindFile, Value: "bin/app"}},
				{Item: "archive", Check: &Check{Kind: KindFile, Value: "dist/app.tar.gz"}},
			},
		},
	}
	ev := Evidence{
		"artifact/binary":  {Exists: boolp(false)},
		"artifact/archive": {Exists: boolp(true)},
	}

	result, err := Evaluate(items, ev)
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Equal(t, "OR group: 1/2 passed (need 1)", result.Checklist[0].Evidence)
}

func TestEvaluate_NotCommandAndNotFile(t *testing.T) {
	items := []Node{
		{Item: "lint clean", Check: &Check{Kind: KindNotCommand, Value: "grep -r TODO src/"}},
		{Item: "no debug dump", Check: &Check{Kind: KindNotFile, Value: "debug.log"}},
	}
	ev := Evidence{
		"lint clean":    {ExitCode: intp(1)},
		"no debug dump": {Exists: boolp(false)},
	}

	result, err := Evaluate(items, ev)
	require.NoError(t, err)
	assert.True(t, result.Passed)
}

func TestEvaluate_QualityWeightedAverage(t *testing.T) {
	// Weights {0.4, 0.4, 0.2}, scores {4, 4, 2}:
	// weighted sum 1.6+1.6+0.4 = 3.6 >= threshold 3.5 -> passes.
	items := []Node{
		{
			Item: "prose quality",
			Check: &Check{
				Kind: KindQuality,
				Criteria: []Criterion{
					{Name: "clarity", Weight: 0.4},
					{Name: "accuracy", Weight: 0.4},
					{Name: "style", Weight: 0.2},
				},
				PassThreshold: 3.5,
			},
		},
	}
	ev := Evidence{
		"prose quality": {Scores: map[string]float64{"clarity": 4, "accuracy": 4, "style": 2}},
	}

	result, err := Evaluate(items, ev)
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Contains(t, result.Checklist[0].Evidence, "3.60")
}

func TestEvaluate_QualityNormalizesWeights(t *testing.T) {
	// Weights need not sum to 1: {2, 2} with scores {4, 2} -> 3.0.
	items := []Node{
		{
			Item: "docs",
			Check: &Check{
				Kind: KindQuality,
				Criteria: []Criterion{
					{Name: "coverage", Weight: 2},
					{Name: "depth", Weight: 2},
				},
				PassThreshold: 3.5,
			},
		},
	}
	ev := Evidence{"docs": {Scores: map[string]float64{"coverage": 4, "depth": 2}}}

	result, err := Evaluate(items, ev)
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Contains(t, result.Checklist[0].Evidence, "3.00")
}

func TestEvaluate_QualityWithoutScoresIsPending(t *testing.T) {
	items := []Node{
		{
			Item: "readability",
			Check: &Check{
				Kind:          KindQuality,
				Criteria:      []Criterion{{Name: "clarity", Weight: 1}},
				PassThreshold: 3,
			},
		},
	}

	result, err := Evaluate(items, Evidence{})
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Equal(t, OutcomePending, result.Outcome)
	assert.Equal(t, []string{"readability"}, result.Pending)
}

func TestEvaluate_AssertionRequiresConfirmation(t *testing.T) {
	items := []Node{
		{Item: "matches intent", Check: &Check{Kind: KindAssertion, Value: "output matches the stated goal"}},
	}

	// No judgment: pending.
	result, err := Evaluate(items, Evidence{})
	require.NoError(t, err)
	assert.Equal(t, OutcomePending, result.Outcome)
	assert.True(t, result.Checklist[0].RequiresConfirmation)
	assert.Equal(t, []string{"matches intent"}, result.Pending)

	// Judged pass but unconfirmed: root passes, overall verdict withheld.
	result, err = Evaluate(items, Evidence{
		"matches intent": {Judgment: &Judgment{Passed: true}},
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomePass, result.Outcome)
	assert.False(t, result.Passed)
	assert.Equal(t, []string{"matches intent"}, result.Unconfirmed)

	// Judged pass and confirmed: overall pass.
	result, err = Evaluate(items, Evidence{
		"matches intent": {Judgment: &Judgment{Passed: true, Confirmed: true}},
	})
	require.NoError(t, err)
	assert.True(t, result.Passed)
}

func TestEvaluate_PendingDoesNotFailAND(t *testing.T) {
	items := []Node{
		{
			Item: "done",
			Group: []Node{
				{Item: "tests", Check: &Check{Kind: KindCommand, Value: "make test"}},
				{
					Item: "quality",
					Check: &Check{
						Kind:          KindQuality,
						Criteria:      []Criterion{{Name: "clarity", Weight: 1}},
						PassThreshold: 3,
					},
				},
			},
		},
	}
	ev := Evidence{"done/tests": {ExitCode: intp(0)}}

	result, err := Evaluate(items, ev)
	require.NoError(t, err)
	assert.Equal(t, OutcomePending, result.Outcome)
	assert.False(t, result.Passed)
	assert.Equal(t, []string{"done/quality"}, result.Pending)
}

func TestEvaluate_MalformedChecklist(t *testing.T) {
	_, err := Evaluate([]Node{{Item: "empty"}}, Evidence{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of")

	_, err = Evaluate(nil, Evidence{})
	assert.Error(t, err)
}
