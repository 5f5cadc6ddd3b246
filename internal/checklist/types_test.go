package checklist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestCheckValidate(t *testing.T) {
	tests := []struct {
		name    string
		check   Check
		wantErr string
	}{
		{"command ok", Check{Kind: KindCommand, Value: "make test"}, ""},
		{"command empty", Check{Kind: KindCommand}, "requires a command"},
		{"file ok", Check{Kind: KindFile, Value: "README.md"}, ""},
		{"not_file empty", Check{Kind: KindNotFile}, "requires a path"},
		{"assertion empty", Check{Kind: KindAssertion}, "requires a condition"},
		{"quality no criteria", Check{Kind: KindQuality, PassThreshold: 3}, "at least one criterion"},
		{
			"quality zero weight",
			Check{Kind: KindQuality, Criteria: []Criterion{{Name: "c", Weight: 0}}, PassThreshold: 3},
			"positive weight",
		},
		{
			"quality threshold out of range",
			Check{Kind: KindQuality, Criteria: []Criterion{{Name: "c", Weight: 1}}, PassThreshold: 6},
			"1-5 score range",
		},
		{"unknown kind", Check{Kind: "magic"}, "unknown check type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestNodeValidate_ExactlyOneVariant(t *testing.T) {
	node := Node{
		Item:  "both",
		Check: &Check{Kind: KindFile, Value: "a"},
		Group: []Node{{Item: "child", Check: &Check{Kind: KindFile, Value: "b"}}},
	}
	err := node.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of")
}

func TestNodeValidate_RecursesIntoGroups(t *testing.T) {
	node := Node{
		Item: "outer",
		AnyOf: []Node{
			{Item: "inner", Check: &Check{Kind: KindCommand}},
		},
	}
	err := node.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inner")
}

func TestLeaves_PathsInDocumentOrder(t *testing.T) {
	items := []Node{
		{
			Item: "tests",
			Group: []Node{
				{Item: "unit", Check: &Check{Kind: KindCommand, Value: "make unit"}},
				{
					Item: "either e2e",
					AnyOf: []Node{
						{Item: "smoke", Check: &Check{Kind: KindCommand, Value: "make smoke"}},
						{Item: "full", Check: &Check{Kind: KindCommand, Value: "make e2e"}},
					},
				},
			},
		},
		{Item: "readme", Check: &Check{Kind: KindFile, Value: "README.md"}},
	}

	leaves := Leaves(items)
	paths := make([]string, 0, len(leaves))
	for _, l := range leaves {
		paths = append(paths, l.Path)
	}
	assert.Equal(t, []string{
		"tests/unit",
		"tests/either e2e/smoke",
		"tests/either e2e/full",
		"readme",
	}, paths)
}

func TestNodeYAMLRoundTrip(t *testing.T) {
	src := `
- item: tests pass
  check:
    type: command
    value: "go test ./..."
- item: quality bar
  check:
    type: quality
    criteria:
      - name: clarity
        weight: 0.6
      - name: depth
        weight: 0.4
    pass_threshold: 3.5
- item: any artifact
  any_of:
    - item: binary
      check:
        type: file
        value: bin/app
    - item: archive
      check:
        type: file
        value: dist/app.tar.gz
`
	var items []Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &items))
	require.NoError(t, ValidateAll(items))

	assert.Equal(t, KindCommand, items[0].Check.Kind)
	assert.Equal(t, 3.5, items[1].Check.PassThreshold)
	assert.Len(t, items[2].AnyOf, 2)

	out, err := yaml.Marshal(items)
	require.NoError(t, err)
	var reparsed []Node
	require.NoError(t, yaml.Unmarshal(out, &reparsed))
	assert.Equal(t, items, reparsed)
}
