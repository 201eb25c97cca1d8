package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveygraph/internal/model"
)

func strptr(s string) *string { return &s }
func boolptr(b bool) *bool    { return &b }

func TestResolveQuestionNoPatches(t *testing.T) {
	q := model.Question{ID: "q1", Title: "Original"}
	got, removed := ResolveQuestion(q, map[string]any{})
	assert.False(t, removed)
	assert.Equal(t, "Original", got.Title)
}

func TestResolveQuestionAppliesMatchingPatch(t *testing.T) {
	q := model.Question{
		ID:    "q1",
		Title: "Original",
		DynamicFields: []model.Patch{
			{
				Condition: model.Condition{Question: "q0", Value: "yes"},
				Values:    model.PatchValues{Title: strptr("Patched"), Required: boolptr(true)},
			},
		},
	}

	got, removed := ResolveQuestion(q, map[string]any{"q0": "yes"})
	assert.False(t, removed)
	assert.Equal(t, "Patched", got.Title)
	assert.True(t, got.Required)

	got, removed = ResolveQuestion(q, map[string]any{"q0": "no"})
	assert.False(t, removed)
	assert.Equal(t, "Original", got.Title)
}

func TestResolveQuestionLaterPatchWins(t *testing.T) {
	q := model.Question{
		ID: "q1",
		DynamicFields: []model.Patch{
			{
				Condition: model.Condition{Question: "q0", Value: "yes"},
				Values:    model.PatchValues{Title: strptr("First")},
			},
			{
				Condition: model.Condition{Question: "q0", Value: "yes"},
				Values:    model.PatchValues{Title: strptr("Second")},
			},
		},
	}
	got, _ := ResolveQuestion(q, map[string]any{"q0": "yes"})
	assert.Equal(t, "Second", got.Title)
}

func TestResolveQuestionRemoval(t *testing.T) {
	q := model.Question{
		ID: "q1",
		DynamicFields: []model.Patch{
			{
				Condition: model.Condition{Question: "q0", Value: "none"},
				Values:    model.PatchValues{Remove: true},
			},
		},
	}

	_, removed := ResolveQuestion(q, map[string]any{"q0": "none"})
	assert.True(t, removed)

	_, removed = ResolveQuestion(q, map[string]any{"q0": "some"})
	assert.False(t, removed)
}

func TestResolveQuestionOptionSubset(t *testing.T) {
	q := model.Question{
		ID:   "q1",
		Type: model.QuestionTypeSelect,
		Options: []model.Option{
			{ID: "a", Title: "A"},
			{ID: "b", Title: "B"},
			{ID: "c", Title: "C"},
		},
		DynamicFields: []model.Patch{
			{
				Condition: model.Condition{Question: "q0", Value: "narrow"},
				Values:    model.PatchValues{Options: []string{"c", "a", "ghost"}},
			},
		},
	}

	got, _ := ResolveQuestion(q, map[string]any{"q0": "narrow"})
	require.Len(t, got.Options, 2)
	assert.Equal(t, "c", got.Options[0].ID)
	assert.Equal(t, "a", got.Options[1].ID)

	// input untouched
	assert.Len(t, q.Options, 3)
}

func TestResolvePage(t *testing.T) {
	p := model.Page{
		ID:    "p1",
		Title: "Original",
		DynamicFields: []model.Patch{
			{
				Condition: model.Condition{Question: "q0", Value: "yes"},
				Values:    model.PatchValues{Title: strptr("Patched")},
			},
		},
	}

	got := ResolvePage(p, map[string]any{"q0": "yes"})
	assert.Equal(t, "Patched", got.Title)

	got = ResolvePage(p, map[string]any{})
	assert.Equal(t, "Original", got.Title)
}
