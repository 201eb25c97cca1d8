package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"surveygraph/internal/model"
)

func TestValidateRequired(t *testing.T) {
	questions := []model.Question{
		{ID: "q1", Type: model.QuestionTypeInput, Required: true},
		{ID: "q2", Type: model.QuestionTypeInput, Required: false},
	}

	errs := Validate(questions, map[string]any{})
	assert.Equal(t, map[string]string{"q1": "REQUIRED"}, errs)

	errs = Validate(questions, map[string]any{"q1": ""})
	assert.Equal(t, map[string]string{"q1": "REQUIRED"}, errs, "empty string is missing")

	errs = Validate(questions, map[string]any{"q1": "answered"})
	assert.Empty(t, errs)
}

func TestValidateRequiredGatedByCondition(t *testing.T) {
	questions := []model.Question{
		{
			ID: "q", Type: model.QuestionTypeInput, Required: true,
			Condition: []model.Condition{{Question: "q0", Value: "X"}},
		},
	}

	errs := Validate(questions, map[string]any{"q0": "Y"})
	assert.Empty(t, errs, "invisible question is not required")

	errs = Validate(questions, map[string]any{"q0": "X"})
	assert.Equal(t, map[string]string{"q": "REQUIRED"}, errs)
}

func TestValidateChoice(t *testing.T) {
	q := model.Question{
		ID: "q1", Type: model.QuestionTypeSelect,
		Options: []model.Option{{ID: "10"}, {ID: "11"}, {ID: "12"}},
	}

	errs := Validate([]model.Question{q}, map[string]any{"q1": "11"})
	assert.Empty(t, errs)

	errs = Validate([]model.Question{q}, map[string]any{"q1": "99"})
	assert.Equal(t, map[string]string{"q1": "OPTION: 10,11,12"}, errs)

	errs = Validate([]model.Question{q}, map[string]any{"q1": float64(11)})
	assert.Equal(t, map[string]string{"q1": "OPTION: 10,11,12"}, errs, "non-string answer")
}

func TestValidateMultiSelect(t *testing.T) {
	q := model.Question{
		ID: "q1", Type: model.QuestionTypeMultiSelect,
		Options: []model.Option{{ID: "10"}, {ID: "11"}, {ID: "12"}},
	}

	errs := Validate([]model.Question{q}, map[string]any{"q1": []any{"10", "12"}})
	assert.Empty(t, errs)

	errs = Validate([]model.Question{q}, map[string]any{"q1": []any{"10", "99"}})
	assert.Equal(t, map[string]string{"q1": "OPTION: 10,11,12"}, errs)

	errs = Validate([]model.Question{q}, map[string]any{"q1": "10"})
	assert.Equal(t, map[string]string{"q1": "ARRAY: 10,11,12"}, errs)
}

func TestValidateCheckbox(t *testing.T) {
	q := model.Question{ID: "q1", Type: model.QuestionTypeCheckbox}

	assert.Empty(t, Validate([]model.Question{q}, map[string]any{"q1": true}))
	assert.Empty(t, Validate([]model.Question{q}, map[string]any{"q1": false}))
	assert.Equal(t, map[string]string{"q1": "BOOLEAN"},
		Validate([]model.Question{q}, map[string]any{"q1": "yes"}))
}

func TestValidateEmail(t *testing.T) {
	q := model.Question{ID: "q1", Type: model.QuestionTypeEmail}

	valid := []string{"user@example.com", "First.Last@sub.domain.org", "a@[127.0.0.1]"}
	for _, s := range valid {
		assert.Empty(t, Validate([]model.Question{q}, map[string]any{"q1": s}), s)
	}

	invalid := []string{"not-an-email", "user@", "@example.com", "user@localhost"}
	for _, s := range invalid {
		assert.Equal(t, map[string]string{"q1": "EMAIL"},
			Validate([]model.Question{q}, map[string]any{"q1": s}), s)
	}
}

func TestValidateFiles(t *testing.T) {
	q := model.Question{ID: "q1", Type: model.QuestionTypeFiles}

	errs := Validate([]model.Question{q}, map[string]any{
		"q1": []any{map[string]any{"url": "https://cdn/x.pdf", "name": "x.pdf"}},
	})
	assert.Empty(t, errs)

	errs = Validate([]model.Question{q}, map[string]any{"q1": "x.pdf"})
	assert.Equal(t, map[string]string{"q1": "FILES must be array"}, errs)

	errs = Validate([]model.Question{q}, map[string]any{
		"q1": []any{map[string]any{"name": "x.pdf"}},
	})
	assert.Equal(t, map[string]string{"q1": "FILES item must have url property"}, errs)
}

func TestValidateLocation(t *testing.T) {
	q := model.Question{ID: "q1", Type: model.QuestionTypeLocation}

	geo := map[string]any{
		"features": []any{map[string]any{
			"geometry": map[string]any{"coordinates": []any{25.28, 54.69}},
		}},
	}
	assert.Empty(t, Validate([]model.Question{q}, map[string]any{"q1": geo}))

	assert.Equal(t, map[string]string{"q1": "LOCATION"},
		Validate([]model.Question{q}, map[string]any{"q1": map[string]any{"features": []any{}}}))
}

func TestValidateFreeTextTypesAcceptAnything(t *testing.T) {
	questions := []model.Question{
		{ID: "t", Type: model.QuestionTypeText},
		{ID: "n", Type: model.QuestionTypeNumber},
		{ID: "d", Type: model.QuestionTypeDate},
	}
	errs := Validate(questions, map[string]any{"t": "free", "n": float64(42), "d": "2026-01-01"})
	assert.Empty(t, errs)
}
