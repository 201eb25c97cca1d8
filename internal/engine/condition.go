// Package engine implements the pure graph logic of the questionnaire:
// condition evaluation, dynamic overlay resolution, page-local and
// cross-page traversal, answer validation, progress estimation and the
// two-phase template builder. It has no storage or transport concerns;
// persistence is reached only through the Loader and Store interfaces.
package engine

import (
	"reflect"

	"surveygraph/internal/model"
)

// Satisfied reports whether every condition holds against the given
// answers. A condition holds when the target question's answer equals
// the expected value, or contains it when the answer is a collection.
// An empty condition list is always satisfied.
func Satisfied(conditions []model.Condition, values map[string]any) bool {
	for _, c := range conditions {
		answer, ok := values[c.Question]
		if !ok || !valueMatches(answer, c.Value) {
			return false
		}
	}
	return true
}

func valueMatches(answer, expected any) bool {
	if reflect.DeepEqual(answer, expected) {
		return true
	}
	switch arr := answer.(type) {
	case []any:
		for _, v := range arr {
			if reflect.DeepEqual(v, expected) {
				return true
			}
		}
	case []string:
		s, ok := expected.(string)
		if !ok {
			return false
		}
		for _, v := range arr {
			if v == s {
				return true
			}
		}
	}
	return false
}

// valuePresent reports whether an answer counts as given. Absent, nil
// and the empty string are missing; false and 0 are answers.
func valuePresent(values map[string]any, question string) bool {
	v, ok := values[question]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr && s == "" {
		return false
	}
	return true
}
