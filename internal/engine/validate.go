package engine

import (
	"regexp"
	"strings"

	"surveygraph/internal/model"
)

// Validation error codes returned to clients, keyed by question id.
const (
	ErrCodeRequired  = "REQUIRED"
	ErrCodeBoolean   = "BOOLEAN"
	ErrCodeEmail     = "EMAIL"
	ErrCodeLocation  = "LOCATION"
	ErrCodeFilesType = "FILES must be array"
	ErrCodeFilesItem = "FILES item must have url property"
)

var emailPattern = regexp.MustCompile(`^(([^<>()\[\]\\.,;:\s@"]+(\.[^<>()\[\]\\.,;:\s@"]+)*)|(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z\-0-9]+\.)+[a-zA-Z]{2,}))$`)

// Validate checks submitted values against the effective questions of a
// page and returns per-question error codes. Empty map means valid.
// Missing means absent, nil or empty string; false and 0 are answers.
// A required question whose visibility condition fails is not required.
func Validate(questions []model.Question, values map[string]any) map[string]string {
	errs := make(map[string]string)
	for _, q := range questions {
		if !valuePresent(values, q.ID) {
			if q.Required && Satisfied(q.Condition, values) {
				errs[q.ID] = ErrCodeRequired
			}
			continue
		}
		v := values[q.ID]
		switch q.Type {
		case model.QuestionTypeSelect, model.QuestionTypeRadio,
			model.QuestionTypeInfoCard, model.QuestionTypeAddress:
			if !isOptionID(q, v) {
				errs[q.ID] = optionError(q)
			}
		case model.QuestionTypeMultiSelect:
			items, ok := anySlice(v)
			if !ok {
				errs[q.ID] = "ARRAY: " + strings.Join(q.OptionIDs(), ",")
				continue
			}
			for _, item := range items {
				if !isOptionID(q, item) {
					errs[q.ID] = optionError(q)
					break
				}
			}
		case model.QuestionTypeCheckbox:
			if _, ok := v.(bool); !ok {
				errs[q.ID] = ErrCodeBoolean
			}
		case model.QuestionTypeEmail:
			s, ok := v.(string)
			if !ok || !emailPattern.MatchString(strings.ToLower(s)) {
				errs[q.ID] = ErrCodeEmail
			}
		case model.QuestionTypeFiles:
			items, ok := anySlice(v)
			if !ok {
				errs[q.ID] = ErrCodeFilesType
				continue
			}
			for _, item := range items {
				if !hasFileURL(item) {
					errs[q.ID] = ErrCodeFilesItem
					break
				}
			}
		case model.QuestionTypeLocation:
			if !hasCoordinates(v) {
				errs[q.ID] = ErrCodeLocation
			}
		}
	}
	return errs
}

func isOptionID(q model.Question, v any) bool {
	s, ok := v.(string)
	return ok && q.Option(s) != nil
}

func optionError(q model.Question) string {
	return "OPTION: " + strings.Join(q.OptionIDs(), ",")
}

func anySlice(v any) ([]any, bool) {
	switch arr := v.(type) {
	case []any:
		return arr, true
	case []string:
		out := make([]any, len(arr))
		for i, s := range arr {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

func hasFileURL(item any) bool {
	m, ok := item.(map[string]any)
	if !ok {
		return false
	}
	url, ok := m["url"].(string)
	return ok && url != ""
}

// hasCoordinates digs for features[0].geometry.coordinates in a GeoJSON
// shaped value.
func hasCoordinates(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	features, ok := anySlice(m["features"])
	if !ok || len(features) == 0 {
		return false
	}
	feature, ok := features[0].(map[string]any)
	if !ok {
		return false
	}
	geometry, ok := feature["geometry"].(map[string]any)
	if !ok {
		return false
	}
	coords, ok := anySlice(geometry["coordinates"])
	return ok && len(coords) > 0
}
