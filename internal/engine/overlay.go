package engine

import "surveygraph/internal/model"

// ResolveQuestion applies every matching dynamic patch over q in stored
// order, later patches overriding earlier ones, and reports whether a
// matching patch removed the question from its page. The input is not
// mutated.
func ResolveQuestion(q model.Question, values map[string]any) (model.Question, bool) {
	if len(q.DynamicFields) == 0 {
		return q, false
	}
	out := q
	out.Options = append([]model.Option(nil), q.Options...)
	removed := false
	for _, p := range q.DynamicFields {
		if !Satisfied([]model.Condition{p.Condition}, values) {
			continue
		}
		if p.Values.Remove {
			removed = true
		}
		applyPatch(&out, p.Values, &q)
	}
	return out, removed
}

// ResolvePage applies the page's dynamic patches the same way. Pages
// cannot be removed; the sentinel is ignored here.
func ResolvePage(p model.Page, values map[string]any) model.Page {
	out := p
	for _, patch := range p.DynamicFields {
		if !Satisfied([]model.Condition{patch.Condition}, values) {
			continue
		}
		if patch.Values.Title != nil {
			out.Title = *patch.Values.Title
		}
		if patch.Values.Description != nil {
			out.Description = *patch.Values.Description
		}
	}
	return out
}

func applyPatch(q *model.Question, v model.PatchValues, orig *model.Question) {
	if v.Title != nil {
		q.Title = *v.Title
	}
	if v.Description != nil {
		q.Description = *v.Description
	}
	if v.Hint != nil {
		q.Hint = *v.Hint
	}
	if v.Required != nil {
		q.Required = *v.Required
	}
	if v.Options != nil {
		// Restrict and reorder to the patched subset. Lookups go against
		// the full option set so stacked patches cannot starve each other.
		opts := make([]model.Option, 0, len(v.Options))
		for _, id := range v.Options {
			if o := orig.Option(id); o != nil {
				opts = append(opts, *o)
			}
		}
		q.Options = opts
	}
}
