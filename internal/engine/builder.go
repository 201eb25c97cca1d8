package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"surveygraph/internal/model"
)

// Store persists graph entities for the builder.
type Store interface {
	CreateSurvey(ctx context.Context, s *model.Survey) (string, error)
	CreatePage(ctx context.Context, p *model.Page) (string, error)
	UpdatePage(ctx context.Context, p *model.Page) error
	CreateQuestion(ctx context.Context, q *model.Question) (string, error)
	UpdateQuestion(ctx context.Context, q *model.Question) error
}

// Builder materializes symbolic survey templates into stored graphs.
//
// Phase one creates pages and bare questions so every key has a real
// id. Phase two mints option ids, then resolves next-question links,
// conditions and dynamic patches through the key map and updates the
// stored documents. Any dangling key fails the whole build.
type Builder struct {
	store Store
}

func NewBuilder(store Store) *Builder {
	return &Builder{store: store}
}

// Build creates one survey from its template and returns it. priority
// orders the survey among its siblings.
func (b *Builder) Build(ctx context.Context, tpl model.SurveyTemplate, priority int) (*model.Survey, error) {
	byKey := make(map[string]*model.Question)
	pages := make([]*model.Page, 0, len(tpl.Pages))

	// Phase one: skeleton.
	firstPage := ""
	for _, pt := range tpl.Pages {
		page := &model.Page{Title: pt.Title, Description: pt.Description}
		pageID, err := b.store.CreatePage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("creating page %q: %w", pt.Title, err)
		}
		page.ID = pageID
		pages = append(pages, page)
		if firstPage == "" {
			firstPage = pageID
		}

		for qi, qt := range pt.Questions {
			if qt.Key == "" {
				return nil, fmt.Errorf("page %q question %d: empty key", pt.Title, qi)
			}
			if _, dup := byKey[qt.Key]; dup {
				return nil, fmt.Errorf("duplicate question key %q", qt.Key)
			}
			q := &model.Question{
				PageID:         pageID,
				Type:           qt.Type,
				Title:          qt.Title,
				Description:    qt.Description,
				Hint:           qt.Hint,
				Required:       qt.Required,
				RiskEvaluation: qt.RiskEvaluation,
				AuthRelation:   qt.AuthRelation,
				Priority:       len(pt.Questions) - qi,
			}
			id, err := b.store.CreateQuestion(ctx, q)
			if err != nil {
				return nil, fmt.Errorf("creating question %q: %w", qt.Key, err)
			}
			q.ID = id
			byKey[qt.Key] = q
		}
	}

	survey := &model.Survey{
		Title:       tpl.Title,
		Description: tpl.Description,
		Icon:        tpl.Icon,
		AuthType:    tpl.AuthType,
		Priority:    priority,
		FirstPage:   firstPage,
	}
	surveyID, err := b.store.CreateSurvey(ctx, survey)
	if err != nil {
		return nil, fmt.Errorf("creating survey %q: %w", tpl.Title, err)
	}
	survey.ID = surveyID

	// Phase two, options first: every option needs an id before any
	// condition can be resolved through it.
	for _, pt := range tpl.Pages {
		for _, qt := range pt.Questions {
			q := byKey[qt.Key]
			for oi, ot := range qt.Options {
				next := ""
				if ot.NextQuestion != "" {
					target, ok := byKey[ot.NextQuestion]
					if !ok {
						return nil, fmt.Errorf("question %q option %d: unknown question key %q", qt.Key, oi, ot.NextQuestion)
					}
					next = target.ID
				}
				q.Options = append(q.Options, model.Option{
					ID:           uuid.NewString(),
					Title:        ot.Title,
					Priority:     len(qt.Options) - oi,
					NextQuestion: next,
				})
			}
		}
	}

	// Phase two, links: next-question pointers, conditions, patches.
	for _, pt := range tpl.Pages {
		for _, qt := range pt.Questions {
			q := byKey[qt.Key]
			q.SurveyID = surveyID

			if qt.NextQuestion != "" {
				target, ok := byKey[qt.NextQuestion]
				if !ok {
					return nil, fmt.Errorf("question %q: unknown next question key %q", qt.Key, qt.NextQuestion)
				}
				q.NextQuestion = target.ID
			}
			if qt.Condition != nil {
				cond, err := b.resolveCondition(*qt.Condition, byKey, q.ID, qt.Key)
				if err != nil {
					return nil, err
				}
				q.Condition = []model.Condition{cond}
			}
			for _, dt := range qt.DynamicFields {
				patch, err := b.resolvePatch(dt, byKey, q, qt.Key)
				if err != nil {
					return nil, err
				}
				q.DynamicFields = append(q.DynamicFields, patch)
			}
			if err := b.store.UpdateQuestion(ctx, q); err != nil {
				return nil, fmt.Errorf("updating question %q: %w", qt.Key, err)
			}
		}
	}

	for pi, pt := range tpl.Pages {
		if len(pt.DynamicFields) == 0 {
			continue
		}
		page := pages[pi]
		for _, dt := range pt.DynamicFields {
			cond, err := b.resolveCondition(dt.Condition, byKey, "", "page "+pt.Title)
			if err != nil {
				return nil, err
			}
			page.DynamicFields = append(page.DynamicFields, model.Patch{
				Condition: cond,
				Values: model.PatchValues{
					Title:       dt.Title,
					Description: dt.Description,
				},
			})
		}
		if err := b.store.UpdatePage(ctx, page); err != nil {
			return nil, fmt.Errorf("updating page %q: %w", pt.Title, err)
		}
	}

	return survey, nil
}

// resolveCondition turns a symbolic condition into a stored one. The
// expected value is, in order: the literal value; the target's option
// at ValueIndex; the target's option branching to selfID.
func (b *Builder) resolveCondition(ct model.ConditionTemplate, byKey map[string]*model.Question, selfID, where string) (model.Condition, error) {
	target, ok := byKey[ct.Question]
	if !ok {
		return model.Condition{}, fmt.Errorf("%s: condition references unknown question key %q", where, ct.Question)
	}
	if ct.Value != nil {
		return model.Condition{Question: target.ID, Value: ct.Value}, nil
	}
	if ct.ValueIndex != nil {
		i := *ct.ValueIndex
		if i < 0 || i >= len(target.Options) {
			return model.Condition{}, fmt.Errorf("%s: condition value index %d out of range for question %q", where, i, ct.Question)
		}
		return model.Condition{Question: target.ID, Value: target.Options[i].ID}, nil
	}
	if selfID != "" {
		for _, o := range target.Options {
			if o.NextQuestion == selfID {
				return model.Condition{Question: target.ID, Value: o.ID}, nil
			}
		}
	}
	return model.Condition{}, fmt.Errorf("%s: condition on question %q has no resolvable value", where, ct.Question)
}

func (b *Builder) resolvePatch(dt model.PatchTemplate, byKey map[string]*model.Question, q *model.Question, key string) (model.Patch, error) {
	cond, err := b.resolveCondition(dt.Condition, byKey, q.ID, "question "+key)
	if err != nil {
		return model.Patch{}, err
	}
	patch := model.Patch{
		Condition: cond,
		Values: model.PatchValues{
			Title:       dt.Title,
			Description: dt.Description,
			Hint:        dt.Hint,
			Required:    dt.Required,
			Remove:      dt.Remove,
		},
	}
	if dt.OptionIndexes != nil {
		ids := make([]string, 0, len(dt.OptionIndexes))
		for _, i := range dt.OptionIndexes {
			if i < 0 || i >= len(q.Options) {
				return model.Patch{}, fmt.Errorf("question %q: patch option index %d out of range", key, i)
			}
			ids = append(ids, q.Options[i].ID)
		}
		patch.Values.Options = ids
	}
	return patch, nil
}
