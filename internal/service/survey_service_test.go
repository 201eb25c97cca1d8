package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveygraph/internal/model"
)

func templates() []model.SurveyTemplate {
	return []model.SurveyTemplate{
		{
			Title:    "Food complaint",
			AuthType: model.AuthTypeOptional,
			Pages: []model.PageTemplate{
				{
					Title: "Product",
					Questions: []model.QuestionTemplate{
						{
							Key: "kind", Type: model.QuestionTypeSelect, Title: "Complaint kind", Required: true,
							Options: []model.OptionTemplate{
								{Title: "Spoiled product", NextQuestion: "details"},
								{Title: "Other"},
							},
						},
					},
				},
				{
					Title: "Details",
					Questions: []model.QuestionTemplate{
						{Key: "details", Type: model.QuestionTypeText, Title: "Describe the product"},
					},
				},
			},
		},
		{
			Title:    "Inspection request",
			AuthType: model.AuthTypeRequired,
			Pages: []model.PageTemplate{
				{
					Title: "Request",
					Questions: []model.QuestionTemplate{
						{Key: "reason", Type: model.QuestionTypeText, Title: "Reason", Required: true},
					},
				},
			},
		},
	}
}

func TestUpsertSeedsAndGates(t *testing.T) {
	store := newStore()
	svc := newServices(store)
	ctx := context.Background()

	tpls := templates()
	hash, err := TemplateHash(tpls)
	require.NoError(t, err)

	seeded, err := svc.surveys.Upsert(ctx, tpls, hash, false)
	require.NoError(t, err)
	assert.True(t, seeded)
	assert.Len(t, store.surveys, 2)
	assert.Equal(t, hash, store.seedHash)

	// same hash: no reseed
	before := len(store.questions)
	seeded, err = svc.surveys.Upsert(ctx, tpls, hash, false)
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.Equal(t, before, len(store.questions))

	// force reseeds even with an unchanged hash
	seeded, err = svc.surveys.Upsert(ctx, tpls, hash, true)
	require.NoError(t, err)
	assert.True(t, seeded)
}

func TestUpsertInvalidatesCachedPages(t *testing.T) {
	store := newStore()
	seedGraph(store)
	svc := newServices(store)
	ctx := context.Background()

	tpls := templates()
	hash, err := TemplateHash(tpls)
	require.NoError(t, err)

	seeded, err := svc.surveys.Upsert(ctx, tpls, hash, false)
	require.NoError(t, err)
	require.True(t, seeded)
	assert.ElementsMatch(t, []string{"p1", "p2"}, store.invalidatedPages,
		"replaced pages must be dropped from the cache")
}

func TestUpsertOrdersSurveysByTemplateOrder(t *testing.T) {
	store := newStore()
	svc := newServices(store)
	ctx := context.Background()

	tpls := templates()
	hash, err := TemplateHash(tpls)
	require.NoError(t, err)
	_, err = svc.surveys.Upsert(ctx, tpls, hash, false)
	require.NoError(t, err)

	var complaint, inspection *model.Survey
	for _, sv := range store.surveys {
		switch sv.Title {
		case "Food complaint":
			complaint = sv
		case "Inspection request":
			inspection = sv
		}
	}
	require.NotNil(t, complaint)
	require.NotNil(t, inspection)
	assert.Greater(t, complaint.Priority, inspection.Priority)
}

func TestSeededSurveyIsWalkable(t *testing.T) {
	store := newStore()
	svc := newServices(store)
	ctx := context.Background()

	tpls := templates()[:1]
	hash, err := TemplateHash(tpls)
	require.NoError(t, err)
	_, err = svc.surveys.Upsert(ctx, tpls, hash, false)
	require.NoError(t, err)

	var survey *model.Survey
	for _, sv := range store.surveys {
		survey = sv
	}
	require.NotNil(t, survey)

	start, err := svc.sessions.Start(ctx, survey.ID, StartParams{})
	require.NoError(t, err)

	view, err := svc.responses.Get(ctx, start.ResponseID, start.SessionID)
	require.NoError(t, err)
	require.Len(t, view.Questions, 1)
	kind := view.Questions[0]
	require.Len(t, kind.Options, 2)

	// answer with the branching option and land on the details page
	res, err := svc.responses.Respond(ctx, start.ResponseID,
		map[string]any{kind.ID: kind.Options[0].ID}, start.SessionID)
	require.NoError(t, err)
	require.Empty(t, res.Errors)
	require.NotEmpty(t, res.NextResponse)

	next, err := svc.responses.Get(ctx, res.NextResponse, start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "Details", next.Page.Title)

	// the non-branching option finishes immediately
	res, err = svc.responses.Respond(ctx, start.ResponseID,
		map[string]any{kind.ID: kind.Options[1].ID}, start.SessionID)
	require.NoError(t, err)
	assert.True(t, res.Finished)
}

func TestTemplateHashIsStable(t *testing.T) {
	h1, err := TemplateHash(templates())
	require.NoError(t, err)
	h2, err := TemplateHash(templates())
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	changed := templates()
	changed[0].Title = "Renamed"
	h3, err := TemplateHash(changed)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestSurveyGet(t *testing.T) {
	store := newStore()
	seedGraph(store)
	svc := newServices(store)

	sv, err := svc.surveys.Get(context.Background(), "survey-1")
	require.NoError(t, err)
	assert.Equal(t, "Incident report", sv.Title)

	_, err = svc.surveys.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrSurveyNotFound)
}
