package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveygraph/internal/engine"
	"surveygraph/internal/model"
)

type services struct {
	store     *memStore
	auth      *AuthService
	sessions  *SessionService
	responses *ResponseService
	reports   *ReportService
	surveys   *SurveyService
}

func newServices(store *memStore) *services {
	surveyRepo := memSurveyRepo{store}
	pageRepo := memPageRepo{store}
	questionRepo := memQuestionRepo{store}
	sessionRepo := memSessionRepo{store}
	responseRepo := memResponseRepo{store}
	reportRepo := memReportRepo{store}

	loader := NewGraphLoader(pageRepo, questionRepo, memPageCache{store})
	traverser := engine.NewTraverser(loader)
	auth := NewAuthService()
	reports := NewReportService(reportRepo, responseRepo, surveyRepo, loader)
	sessions := NewSessionService(sessionRepo, surveyRepo, responseRepo, memSessionCache{store}, loader, traverser, auth, reports)
	sessions.SetBroadcaster(store)
	responses := NewResponseService(responseRepo, sessionRepo, sessions, loader, traverser)
	builder := engine.NewBuilder(NewGraphStore(surveyRepo, pageRepo, questionRepo))
	surveys := NewSurveyService(surveyRepo, pageRepo, questionRepo, memSeedRepo{store}, memPageCache{store}, builder)

	return &services{
		store:     store,
		auth:      auth,
		sessions:  sessions,
		responses: responses,
		reports:   reports,
		surveys:   surveys,
	}
}

// seedGraph installs a two-page survey:
//
//	p1: q1 SELECT required (opt-a -> q2, opt-b -> q3)
//	    q2 TEXT required, visible only when q1 = opt-a
//	p2: q3 INPUT -> q4
//	    q4 EMAIL, auth relation EMAIL
func seedGraph(store *memStore) {
	store.surveys["survey-1"] = &model.Survey{
		ID: "survey-1", Title: "Incident report",
		FirstPage: "p1", AuthType: model.AuthTypeOptional, Priority: 1,
	}
	store.pages["p1"] = &model.Page{ID: "p1", Title: "What happened"}
	store.pages["p2"] = &model.Page{ID: "p2", Title: "Details"}
	store.questions["q1"] = &model.Question{
		ID: "q1", PageID: "p1", SurveyID: "survey-1",
		Type: model.QuestionTypeSelect, Title: "Kind", Required: true, Priority: 2,
		Options: []model.Option{
			{ID: "opt-a", Title: "Purchase", Priority: 2, NextQuestion: "q2"},
			{ID: "opt-b", Title: "Other", Priority: 1, NextQuestion: "q3"},
		},
	}
	store.questions["q2"] = &model.Question{
		ID: "q2", PageID: "p1", SurveyID: "survey-1",
		Type: model.QuestionTypeText, Title: "Where", Required: true, Priority: 1,
		Condition: []model.Condition{{Question: "q1", Value: "opt-a"}},
	}
	store.questions["q3"] = &model.Question{
		ID: "q3", PageID: "p2", SurveyID: "survey-1",
		Type: model.QuestionTypeInput, Title: "Details", Priority: 2,
		NextQuestion: "q4",
	}
	store.questions["q4"] = &model.Question{
		ID: "q4", PageID: "p2", SurveyID: "survey-1",
		Type: model.QuestionTypeEmail, Title: "Your email", Priority: 1,
		AuthRelation: model.AuthRelationEmail,
	}
}

func startedSession(t *testing.T, svc *services, p StartParams) *StartResult {
	t.Helper()
	res, err := svc.sessions.Start(context.Background(), "survey-1", p)
	require.NoError(t, err)
	return res
}

func TestRespondValidationErrorsStoreNothing(t *testing.T) {
	store := newStore()
	seedGraph(store)
	svc := newServices(store)
	start := startedSession(t, svc, StartParams{})

	res, err := svc.responses.Respond(context.Background(), start.ResponseID, map[string]any{}, start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"q1": "REQUIRED"}, res.Errors)
	assert.Empty(t, res.NextResponse)
	assert.Nil(t, store.responses[start.ResponseID].Values)

	// q2 becomes required once q1 selects opt-a
	res, err = svc.responses.Respond(context.Background(), start.ResponseID, map[string]any{"q1": "opt-a"}, start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"q2": "REQUIRED"}, res.Errors)
	assert.Nil(t, store.responses[start.ResponseID].Values, "no partial persistence")
}

func TestRespondAdvancesToNextPage(t *testing.T) {
	store := newStore()
	seedGraph(store)
	svc := newServices(store)
	start := startedSession(t, svc, StartParams{})

	res, err := svc.responses.Respond(context.Background(), start.ResponseID, map[string]any{"q1": "opt-b"}, start.SessionID)
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	require.NotEmpty(t, res.NextResponse)

	next := store.responses[res.NextResponse]
	require.NotNil(t, next)
	assert.Equal(t, "p2", next.PageID)
	assert.Equal(t, []string{"q3"}, next.Questions, "auth question hidden for anonymous session")
	assert.Equal(t, start.ResponseID, next.PreviousResponse)
	assert.Equal(t, model.Progress{Current: 2, Total: 2}, next.Progress)

	session := store.sessions[start.SessionID]
	assert.Equal(t, res.NextResponse, session.LastResponse)
}

func TestRespondIsRepeatableAndReusesSuccessor(t *testing.T) {
	store := newStore()
	seedGraph(store)
	svc := newServices(store)
	start := startedSession(t, svc, StartParams{})

	first, err := svc.responses.Respond(context.Background(), start.ResponseID, map[string]any{"q1": "opt-b"}, start.SessionID)
	require.NoError(t, err)

	again, err := svc.responses.Respond(context.Background(), start.ResponseID, map[string]any{"q1": "opt-b"}, start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, first.NextResponse, again.NextResponse, "revisiting a page must not fork the chain")
}

func TestRespondFinishesSession(t *testing.T) {
	store := newStore()
	seedGraph(store)
	svc := newServices(store)
	start := startedSession(t, svc, StartParams{})

	res, err := svc.responses.Respond(context.Background(), start.ResponseID, map[string]any{"q1": "opt-b"}, start.SessionID)
	require.NoError(t, err)

	res, err = svc.responses.Respond(context.Background(), res.NextResponse, map[string]any{"q3": "spoiled goods"}, start.SessionID)
	require.NoError(t, err)
	assert.True(t, res.Finished)
	assert.Empty(t, res.NextResponse)

	session := store.sessions[start.SessionID]
	require.NotNil(t, session.FinishedAt)

	report, err := svc.reports.GetBySession(context.Background(), start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "survey-1", report.SurveyID)

	require.Len(t, store.events, 2)
	assert.Equal(t, EventSessionFinished, store.events[0].name)
	assert.Equal(t, EventReportReady, store.events[1].name)
}

func TestRespondTraversalErrorStoresNothing(t *testing.T) {
	store := newStore()
	seedGraph(store)
	svc := newServices(store)
	start := startedSession(t, svc, StartParams{})

	// break the branch target so resolving the next page fails
	delete(store.questions, "q3")

	_, err := svc.responses.Respond(context.Background(), start.ResponseID, map[string]any{"q1": "opt-b"}, start.SessionID)
	require.ErrorIs(t, err, engine.ErrQuestionNotFound)
	assert.Nil(t, store.responses[start.ResponseID].Values, "no values persisted on a failed traversal")

	session := store.sessions[start.SessionID]
	assert.Nil(t, session.FinishedAt)
	assert.Equal(t, start.ResponseID, session.LastResponse)
}

func TestRespondConflict(t *testing.T) {
	store := newStore()
	seedGraph(store)
	svc := newServices(store)
	start := startedSession(t, svc, StartParams{})

	require.True(t, svc.responses.tryLock(start.ResponseID))
	defer svc.responses.unlock(start.ResponseID)

	_, err := svc.responses.Respond(context.Background(), start.ResponseID, map[string]any{"q1": "opt-b"}, start.SessionID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRespondForbiddenForOtherSession(t *testing.T) {
	store := newStore()
	seedGraph(store)
	svc := newServices(store)
	start := startedSession(t, svc, StartParams{})

	_, err := svc.responses.Respond(context.Background(), start.ResponseID, map[string]any{"q1": "opt-b"}, "session-other")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.responses.Get(context.Background(), start.ResponseID, "session-other")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRespondUnknownResponse(t *testing.T) {
	store := newStore()
	seedGraph(store)
	svc := newServices(store)

	_, err := svc.responses.Respond(context.Background(), "ghost", map[string]any{}, "")
	assert.ErrorIs(t, err, ErrResponseNotFound)
}

func TestGetMergesChainValues(t *testing.T) {
	store := newStore()
	seedGraph(store)
	svc := newServices(store)
	start := startedSession(t, svc, StartParams{})

	res, err := svc.responses.Respond(context.Background(), start.ResponseID, map[string]any{"q1": "opt-b"}, start.SessionID)
	require.NoError(t, err)

	view, err := svc.responses.Get(context.Background(), res.NextResponse, start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "opt-b", view.Values["q1"], "previous page answers visible downstream")
	require.NotNil(t, view.Page)
	assert.Equal(t, "Details", view.Page.Title)
	require.Len(t, view.Questions, 1)
	assert.Equal(t, "q3", view.Questions[0].ID)
	assert.Equal(t, model.Progress{Current: 2, Total: 2}, view.Progress)
}

func TestGetAppliesDynamicPatches(t *testing.T) {
	store := newStore()
	seedGraph(store)
	patched := "Where exactly did you buy it?"
	store.questions["q2"].DynamicFields = []model.Patch{{
		Condition: model.Condition{Question: "q1", Value: "opt-a"},
		Values:    model.PatchValues{Title: &patched},
	}}
	svc := newServices(store)
	start := startedSession(t, svc, StartParams{})

	res, err := svc.responses.Respond(context.Background(), start.ResponseID,
		map[string]any{"q1": "opt-a", "q2": "corner shop"}, start.SessionID)
	require.NoError(t, err)
	require.Empty(t, res.Errors)

	view, err := svc.responses.Get(context.Background(), start.ResponseID, start.SessionID)
	require.NoError(t, err)
	require.Len(t, view.Questions, 2)
	assert.Equal(t, patched, view.Questions[1].Title)
}
