package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"surveygraph/internal/model"
)

// In-memory repository and cache fakes shared by the service tests.

type memStore struct {
	mu        sync.Mutex
	seq       int
	surveys   map[string]*model.Survey
	pages     map[string]*model.Page
	questions map[string]*model.Question
	sessions  map[string]*model.Session
	responses map[string]*model.Response
	reports   map[string]*model.Report
	seedHash  string
	events    []memEvent

	invalidatedPages []string
}

type memEvent struct {
	name    string
	payload any
}

func newStore() *memStore {
	return &memStore{
		surveys:   make(map[string]*model.Survey),
		pages:     make(map[string]*model.Page),
		questions: make(map[string]*model.Question),
		sessions:  make(map[string]*model.Session),
		responses: make(map[string]*model.Response),
		reports:   make(map[string]*model.Report),
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) BroadcastToOperators(event string, payload any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, memEvent{name: event, payload: payload})
}

type memSurveyRepo struct{ s *memStore }

func (r memSurveyRepo) Create(_ context.Context, survey *model.Survey) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id := r.s.nextID("survey")
	survey.ID = id
	survey.CreatedAt = time.Now()
	cp := *survey
	r.s.surveys[id] = &cp
	return id, nil
}

func (r memSurveyRepo) GetByID(_ context.Context, id string) (*model.Survey, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sv, ok := r.s.surveys[id]
	if !ok {
		return nil, nil
	}
	cp := *sv
	return &cp, nil
}

func (r memSurveyRepo) List(_ context.Context) ([]*model.Survey, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Survey
	for _, sv := range r.s.surveys {
		cp := *sv
		out = append(out, &cp)
	}
	return out, nil
}

func (r memSurveyRepo) Update(_ context.Context, survey *model.Survey) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *survey
	r.s.surveys[survey.ID] = &cp
	return nil
}

func (r memSurveyRepo) DeleteAll(_ context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.surveys = make(map[string]*model.Survey)
	return nil
}

type memPageRepo struct{ s *memStore }

func (r memPageRepo) Create(_ context.Context, page *model.Page) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id := r.s.nextID("page")
	page.ID = id
	cp := *page
	r.s.pages[id] = &cp
	return id, nil
}

func (r memPageRepo) GetByID(_ context.Context, id string) (*model.Page, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.pages[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r memPageRepo) List(_ context.Context) ([]model.Page, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Page
	for _, p := range r.s.pages {
		out = append(out, *p)
	}
	return out, nil
}

func (r memPageRepo) Update(_ context.Context, page *model.Page) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *page
	r.s.pages[page.ID] = &cp
	return nil
}

func (r memPageRepo) DeleteAll(_ context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.pages = make(map[string]*model.Page)
	return nil
}

type memQuestionRepo struct{ s *memStore }

func (r memQuestionRepo) Create(_ context.Context, question *model.Question) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id := r.s.nextID("question")
	question.ID = id
	cp := *question
	r.s.questions[id] = &cp
	return id, nil
}

func (r memQuestionRepo) GetByID(_ context.Context, id string) (*model.Question, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.questions[id]
	if !ok {
		return nil, nil
	}
	cp := *q
	return &cp, nil
}

func (r memQuestionRepo) GetByPage(_ context.Context, pageID string) ([]model.Question, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Question
	for _, q := range r.s.questions {
		if q.PageID == pageID {
			out = append(out, *q)
		}
	}
	// emulate the repo's priority sort
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Priority > out[i].Priority {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (r memQuestionRepo) Update(_ context.Context, question *model.Question) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *question
	r.s.questions[question.ID] = &cp
	return nil
}

func (r memQuestionRepo) DeleteAll(_ context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.questions = make(map[string]*model.Question)
	return nil
}

type memSessionRepo struct{ s *memStore }

func (r memSessionRepo) Create(_ context.Context, session *model.Session) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id := r.s.nextID("session")
	session.ID = id
	session.CreatedAt = time.Now()
	cp := *session
	r.s.sessions[id] = &cp
	return id, nil
}

func (r memSessionRepo) GetByID(_ context.Context, id string) (*model.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sn, ok := r.s.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *sn
	return &cp, nil
}

func (r memSessionRepo) Update(_ context.Context, session *model.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *session
	r.s.sessions[session.ID] = &cp
	return nil
}

type memResponseRepo struct{ s *memStore }

func (r memResponseRepo) Create(_ context.Context, response *model.Response) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id := r.s.nextID("response")
	response.ID = id
	response.CreatedAt = time.Now()
	cp := *response
	r.s.responses[id] = &cp
	return id, nil
}

func (r memResponseRepo) GetByID(_ context.Context, id string) (*model.Response, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	resp, ok := r.s.responses[id]
	if !ok {
		return nil, nil
	}
	cp := *resp
	return &cp, nil
}

func (r memResponseRepo) FindBySessionAndPage(_ context.Context, sessionID, pageID string) (*model.Response, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, resp := range r.s.responses {
		if resp.SessionID == sessionID && resp.PageID == pageID {
			cp := *resp
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memResponseRepo) Update(_ context.Context, response *model.Response) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *response
	r.s.responses[response.ID] = &cp
	return nil
}

type memReportRepo struct{ s *memStore }

func (r memReportRepo) Create(_ context.Context, report *model.Report) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id := r.s.nextID("report")
	report.ID = id
	report.CreatedAt = time.Now()
	cp := *report
	r.s.reports[id] = &cp
	return id, nil
}

func (r memReportRepo) GetBySessionID(_ context.Context, sessionID string) (*model.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rep := range r.s.reports {
		if rep.SessionID == sessionID {
			cp := *rep
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memReportRepo) ListBySurvey(_ context.Context, surveyID string) ([]*model.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Report
	for _, rep := range r.s.reports {
		if rep.SurveyID == surveyID {
			cp := *rep
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memSeedRepo struct{ s *memStore }

func (r memSeedRepo) GetHash(_ context.Context) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.seedHash, nil
}

func (r memSeedRepo) SetHash(_ context.Context, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.seedHash = hash
	return nil
}

type memSessionCache struct{ s *memStore }

func (memSessionCache) Set(context.Context, *model.Session) error { return nil }
func (memSessionCache) Get(context.Context, string) (*model.Session, error) {
	return nil, nil
}

// memPageCache never serves hits but records invalidations.
type memPageCache struct{ s *memStore }

func (memPageCache) SetPage(context.Context, *model.Page) error { return nil }
func (memPageCache) GetPage(context.Context, string) (*model.Page, error) {
	return nil, nil
}
func (memPageCache) SetQuestions(context.Context, string, []model.Question) error { return nil }
func (memPageCache) GetQuestions(context.Context, string) ([]model.Question, error) {
	return nil, nil
}

func (c memPageCache) Invalidate(_ context.Context, pageID string) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.invalidatedPages = append(c.s.invalidatedPages, pageID)
	return nil
}
