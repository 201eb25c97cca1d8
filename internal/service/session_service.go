package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"surveygraph/internal/cache"
	"surveygraph/internal/engine"
	"surveygraph/internal/model"
	"surveygraph/internal/repository"
)

var (
	ErrSurveyNotFound  = errors.New("survey not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrAuthRequired    = errors.New("survey requires authentication")
	ErrEmptySurvey     = errors.New("survey has no visible questions")
)

// StartParams carries the respondent identity for a new session. An
// authenticated start pre-fills questions with an auth relation.
type StartParams struct {
	Authenticated bool
	Email         string
	Phone         string
}

// StartResult is returned to the respondent client.
type StartResult struct {
	SessionID  string `json:"sessionId"`
	Token      string `json:"token"`
	ResponseID string `json:"responseId"`
}

// SessionService runs the respondent session lifecycle: start creates
// the session and its first response, finish stamps the session,
// generates the report and notifies operators.
type SessionService struct {
	sessionRepo  repository.SessionRepo
	surveyRepo   repository.SurveyRepo
	responseRepo repository.ResponseRepo
	sessionCache cache.SessionCache
	loader       engine.Loader
	traverser    *engine.Traverser
	authSvc      *AuthService
	reportSvc    *ReportService
	broadcaster  Broadcaster
}

// NewSessionService creates a new session service
func NewSessionService(
	sessionRepo repository.SessionRepo,
	surveyRepo repository.SurveyRepo,
	responseRepo repository.ResponseRepo,
	sessionCache cache.SessionCache,
	loader engine.Loader,
	traverser *engine.Traverser,
	authSvc *AuthService,
	reportSvc *ReportService,
) *SessionService {
	return &SessionService{
		sessionRepo:  sessionRepo,
		surveyRepo:   surveyRepo,
		responseRepo: responseRepo,
		sessionCache: sessionCache,
		loader:       loader,
		traverser:    traverser,
		authSvc:      authSvc,
		reportSvc:    reportSvc,
	}
}

// SetBroadcaster wires the ws hub after construction
func (s *SessionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Start creates a session and its first response. The first page is
// resolved by a structural traversal from the survey's first page, so
// an auth-only or empty first page is skipped the same way later pages
// are.
func (s *SessionService) Start(ctx context.Context, surveyID string, p StartParams) (*StartResult, error) {
	survey, err := s.surveyRepo.GetByID(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("loading survey: %w", err)
	}
	if survey == nil {
		return nil, ErrSurveyNotFound
	}
	if survey.AuthType == model.AuthTypeRequired && !p.Authenticated {
		return nil, ErrAuthRequired
	}

	firstQuestions, err := s.loader.PageQuestions(ctx, survey.FirstPage)
	if err != nil {
		return nil, fmt.Errorf("loading first page: %w", err)
	}
	if len(firstQuestions) == 0 {
		return nil, ErrEmptySurvey
	}
	starting := make([]string, len(firstQuestions))
	for i, q := range firstQuestions {
		starting[i] = q.ID
	}

	skipAuth := !p.Authenticated
	entry, err := s.traverser.Advance(ctx, starting, nil, skipAuth)
	if err != nil {
		return nil, fmt.Errorf("resolving first page: %w", err)
	}
	if len(entry.Questions) == 0 {
		return nil, ErrEmptySurvey
	}

	session := &model.Session{
		SurveyID: surveyID,
		Auth:     p.Authenticated,
		Email:    p.Email,
		Phone:    p.Phone,
	}
	sessionID, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	session.ID = sessionID

	progress, err := s.traverser.EstimateProgress(ctx, entry.Questions, nil, skipAuth)
	if errors.Is(err, engine.ErrEstimateTruncated) {
		log.Printf("progress estimate truncated for survey %s", surveyID)
	} else if err != nil {
		return nil, fmt.Errorf("estimating progress: %w", err)
	}

	response := &model.Response{
		SessionID: sessionID,
		PageID:    entry.PageID,
		Questions: entry.Questions,
		Progress:  progress,
		Values:    authPrefill(ctx, s.loader, entry.PageID, entry.Questions, session),
	}
	responseID, err := s.responseRepo.Create(ctx, response)
	if err != nil {
		return nil, fmt.Errorf("creating first response: %w", err)
	}

	session.LastResponse = responseID
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("linking first response: %w", err)
	}
	if err := s.sessionCache.Set(ctx, session); err != nil {
		log.Printf("session cache write failed for %s: %v", sessionID, err)
	}

	token, err := s.authSvc.GenerateSessionToken(sessionID)
	if err != nil {
		return nil, fmt.Errorf("issuing session token: %w", err)
	}

	return &StartResult{
		SessionID:  sessionID,
		Token:      token,
		ResponseID: responseID,
	}, nil
}

// Get reads a session through the cache.
func (s *SessionService) Get(ctx context.Context, id string) (*model.Session, error) {
	if cached, err := s.sessionCache.Get(ctx, id); err != nil {
		log.Printf("session cache read failed for %s: %v", id, err)
	} else if cached != nil {
		return cached, nil
	}

	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if err := s.sessionCache.Set(ctx, session); err != nil {
		log.Printf("session cache write failed for %s: %v", id, err)
	}
	return session, nil
}

// Finish completes a session: stamps finishedAt, generates the report
// and notifies operators. Finishing twice is a no-op. Report failures
// do not fail the finish; the session is already complete for the
// respondent.
func (s *SessionService) Finish(ctx context.Context, session *model.Session) error {
	if session.Finished() {
		return nil
	}
	now := time.Now()
	session.FinishedAt = &now
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return fmt.Errorf("finishing session: %w", err)
	}
	if err := s.sessionCache.Set(ctx, session); err != nil {
		log.Printf("session cache write failed for %s: %v", session.ID, err)
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToOperators(EventSessionFinished, map[string]string{
			"sessionId": session.ID,
			"surveyId":  session.SurveyID,
		})
	}

	report, err := s.reportSvc.GenerateForSession(ctx, session)
	if err != nil {
		log.Printf("report generation failed for session %s: %v", session.ID, err)
		return nil
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToOperators(EventReportReady, map[string]string{
			"reportId":  report.ID,
			"sessionId": session.ID,
			"surveyId":  session.SurveyID,
		})
	}
	return nil
}

// authPrefill returns initial values for a new response: questions with
// an auth relation are answered from the session identity when the
// session is authenticated.
func authPrefill(ctx context.Context, loader engine.Loader, pageID string, questionIDs []string, session *model.Session) map[string]any {
	if !session.Auth {
		return nil
	}
	pageQuestions, err := loader.PageQuestions(ctx, pageID)
	if err != nil {
		log.Printf("auth prefill failed for page %s: %v", pageID, err)
		return nil
	}
	byID := make(map[string]*model.Question, len(pageQuestions))
	for i := range pageQuestions {
		byID[pageQuestions[i].ID] = &pageQuestions[i]
	}

	var values map[string]any
	for _, id := range questionIDs {
		q := byID[id]
		if q == nil {
			continue
		}
		var v string
		switch q.AuthRelation {
		case model.AuthRelationEmail:
			v = session.Email
		case model.AuthRelationPhone:
			v = session.Phone
		default:
			continue
		}
		if v == "" {
			continue
		}
		if values == nil {
			values = make(map[string]any)
		}
		values[id] = v
	}
	return values
}
