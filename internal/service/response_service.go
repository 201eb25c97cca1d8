package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"surveygraph/internal/engine"
	"surveygraph/internal/model"
	"surveygraph/internal/repository"
)

var (
	ErrResponseNotFound = errors.New("response not found")
	ErrConflict         = errors.New("response is being modified concurrently")
	ErrForbidden        = errors.New("response belongs to another session")
)

// maxChainLength bounds the previous-response walk; the chain is at
// most one response per page.
const maxChainLength = 999

// ResponseView is the read model of a response: the page and questions
// with dynamic patches applied against the merged answers of the whole
// chain.
type ResponseView struct {
	ID        string           `json:"id"`
	SessionID string           `json:"sessionId"`
	Page      *model.Page      `json:"page"`
	Questions []model.Question `json:"questions"`
	Values    map[string]any   `json:"values"`
	Progress  model.Progress   `json:"progress"`
}

// RespondResult is the outcome of a respond call. Exactly one of the
// three shapes applies: validation errors, the next response id, or
// finished.
type RespondResult struct {
	Errors       map[string]string `json:"errors,omitempty"`
	NextResponse string            `json:"nextResponse,omitempty"`
	Finished     bool              `json:"finished,omitempty"`
}

// ResponseService is the respond state machine. Each response id is
// serialized: a second respond while one is in flight fails fast with
// ErrConflict.
type ResponseService struct {
	responseRepo repository.ResponseRepo
	sessionRepo  repository.SessionRepo
	sessionSvc   *SessionService
	loader       engine.Loader
	traverser    *engine.Traverser

	mu     sync.Mutex
	inWork map[string]struct{}
}

// NewResponseService creates a new response service
func NewResponseService(
	responseRepo repository.ResponseRepo,
	sessionRepo repository.SessionRepo,
	sessionSvc *SessionService,
	loader engine.Loader,
	traverser *engine.Traverser,
) *ResponseService {
	return &ResponseService{
		responseRepo: responseRepo,
		sessionRepo:  sessionRepo,
		sessionSvc:   sessionSvc,
		loader:       loader,
		traverser:    traverser,
		inWork:       make(map[string]struct{}),
	}
}

func (s *ResponseService) tryLock(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inWork[id]; busy {
		return false
	}
	s.inWork[id] = struct{}{}
	return true
}

func (s *ResponseService) unlock(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inWork, id)
}

// Get returns the response view for the owning session. sessionID may
// be empty for internal and operator reads.
func (s *ResponseService) Get(ctx context.Context, id, sessionID string) (*ResponseView, error) {
	response, err := s.responseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading response: %w", err)
	}
	if response == nil {
		return nil, ErrResponseNotFound
	}
	if sessionID != "" && response.SessionID != sessionID {
		return nil, ErrForbidden
	}

	merged, err := s.mergedValues(ctx, response)
	if err != nil {
		return nil, err
	}

	questions, err := s.effectiveQuestions(ctx, response, merged)
	if err != nil {
		return nil, err
	}

	page, err := s.loader.Page(ctx, response.PageID)
	if err != nil {
		return nil, fmt.Errorf("loading page: %w", err)
	}
	if page != nil {
		resolved := engine.ResolvePage(*page, merged)
		page = &resolved
	}

	return &ResponseView{
		ID:        response.ID,
		SessionID: response.SessionID,
		Page:      page,
		Questions: questions,
		Values:    merged,
		Progress:  response.Progress,
	}, nil
}

// Respond validates and stores one page's answers, then resolves the
// successor. Validation failure stores nothing and returns the error
// map; a resubmission with fixed values is a fresh attempt. When the
// traversal finds no further visible page the session is finished.
func (s *ResponseService) Respond(ctx context.Context, id string, values map[string]any, sessionID string) (*RespondResult, error) {
	if !s.tryLock(id) {
		return nil, ErrConflict
	}
	defer s.unlock(id)

	response, err := s.responseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading response: %w", err)
	}
	if response == nil {
		return nil, ErrResponseNotFound
	}
	if sessionID != "" && response.SessionID != sessionID {
		return nil, ErrForbidden
	}

	session, err := s.sessionRepo.GetByID(ctx, response.SessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	merged, err := s.mergedValues(ctx, response)
	if err != nil {
		return nil, err
	}
	// overlays see previous pages' answers plus this submission
	overlayValues := make(map[string]any, len(merged)+len(values))
	for k, v := range merged {
		overlayValues[k] = v
	}
	for k, v := range values {
		overlayValues[k] = v
	}

	effective, err := s.effectiveQuestions(ctx, response, overlayValues)
	if err != nil {
		return nil, err
	}

	if errs := engine.Validate(effective, values); len(errs) > 0 {
		return &RespondResult{Errors: errs}, nil
	}

	current, err := s.traverser.Advance(ctx, response.Questions, overlayValues, false)
	if err != nil {
		return nil, fmt.Errorf("advancing: %w", err)
	}

	skipAuth := !session.Auth
	var next *engine.AdvanceResult
	if len(current.NextPageQuestions) > 0 {
		next, err = s.traverser.Advance(ctx, current.NextPageQuestions, nil, skipAuth)
		if err != nil {
			return nil, fmt.Errorf("resolving next page: %w", err)
		}
	}

	// values are persisted only once the successor is resolved, so a
	// traversal failure leaves the response untouched
	response.Values = pickValues(values, response.Questions)
	if err := s.responseRepo.Update(ctx, response); err != nil {
		return nil, fmt.Errorf("storing values: %w", err)
	}

	if next == nil || len(next.Questions) == 0 {
		if err := s.sessionSvc.Finish(ctx, session); err != nil {
			return nil, err
		}
		return &RespondResult{Finished: true}, nil
	}

	progress, err := s.traverser.EstimateProgress(ctx, next.Questions, &response.Progress, skipAuth)
	if errors.Is(err, engine.ErrEstimateTruncated) {
		log.Printf("progress estimate truncated for session %s", session.ID)
	} else if err != nil {
		return nil, fmt.Errorf("estimating progress: %w", err)
	}

	successor, err := s.responseRepo.FindBySessionAndPage(ctx, session.ID, next.PageID)
	if err != nil {
		return nil, fmt.Errorf("looking up successor: %w", err)
	}

	var nextID string
	if successor == nil {
		created := &model.Response{
			SessionID:        session.ID,
			PageID:           next.PageID,
			PreviousResponse: response.ID,
			Questions:        next.Questions,
			Progress:         progress,
			Values:           authPrefill(ctx, s.loader, next.PageID, next.Questions, session),
		}
		nextID, err = s.responseRepo.Create(ctx, created)
		if err != nil {
			return nil, fmt.Errorf("creating successor: %w", err)
		}
	} else {
		// revisiting a page after editing an earlier answer: refresh the
		// visible set and re-link, keep already stored values
		successor.Questions = next.Questions
		successor.PreviousResponse = response.ID
		successor.Progress = progress
		if err := s.responseRepo.Update(ctx, successor); err != nil {
			return nil, fmt.Errorf("updating successor: %w", err)
		}
		nextID = successor.ID
	}

	session.LastResponse = nextID
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("linking successor: %w", err)
	}

	return &RespondResult{NextResponse: nextID}, nil
}

// mergedValues flattens the previous-response chain, earlier pages
// first so the newest page wins on overlap.
func (s *ResponseService) mergedValues(ctx context.Context, response *model.Response) (map[string]any, error) {
	chain := []*model.Response{response}
	cur := response
	for cur.PreviousResponse != "" && len(chain) < maxChainLength {
		prev, err := s.responseRepo.GetByID(ctx, cur.PreviousResponse)
		if err != nil {
			return nil, fmt.Errorf("walking response chain: %w", err)
		}
		if prev == nil {
			break
		}
		chain = append(chain, prev)
		cur = prev
	}

	merged := make(map[string]any)
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i].Values {
			merged[k] = v
		}
	}
	return merged, nil
}

// effectiveQuestions resolves the response's visible questions with
// dynamic patches applied against the given values.
func (s *ResponseService) effectiveQuestions(ctx context.Context, response *model.Response, values map[string]any) ([]model.Question, error) {
	pageQuestions, err := s.loader.PageQuestions(ctx, response.PageID)
	if err != nil {
		return nil, fmt.Errorf("loading page questions: %w", err)
	}
	byID := make(map[string]model.Question, len(pageQuestions))
	for _, q := range pageQuestions {
		byID[q.ID] = q
	}

	out := make([]model.Question, 0, len(response.Questions))
	for _, id := range response.Questions {
		q, ok := byID[id]
		if !ok {
			continue
		}
		eq, removed := engine.ResolveQuestion(q, values)
		if removed {
			continue
		}
		out = append(out, eq)
	}
	return out, nil
}

func pickValues(values map[string]any, questionIDs []string) map[string]any {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]any, len(questionIDs))
	for _, id := range questionIDs {
		if v, ok := values[id]; ok {
			out[id] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
