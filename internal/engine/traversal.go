package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"surveygraph/internal/model"
)

// maxPageHops bounds cross-page traversal and progress estimation so a
// malformed graph cannot loop forever.
const maxPageHops = 999

var (
	// ErrTraversalBound is returned when Advance crosses maxPageHops
	// pages without settling, which only a cyclic graph can cause.
	ErrTraversalBound = errors.New("traversal exceeded page bound")

	// ErrQuestionNotFound is returned when a starting id resolves to no
	// stored question.
	ErrQuestionNotFound = errors.New("question not found")
)

// Loader resolves graph entities for traversal.
type Loader interface {
	Question(ctx context.Context, id string) (*model.Question, error)
	Page(ctx context.Context, id string) (*model.Page, error)
	PageQuestions(ctx context.Context, pageID string) ([]model.Question, error)
}

// WalkResult splits reached ids into those on the walked page and those
// pointing beyond it.
type WalkResult struct {
	Questions         []string
	NextPageQuestions []string
}

// Walk expands the visible question set of one page. Starting ids found
// among the page questions are visited; ids pointing elsewhere are
// collected as next-page frontier. With values the walk is value-driven:
// condition-gated questions are skipped and choice questions expand only
// through the options the answer selects. With nil values the walk is
// structural: conditions are ignored and every option branch expands.
// Visible ids come back sorted by descending priority; both result
// slices are de-duplicated in first-reached order.
func Walk(starting []string, pageQuestions []model.Question, values map[string]any) WalkResult {
	byID := make(map[string]*model.Question, len(pageQuestions))
	for i := range pageQuestions {
		byID[pageQuestions[i].ID] = &pageQuestions[i]
	}

	var visited, frontier []string
	seen := make(map[string]bool)
	frontierSeen := make(map[string]bool)

	var handle func(id string)
	handle = func(id string) {
		if id == "" || seen[id] {
			return
		}
		q, local := byID[id]
		if !local {
			if !frontierSeen[id] {
				frontierSeen[id] = true
				frontier = append(frontier, id)
			}
			return
		}
		if values != nil && !Satisfied(q.Condition, values) {
			return
		}
		seen[id] = true
		visited = append(visited, id)
		handle(q.NextQuestion)
		if !q.Type.IsChoice() {
			return
		}
		if values == nil {
			for _, o := range q.Options {
				handle(o.NextQuestion)
			}
			return
		}
		answer, ok := values[q.ID]
		if !ok || answer == nil || answer == "" {
			return
		}
		for _, o := range q.Options {
			if valueMatches(answer, o.ID) {
				handle(o.NextQuestion)
				if q.Type != model.QuestionTypeMultiSelect {
					break
				}
			}
		}
	}

	for _, id := range starting {
		handle(id)
	}

	sort.SliceStable(visited, func(i, j int) bool {
		return byID[visited[i]].Priority > byID[visited[j]].Priority
	})
	return WalkResult{Questions: visited, NextPageQuestions: frontier}
}

// AdvanceResult is a resolved page position: the visible question ids
// on PageID and the frontier pointing past it.
type AdvanceResult struct {
	PageID            string
	Questions         []string
	NextPageQuestions []string
}

// Traverser runs cross-page traversal over a Loader.
type Traverser struct {
	loader Loader
}

func NewTraverser(loader Loader) *Traverser {
	return &Traverser{loader: loader}
}

// Advance resolves the page of the first starting id, overlays and
// walks it, and keeps hopping forward while a page contributes no
// visible questions but still points onward. All starting ids must
// belong to one page. With skipAuth, questions carrying an auth
// relation are dropped from the visible set.
func (t *Traverser) Advance(ctx context.Context, starting []string, values map[string]any, skipAuth bool) (*AdvanceResult, error) {
	if len(starting) == 0 {
		return &AdvanceResult{}, nil
	}
	for hop := 0; hop < maxPageHops; hop++ {
		first, err := t.loader.Question(ctx, starting[0])
		if err != nil {
			return nil, fmt.Errorf("resolving question %s: %w", starting[0], err)
		}
		if first == nil {
			return nil, fmt.Errorf("%w: %s", ErrQuestionNotFound, starting[0])
		}

		pageQuestions, err := t.loader.PageQuestions(ctx, first.PageID)
		if err != nil {
			return nil, fmt.Errorf("loading page %s questions: %w", first.PageID, err)
		}

		resolved := make([]model.Question, 0, len(pageQuestions))
		for _, q := range pageQuestions {
			eq, removed := ResolveQuestion(q, values)
			if removed {
				continue
			}
			resolved = append(resolved, eq)
		}

		res := Walk(starting, resolved, values)

		questions := res.Questions
		if skipAuth {
			byID := make(map[string]*model.Question, len(resolved))
			for i := range resolved {
				byID[resolved[i].ID] = &resolved[i]
			}
			kept := questions[:0]
			for _, id := range questions {
				if q := byID[id]; q != nil && q.AuthRelation == "" {
					kept = append(kept, id)
				}
			}
			questions = kept
		}

		if len(questions) == 0 && len(res.NextPageQuestions) > 0 {
			starting = res.NextPageQuestions
			continue
		}
		return &AdvanceResult{
			PageID:            first.PageID,
			Questions:         questions,
			NextPageQuestions: res.NextPageQuestions,
		}, nil
	}
	return nil, ErrTraversalBound
}
