package service

import (
	"context"
	"log"

	"surveygraph/internal/cache"
	"surveygraph/internal/engine"
	"surveygraph/internal/model"
	"surveygraph/internal/repository"
)

// graphLoader serves the traversal engine from the question and page
// repos, reading through the Redis page cache. Cache failures fall back
// to Mongo and are only logged.
type graphLoader struct {
	pageRepo     repository.PageRepo
	questionRepo repository.QuestionRepo
	pageCache    cache.PageCache
}

// NewGraphLoader creates the engine.Loader used by all traversals.
func NewGraphLoader(pageRepo repository.PageRepo, questionRepo repository.QuestionRepo, pageCache cache.PageCache) engine.Loader {
	return &graphLoader{
		pageRepo:     pageRepo,
		questionRepo: questionRepo,
		pageCache:    pageCache,
	}
}

func (l *graphLoader) Question(ctx context.Context, id string) (*model.Question, error) {
	return l.questionRepo.GetByID(ctx, id)
}

func (l *graphLoader) Page(ctx context.Context, id string) (*model.Page, error) {
	if cached, err := l.pageCache.GetPage(ctx, id); err != nil {
		log.Printf("page cache read failed for %s: %v", id, err)
	} else if cached != nil {
		return cached, nil
	}

	page, err := l.pageRepo.GetByID(ctx, id)
	if err != nil || page == nil {
		return page, err
	}
	if err := l.pageCache.SetPage(ctx, page); err != nil {
		log.Printf("page cache write failed for %s: %v", id, err)
	}
	return page, nil
}

func (l *graphLoader) PageQuestions(ctx context.Context, pageID string) ([]model.Question, error) {
	if cached, err := l.pageCache.GetQuestions(ctx, pageID); err != nil {
		log.Printf("page cache read failed for %s: %v", pageID, err)
	} else if cached != nil {
		return cached, nil
	}

	questions, err := l.questionRepo.GetByPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if len(questions) > 0 {
		if err := l.pageCache.SetQuestions(ctx, pageID, questions); err != nil {
			log.Printf("page cache write failed for %s: %v", pageID, err)
		}
	}
	return questions, nil
}
