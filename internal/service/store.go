package service

import (
	"context"

	"surveygraph/internal/engine"
	"surveygraph/internal/model"
	"surveygraph/internal/repository"
)

// graphStore adapts the repositories to the builder's Store interface.
type graphStore struct {
	surveyRepo   repository.SurveyRepo
	pageRepo     repository.PageRepo
	questionRepo repository.QuestionRepo
}

// NewGraphStore creates the engine.Store used by the graph builder.
func NewGraphStore(surveyRepo repository.SurveyRepo, pageRepo repository.PageRepo, questionRepo repository.QuestionRepo) engine.Store {
	return &graphStore{
		surveyRepo:   surveyRepo,
		pageRepo:     pageRepo,
		questionRepo: questionRepo,
	}
}

func (s *graphStore) CreateSurvey(ctx context.Context, survey *model.Survey) (string, error) {
	return s.surveyRepo.Create(ctx, survey)
}

func (s *graphStore) CreatePage(ctx context.Context, page *model.Page) (string, error) {
	return s.pageRepo.Create(ctx, page)
}

func (s *graphStore) UpdatePage(ctx context.Context, page *model.Page) error {
	return s.pageRepo.Update(ctx, page)
}

func (s *graphStore) CreateQuestion(ctx context.Context, question *model.Question) (string, error) {
	return s.questionRepo.Create(ctx, question)
}

func (s *graphStore) UpdateQuestion(ctx context.Context, question *model.Question) error {
	return s.questionRepo.Update(ctx, question)
}
