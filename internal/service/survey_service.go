package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"

	"surveygraph/internal/cache"
	"surveygraph/internal/engine"
	"surveygraph/internal/model"
	"surveygraph/internal/repository"
)

// SurveyService serves survey queries and the hash-gated seed upsert.
type SurveyService struct {
	surveyRepo   repository.SurveyRepo
	pageRepo     repository.PageRepo
	questionRepo repository.QuestionRepo
	seedRepo     repository.SeedRepo
	pageCache    cache.PageCache
	builder      *engine.Builder
}

// NewSurveyService creates a new survey service
func NewSurveyService(
	surveyRepo repository.SurveyRepo,
	pageRepo repository.PageRepo,
	questionRepo repository.QuestionRepo,
	seedRepo repository.SeedRepo,
	pageCache cache.PageCache,
	builder *engine.Builder,
) *SurveyService {
	return &SurveyService{
		surveyRepo:   surveyRepo,
		pageRepo:     pageRepo,
		questionRepo: questionRepo,
		seedRepo:     seedRepo,
		pageCache:    pageCache,
		builder:      builder,
	}
}

// List returns all surveys, highest priority first.
func (s *SurveyService) List(ctx context.Context) ([]*model.Survey, error) {
	return s.surveyRepo.List(ctx)
}

// Get returns one survey.
func (s *SurveyService) Get(ctx context.Context, id string) (*model.Survey, error) {
	survey, err := s.surveyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if survey == nil {
		return nil, ErrSurveyNotFound
	}
	return survey, nil
}

// TemplateHash computes the content hash that gates Upsert.
func TemplateHash(templates []model.SurveyTemplate) (string, error) {
	data, err := json.Marshal(templates)
	if err != nil {
		return "", err
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:]), nil
}

// Upsert replaces the stored survey graph with the given templates when
// the content hash differs from the last applied one (or force is set).
// It reports whether a reseed happened. Earlier templates get higher
// survey priority.
func (s *SurveyService) Upsert(ctx context.Context, templates []model.SurveyTemplate, hash string, force bool) (bool, error) {
	stored, err := s.seedRepo.GetHash(ctx)
	if err != nil {
		return false, fmt.Errorf("reading seed hash: %w", err)
	}
	if stored == hash && !force {
		return false, nil
	}

	oldPages, err := s.pageRepo.List(ctx)
	if err != nil {
		return false, fmt.Errorf("listing pages: %w", err)
	}

	if err := s.questionRepo.DeleteAll(ctx); err != nil {
		return false, fmt.Errorf("clearing questions: %w", err)
	}
	if err := s.pageRepo.DeleteAll(ctx); err != nil {
		return false, fmt.Errorf("clearing pages: %w", err)
	}
	if err := s.surveyRepo.DeleteAll(ctx); err != nil {
		return false, fmt.Errorf("clearing surveys: %w", err)
	}

	// drop cached copies of the replaced graph so reads go back to Mongo
	for _, p := range oldPages {
		if err := s.pageCache.Invalidate(ctx, p.ID); err != nil {
			log.Printf("page cache invalidation failed for %s: %v", p.ID, err)
		}
	}

	for i, tpl := range templates {
		survey, err := s.builder.Build(ctx, tpl, len(templates)-i)
		if err != nil {
			return false, fmt.Errorf("building survey %q: %w", tpl.Title, err)
		}
		log.Printf("seeded survey %q (%s)", survey.Title, survey.ID)
	}

	if err := s.seedRepo.SetHash(ctx, hash); err != nil {
		return false, fmt.Errorf("storing seed hash: %w", err)
	}
	return true, nil
}
