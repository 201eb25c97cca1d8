package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"surveygraph/internal/engine"
	"surveygraph/internal/model"
	"surveygraph/internal/repository"
)

var ErrReportNotFound = errors.New("report not found")

// ReportService flattens a finished session's response chain into a
// stored report with a CSV rendering.
type ReportService struct {
	reportRepo   repository.ReportRepo
	responseRepo repository.ResponseRepo
	surveyRepo   repository.SurveyRepo
	loader       engine.Loader
}

// NewReportService creates a new report service
func NewReportService(
	reportRepo repository.ReportRepo,
	responseRepo repository.ResponseRepo,
	surveyRepo repository.SurveyRepo,
	loader engine.Loader,
) *ReportService {
	return &ReportService{
		reportRepo:   reportRepo,
		responseRepo: responseRepo,
		surveyRepo:   surveyRepo,
		loader:       loader,
	}
}

// GenerateForSession walks the chain backward from lastResponse,
// reverses it into page order and flattens every visible answered
// question into a report row.
func (s *ReportService) GenerateForSession(ctx context.Context, session *model.Session) (*model.Report, error) {
	if existing, err := s.reportRepo.GetBySessionID(ctx, session.ID); err != nil {
		return nil, fmt.Errorf("checking existing report: %w", err)
	} else if existing != nil {
		return existing, nil
	}

	survey, err := s.surveyRepo.GetByID(ctx, session.SurveyID)
	if err != nil {
		return nil, fmt.Errorf("loading survey: %w", err)
	}
	if survey == nil {
		return nil, ErrSurveyNotFound
	}

	chain, err := s.responseChain(ctx, session)
	if err != nil {
		return nil, err
	}

	var answers []model.ReportAnswer
	if survey.AuthType == model.AuthTypeOptional {
		anonymous := "Yes"
		if session.Auth {
			anonymous = "No"
		}
		answers = append(answers, model.ReportAnswer{
			Title:  "Anonymous",
			Answer: anonymous,
			Type:   model.QuestionTypeCheckbox,
		})
	}

	values := make(map[string]any)
	for _, response := range chain {
		for k, v := range response.Values {
			values[k] = v
		}

		questions, err := s.loader.PageQuestions(ctx, response.PageID)
		if err != nil {
			return nil, fmt.Errorf("loading page %s: %w", response.PageID, err)
		}
		byID := make(map[string]model.Question, len(questions))
		for _, q := range questions {
			byID[q.ID] = q
		}

		for _, id := range response.Questions {
			q, ok := byID[id]
			if !ok {
				continue
			}
			eq, removed := engine.ResolveQuestion(q, values)
			if removed || !engine.Satisfied(eq.Condition, values) {
				continue
			}
			v, answered := values[id]
			if !answered || v == nil || v == "" {
				continue
			}
			answers = append(answers, model.ReportAnswer{
				QuestionID:     id,
				Title:          eq.Title,
				Answer:         displayAnswer(eq, v),
				Type:           eq.Type,
				Required:       eq.Required,
				RiskEvaluation: eq.RiskEvaluation,
			})
		}
	}

	finishedAt := time.Now()
	if session.FinishedAt != nil {
		finishedAt = *session.FinishedAt
	}
	report := &model.Report{
		SessionID:   session.ID,
		SurveyID:    survey.ID,
		SurveyTitle: survey.Title,
		Auth:        session.Auth,
		Email:       session.Email,
		Phone:       session.Phone,
		StartedAt:   session.CreatedAt,
		FinishedAt:  finishedAt,
		Answers:     answers,
	}
	report.CSV, err = renderCSV(report)
	if err != nil {
		return nil, fmt.Errorf("rendering csv: %w", err)
	}

	id, err := s.reportRepo.Create(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("storing report: %w", err)
	}
	report.ID = id
	return report, nil
}

// GetBySession returns the stored report of a session.
func (s *ReportService) GetBySession(ctx context.Context, sessionID string) (*model.Report, error) {
	report, err := s.reportRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrReportNotFound
	}
	return report, nil
}

// ListBySurvey returns all reports of a survey, newest first.
func (s *ReportService) ListBySurvey(ctx context.Context, surveyID string) ([]*model.Report, error) {
	return s.reportRepo.ListBySurvey(ctx, surveyID)
}

func (s *ReportService) responseChain(ctx context.Context, session *model.Session) ([]*model.Response, error) {
	var backward []*model.Response
	id := session.LastResponse
	for id != "" && len(backward) < maxChainLength {
		response, err := s.responseRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("walking response chain: %w", err)
		}
		if response == nil {
			break
		}
		backward = append(backward, response)
		id = response.PreviousResponse
	}

	chain := make([]*model.Response, len(backward))
	for i, r := range backward {
		chain[len(backward)-1-i] = r
	}
	return chain, nil
}

// displayAnswer renders an answer for human reading: option titles for
// choice types, joined URLs for files, coordinates for locations.
func displayAnswer(q model.Question, v any) string {
	switch q.Type {
	case model.QuestionTypeSelect, model.QuestionTypeRadio,
		model.QuestionTypeInfoCard, model.QuestionTypeAddress:
		if id, ok := v.(string); ok {
			if o := q.Option(id); o != nil {
				return o.Title
			}
		}
	case model.QuestionTypeMultiSelect:
		if items, ok := v.([]any); ok {
			titles := make([]string, 0, len(items))
			for _, item := range items {
				id, _ := item.(string)
				if o := q.Option(id); o != nil {
					titles = append(titles, o.Title)
				}
			}
			return strings.Join(titles, ", ")
		}
	case model.QuestionTypeFiles:
		if items, ok := v.([]any); ok {
			urls := make([]string, 0, len(items))
			for _, item := range items {
				if f, ok := item.(map[string]any); ok {
					if url, ok := f["url"].(string); ok {
						urls = append(urls, url)
					}
				}
			}
			return strings.Join(urls, ", ")
		}
	case model.QuestionTypeLocation:
		if coords, ok := locationCoordinates(v); ok {
			return coords
		}
	}
	return plainString(v)
}

func locationCoordinates(v any) (string, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return "", false
	}
	features, ok := m["features"].([]any)
	if !ok || len(features) == 0 {
		return "", false
	}
	feature, ok := features[0].(map[string]any)
	if !ok {
		return "", false
	}
	geometry, ok := feature["geometry"].(map[string]any)
	if !ok {
		return "", false
	}
	coords, ok := geometry["coordinates"].([]any)
	if !ok {
		return "", false
	}
	parts := make([]string, 0, len(coords))
	for _, c := range coords {
		parts = append(parts, plainString(c))
	}
	return strings.Join(parts, ", "), true
}

func plainString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func renderCSV(report *model.Report) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := [][]string{
		{"Survey", report.SurveyTitle},
		{"Session", report.SessionID},
		{"Started", report.StartedAt.Format(time.RFC3339)},
		{"Finished", report.FinishedAt.Format(time.RFC3339)},
	}
	if report.Auth {
		if report.Email != "" {
			header = append(header, []string{"Email", report.Email})
		}
		if report.Phone != "" {
			header = append(header, []string{"Phone", report.Phone})
		}
	}
	header = append(header, []string{}, []string{"Question", "Answer"})
	for _, row := range header {
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	for _, a := range report.Answers {
		if err := w.Write([]string{a.Title, a.Answer}); err != nil {
			return "", err
		}
	}
	w.Flush()
	return buf.String(), w.Error()
}
