package model

import "time"

// ReportAnswer is one flattened answer row: option ids resolved to
// titles, files to joined URLs, locations to coordinate pairs.
type ReportAnswer struct {
	QuestionID     string       `json:"questionId" bson:"questionId"`
	Title          string       `json:"title" bson:"title"`
	Answer         string       `json:"answer" bson:"answer"`
	Type           QuestionType `json:"type" bson:"type"`
	Required       bool         `json:"required" bson:"required"`
	RiskEvaluation bool         `json:"riskEvaluation,omitempty" bson:"riskEvaluation,omitempty"`
}

// Report is the flattened result of a finished session.
type Report struct {
	ID          string         `json:"id" bson:"_id,omitempty"`
	SessionID   string         `json:"sessionId" bson:"sessionId"`
	SurveyID    string         `json:"surveyId" bson:"surveyId"`
	SurveyTitle string         `json:"surveyTitle" bson:"surveyTitle"`
	Auth        bool           `json:"auth" bson:"auth"`
	Email       string         `json:"email,omitempty" bson:"email,omitempty"`
	Phone       string         `json:"phone,omitempty" bson:"phone,omitempty"`
	StartedAt   time.Time      `json:"startedAt" bson:"startedAt"`
	FinishedAt  time.Time      `json:"finishedAt" bson:"finishedAt"`
	Answers     []ReportAnswer `json:"answers" bson:"answers"`
	CSV         string         `json:"csv" bson:"csv"`
	CreatedAt   time.Time      `json:"createdAt" bson:"createdAt"`
}
