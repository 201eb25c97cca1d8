package model

import "time"

// Session is one respondent's run through a survey. LastResponse tracks
// the tail of the response chain; FinishedAt is set exactly once.
type Session struct {
	ID           string     `json:"id" bson:"_id,omitempty"`
	SurveyID     string     `json:"surveyId" bson:"surveyId"`
	Auth         bool       `json:"auth" bson:"auth"`
	Email        string     `json:"email,omitempty" bson:"email,omitempty"`
	Phone        string     `json:"phone,omitempty" bson:"phone,omitempty"`
	LastResponse string     `json:"lastResponse,omitempty" bson:"lastResponse,omitempty"`
	CreatedAt    time.Time  `json:"createdAt" bson:"createdAt"`
	FinishedAt   *time.Time `json:"finishedAt,omitempty" bson:"finishedAt,omitempty"`
}

// Finished reports whether the session has been completed.
func (s *Session) Finished() bool {
	return s.FinishedAt != nil
}
