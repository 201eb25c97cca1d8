package model

import "time"

// Progress is the respondent's position in the estimated page sequence.
type Progress struct {
	Current int `json:"current" bson:"current"`
	Total   int `json:"total" bson:"total"`
}

// Response is one page's worth of answers inside a session. Questions
// holds the ids visible on the page at creation time; Values stores the
// answers for this page only. PreviousResponse links the chain backward
// toward the first page.
type Response struct {
	ID               string         `json:"id" bson:"_id,omitempty"`
	SessionID        string         `json:"sessionId" bson:"sessionId"`
	PageID           string         `json:"pageId" bson:"pageId"`
	PreviousResponse string         `json:"previousResponse,omitempty" bson:"previousResponse,omitempty"`
	Questions        []string       `json:"questions" bson:"questions"`
	Values           map[string]any `json:"values,omitempty" bson:"values,omitempty"`
	Progress         Progress       `json:"progress" bson:"progress"`
	CreatedAt        time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt" bson:"updatedAt"`
}
