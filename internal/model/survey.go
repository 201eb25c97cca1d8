package model

import "time"

// AuthType defines whether a survey requires respondent identification.
type AuthType string

const (
	AuthTypeNone     AuthType = "NONE"
	AuthTypeOptional AuthType = "OPTIONAL"
	AuthTypeRequired AuthType = "REQUIRED"
)

// Survey is the root of a question graph. FirstPage is the traversal
// entry point.
type Survey struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Icon        string    `json:"icon,omitempty" bson:"icon,omitempty"`
	Priority    int       `json:"priority" bson:"priority"`
	FirstPage   string    `json:"firstPage" bson:"firstPage"`
	AuthType    AuthType  `json:"authType" bson:"authType"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Page groups questions shown together. Dynamic fields patch the page
// title and description against the answers given so far.
type Page struct {
	ID            string  `json:"id" bson:"_id,omitempty"`
	Title         string  `json:"title" bson:"title"`
	Description   string  `json:"description,omitempty" bson:"description,omitempty"`
	DynamicFields []Patch `json:"dynamicFields,omitempty" bson:"dynamicFields,omitempty"`
}
