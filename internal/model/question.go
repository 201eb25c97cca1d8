package model

// QuestionType defines the kind of a question and therefore how its
// answer is shaped and validated.
type QuestionType string

const (
	// Choice types: the answer is an option id (or an array of them).
	QuestionTypeSelect      QuestionType = "SELECT"
	QuestionTypeRadio       QuestionType = "RADIO"
	QuestionTypeInfoCard    QuestionType = "INFOCARD"
	QuestionTypeAddress     QuestionType = "ADDRESS"
	QuestionTypeMultiSelect QuestionType = "MULTISELECT"

	QuestionTypeCheckbox QuestionType = "CHECKBOX"

	QuestionTypeEmail    QuestionType = "EMAIL"
	QuestionTypeInput    QuestionType = "INPUT"
	QuestionTypeNumber   QuestionType = "NUMBER"
	QuestionTypeText     QuestionType = "TEXT"
	QuestionTypeDate     QuestionType = "DATE"
	QuestionTypeDateTime QuestionType = "DATETIME"

	QuestionTypeFiles    QuestionType = "FILES"
	QuestionTypeLocation QuestionType = "LOCATION"
)

// IsChoice reports whether the type carries options and can branch
// through them.
func (t QuestionType) IsChoice() bool {
	switch t {
	case QuestionTypeSelect, QuestionTypeMultiSelect, QuestionTypeRadio,
		QuestionTypeInfoCard, QuestionTypeAddress:
		return true
	}
	return false
}

// AuthRelation marks a question whose answer is pre-filled from the
// session identity.
type AuthRelation string

const (
	AuthRelationEmail AuthRelation = "EMAIL"
	AuthRelationPhone AuthRelation = "PHONE"
)

// Condition gates visibility on a previously given answer. It holds
// when the target question's answer equals Value, or contains it when
// the answer is a collection.
type Condition struct {
	Question string `json:"question" bson:"question"`
	Value    any    `json:"value" bson:"value"`
}

// PatchValues is the set of fields a dynamic patch may override.
// Remove drops the question from its page entirely; it is a separate
// field from the question's own visibility Condition.
type PatchValues struct {
	Title       *string  `json:"title,omitempty" bson:"title,omitempty"`
	Description *string  `json:"description,omitempty" bson:"description,omitempty"`
	Hint        *string  `json:"hint,omitempty" bson:"hint,omitempty"`
	Required    *bool    `json:"required,omitempty" bson:"required,omitempty"`
	Options     []string `json:"options,omitempty" bson:"options,omitempty"`
	Remove      bool     `json:"remove,omitempty" bson:"remove,omitempty"`
}

// Patch is one dynamic overlay entry, applied when its condition holds
// against the answers given so far.
type Patch struct {
	Condition Condition   `json:"condition" bson:"condition"`
	Values    PatchValues `json:"values" bson:"values"`
}

// Option is a selectable choice of a choice-type question and an
// optional branch point into the graph.
type Option struct {
	ID           string `json:"id" bson:"id"`
	Title        string `json:"title" bson:"title"`
	Priority     int    `json:"priority" bson:"priority"`
	NextQuestion string `json:"nextQuestion,omitempty" bson:"nextQuestion,omitempty"`
}

// Question is a node of the survey graph.
type Question struct {
	ID             string       `json:"id" bson:"_id,omitempty"`
	PageID         string       `json:"pageId" bson:"pageId"`
	SurveyID       string       `json:"surveyId,omitempty" bson:"surveyId,omitempty"`
	Type           QuestionType `json:"type" bson:"type"`
	Title          string       `json:"title" bson:"title"`
	Description    string       `json:"description,omitempty" bson:"description,omitempty"`
	Hint           string       `json:"hint,omitempty" bson:"hint,omitempty"`
	Required       bool         `json:"required" bson:"required"`
	RiskEvaluation bool         `json:"riskEvaluation,omitempty" bson:"riskEvaluation,omitempty"`
	Priority       int          `json:"priority" bson:"priority"`
	NextQuestion   string       `json:"nextQuestion,omitempty" bson:"nextQuestion,omitempty"`
	AuthRelation   AuthRelation `json:"authRelation,omitempty" bson:"authRelation,omitempty"`
	Condition      []Condition  `json:"condition,omitempty" bson:"condition,omitempty"`
	DynamicFields  []Patch      `json:"dynamicFields,omitempty" bson:"dynamicFields,omitempty"`
	Options        []Option     `json:"options,omitempty" bson:"options,omitempty"`
}

// Option returns the option with the given id, or nil.
func (q *Question) Option(id string) *Option {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return &q.Options[i]
		}
	}
	return nil
}

// OptionIDs returns the ids of the question's options in stored order.
func (q *Question) OptionIDs() []string {
	ids := make([]string, len(q.Options))
	for i, o := range q.Options {
		ids[i] = o.ID
	}
	return ids
}
