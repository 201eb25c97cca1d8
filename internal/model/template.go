package model

// Template types describe a survey symbolically, before any database
// ids exist. Questions are referenced by author-chosen keys; the graph
// builder resolves keys to stored ids in its second phase.

// ConditionTemplate references a question by key. The expected value is
// resolved one of three ways, in this order: Value literally when set;
// the target's option at ValueIndex; otherwise the target's option
// whose branch leads to the question holding the condition.
type ConditionTemplate struct {
	Question   string `json:"question"`
	Value      any    `json:"value,omitempty"`
	ValueIndex *int   `json:"valueIndex,omitempty"`
}

// PatchTemplate is a dynamic overlay entry in symbolic form.
// OptionIndexes index into the patched question's own options.
type PatchTemplate struct {
	Condition     ConditionTemplate `json:"condition"`
	Title         *string           `json:"title,omitempty"`
	Description   *string           `json:"description,omitempty"`
	Hint          *string           `json:"hint,omitempty"`
	Required      *bool             `json:"required,omitempty"`
	OptionIndexes []int             `json:"options,omitempty"`
	Remove        bool              `json:"remove,omitempty"`
}

// OptionTemplate is an option whose branch target is a question key.
type OptionTemplate struct {
	Title        string `json:"title"`
	NextQuestion string `json:"nextQuestion,omitempty"`
}

// QuestionTemplate is a question in symbolic form, identified by Key
// within its survey template.
type QuestionTemplate struct {
	Key            string             `json:"key"`
	Type           QuestionType       `json:"type"`
	Title          string             `json:"title"`
	Description    string             `json:"description,omitempty"`
	Hint           string             `json:"hint,omitempty"`
	Required       bool               `json:"required,omitempty"`
	RiskEvaluation bool               `json:"riskEvaluation,omitempty"`
	NextQuestion   string             `json:"nextQuestion,omitempty"`
	AuthRelation   AuthRelation       `json:"authRelation,omitempty"`
	Condition      *ConditionTemplate `json:"condition,omitempty"`
	DynamicFields  []PatchTemplate    `json:"dynamicFields,omitempty"`
	Options        []OptionTemplate   `json:"options,omitempty"`
}

// PageTemplate groups question templates; order defines priority.
type PageTemplate struct {
	Title         string             `json:"title"`
	Description   string             `json:"description,omitempty"`
	DynamicFields []PatchTemplate    `json:"dynamicFields,omitempty"`
	Questions     []QuestionTemplate `json:"questions"`
}

// SurveyTemplate is a complete symbolic survey definition.
type SurveyTemplate struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Icon        string         `json:"icon,omitempty"`
	AuthType    AuthType       `json:"authType"`
	Pages       []PageTemplate `json:"pages"`
}
