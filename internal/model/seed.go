package model

import "time"

// SeedKeySurveys identifies the survey seed hash row.
const SeedKeySurveys = "surveys"

// SeedMetadata records the content hash of the last applied seed so
// unchanged templates are not re-applied.
type SeedMetadata struct {
	Key       string    `json:"key" bson:"key"`
	Hash      string    `json:"hash" bson:"hash"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
