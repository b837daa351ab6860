package models

import "time"

// AssessmentRecord is one row of the assessments table. Document holds the
// full assessment as JSON; the other columns are indexed projections of it.
type AssessmentRecord struct {
	ID           string
	SupersedesID string
	RootID       string
	Version      int
	Tier         string
	Status       string
	OverallGrade string
	MidEstimate  float64
	CreatedAt    time.Time
	Document     []byte
}
