package valuation

import (
	"maps"
	"time"

	"github.com/godilite/valuation-server/internal/industry"
)

// Status is the lifecycle state of an assessment. Drafts live client-side;
// everything the engine emits is processed and final.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusProcessed Status = "processed"
)

// Assessment is the persisted envelope around one engine run. Version is
// assigned by storage and counts from 1 along a resubmission chain.
type Assessment struct {
	ID           string           `json:"id"`
	SupersedesID string           `json:"supersedes_id,omitempty"`
	Version      int              `json:"version,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	Tier         Tier             `json:"tier"`
	Status       Status           `json:"status"`
	Processed    bool             `json:"processed"`
	Contact      Contact          `json:"contact"`
	Company      Company          `json:"company"`
	Financials   FinancialInputs  `json:"financials"`
	Adjustments  Adjustments      `json:"adjustments"`
	ValueDrivers map[Driver]Grade `json:"value_drivers"`
	Industry     industry.Context `json:"industry"`
	Result       ValuationResult  `json:"result"`
	Narrative    Narrative        `json:"narrative"`
}

// RecordMeta carries the identity fields the caller assigns to a record.
type RecordMeta struct {
	ID           string
	SupersedesID string
	CreatedAt    time.Time
}

// BuildAssessment assembles a processed Assessment from a submission and its
// evaluation. No value in ev is recomputed.
func BuildAssessment(in RawAssessmentInput, ev Evaluation, meta RecordMeta) Assessment {
	return Assessment{
		ID:           meta.ID,
		SupersedesID: meta.SupersedesID,
		CreatedAt:    meta.CreatedAt.UTC(),
		Tier:         ev.Tier,
		Status:       StatusProcessed,
		Processed:    true,
		Contact:      in.Contact,
		Company:      in.Company,
		Financials:   ev.Financials,
		Adjustments:  ev.Adjustments,
		ValueDrivers: maps.Clone(ev.ValueDrivers),
		Industry:     ev.Industry,
		Result:       ev.Result,
		Narrative:    in.Narrative,
	}
}
