package entity

import "fmt"

// PromotionState is the progress of one staged statement through promotion.
type PromotionState string

const (
	PromotionStaged           PromotionState = "staged"
	PromotionClaimCreated     PromotionState = "claim_created"
	PromotionQualifierApplied PromotionState = "qualifier_applied"
	PromotionNoQualifier      PromotionState = "no_qualifier"
	PromotionReferenceApplied PromotionState = "reference_applied"
	PromotionNoReference      PromotionState = "no_reference"
	PromotionPromoted         PromotionState = "promoted"
)

// PromotionOutcome records how far one statement got.
type PromotionOutcome struct {
	StatementID int64          `json:"statement_id"`
	ClaimID     string         `json:"claim_id,omitempty"`
	State       PromotionState `json:"state"`
	Error       string         `json:"error,omitempty"`
}

// PromotionReport summarises a promotion batch for one (item, user) pair.
type PromotionReport struct {
	ItemID   string             `json:"item_id"`
	Username string             `json:"username"`
	Outcomes []PromotionOutcome `json:"outcomes"`
	Purged   bool               `json:"purged"`
}

// Uploaded counts statements whose claim exists remotely.
func (r *PromotionReport) Uploaded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.ClaimID != "" {
			n++
		}
	}
	return n
}

// Succeeded reports whether every statement was promoted.
func (r *PromotionReport) Succeeded() bool {
	for _, o := range r.Outcomes {
		if o.State != PromotionPromoted {
			return false
		}
	}
	return true
}

// PromotionError stops a batch at the failing statement. Statements uploaded before it stay remote.
type PromotionError struct {
	Report      *PromotionReport
	StatementID int64
	Err         error
}

func (e *PromotionError) Error() string {
	uploaded := 0
	if e.Report != nil {
		uploaded = e.Report.Uploaded()
	}
	return fmt.Sprintf("promotion stopped at statement %d (%d claim(s) already uploaded, local annotations kept): %v",
		e.StatementID, uploaded, e.Err)
}

func (e *PromotionError) Unwrap() error { return e.Err }
