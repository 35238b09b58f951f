package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/aivt-api/internal/models"
)

// PenaltyOutcome describes the status side effects of ApplyPenalty.
type PenaltyOutcome struct {
	PreviousStatus models.CaseStatus
	// Revised is set when a penalty was applied to a closed case, moving it
	// back to Resolved and clearing its closure date.
	Revised bool
}

// ApplyPenalty records penalty as the case sanction. A case that is already
// Resolved or Closed is (re)marked Resolved.
func ApplyPenalty(v *models.Violation, penalty string, at time.Time) (PenaltyOutcome, error) {
	if v == nil {
		return PenaltyOutcome{}, fmt.Errorf("%w: violation is required", models.ErrInvalidInput)
	}
	penalty = strings.TrimSpace(penalty)
	if penalty == "" {
		return PenaltyOutcome{}, fmt.Errorf("%w: penalty must not be empty", models.ErrInvalidInput)
	}

	outcome := PenaltyOutcome{PreviousStatus: v.CurrentStatus}
	v.AppliedSanction = penalty
	if v.CurrentStatus.IsResolvedOrClosed() {
		outcome.Revised = v.CurrentStatus.IsClosed()
		if err := v.UpdateStatus(models.CaseStatusResolved, at); err != nil {
			return outcome, err
		}
	}

	return outcome, nil
}

// CloseCase finalizes the case and stamps its closure date.
func CloseCase(v *models.Violation, at time.Time) error {
	if v == nil {
		return fmt.Errorf("%w: violation is required", models.ErrInvalidInput)
	}
	return v.UpdateStatus(models.CaseStatusClosed, at)
}

// ReopenCase returns the case to Under Investigation and clears its closure date.
func ReopenCase(v *models.Violation, at time.Time) error {
	if v == nil {
		return fmt.Errorf("%w: violation is required", models.ErrInvalidInput)
	}
	return v.UpdateStatus(models.CaseStatusUnderInvestigation, at)
}
