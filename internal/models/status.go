package models

import (
	"fmt"
	"strings"
)

// CaseStatus is the lifecycle state of a misconduct case.
type CaseStatus string

const (
	// CaseStatusPending is the default state of a freshly reported case.
	CaseStatusPending CaseStatus = "Pending"
	// CaseStatusUnderInvestigation marks a case being actively reviewed or reopened.
	CaseStatusUnderInvestigation CaseStatus = "Under Investigation"
	// CaseStatusResolved marks a case with a decided outcome.
	CaseStatusResolved CaseStatus = "Resolved"
	// CaseStatusClosed marks a finalized case; only closed cases carry a closure date.
	CaseStatusClosed CaseStatus = "Closed"
)

var caseStatuses = []CaseStatus{
	CaseStatusPending,
	CaseStatusUnderInvestigation,
	CaseStatusResolved,
	CaseStatusClosed,
}

// CaseStatuses lists the canonical statuses in lifecycle order.
func CaseStatuses() []CaseStatus {
	return append([]CaseStatus(nil), caseStatuses...)
}

// ParseCaseStatus matches value case-insensitively against the canonical statuses.
func ParseCaseStatus(value string) (CaseStatus, error) {
	trimmed := strings.TrimSpace(value)
	for _, status := range caseStatuses {
		if strings.EqualFold(trimmed, string(status)) {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: unknown case status %q", ErrInvalidInput, value)
}

func (s CaseStatus) String() string {
	return string(s)
}

// IsValid reports whether s is one of the canonical statuses.
func (s CaseStatus) IsValid() bool {
	for _, status := range caseStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsClosed reports whether the status is Closed.
func (s CaseStatus) IsClosed() bool {
	return strings.EqualFold(string(s), string(CaseStatusClosed))
}

// IsResolvedOrClosed reports whether the case already has a decided outcome.
func (s CaseStatus) IsResolvedOrClosed() bool {
	return s.IsClosed() || strings.EqualFold(string(s), string(CaseStatusResolved))
}
