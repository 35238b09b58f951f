package models

import (
	"fmt"
	"strings"
	"time"
)

// DefaultSanction is recorded until a penalty is applied.
const DefaultSanction = "None"

// DateLayout is the calendar date format used for incident and closure dates.
const DateLayout = "2006-01-02"

// Violation is one recorded academic-misconduct case. Shared case fields live on
// the struct; the variant specific evidence lives in Details.
type Violation struct {
	RecordID            int
	Student             Student
	MisconductType      string
	IncidentDate        time.Time
	ReportingFaculty    string
	GravityLevel        int
	CurrentStatus       CaseStatus
	AppliedSanction     string
	IncidentDescription string
	SupportingEvidence  string
	ClosureDate         *time.Time
	Details             ViolationDetails
}

// ViolationParams carries the constructor arguments for NewViolation.
type ViolationParams struct {
	Student             *Student
	MisconductType      string
	IncidentDate        time.Time
	ReportingFaculty    string
	GravityLevel        int
	CurrentStatus       CaseStatus
	AppliedSanction     string
	IncidentDescription string
	RecordID            int
	SupportingEvidence  string
	Details             ViolationDetails
}

// NewViolation validates params and builds a case. The record identifier is
// normally overwritten by the registry on insertion.
func NewViolation(params ViolationParams) (*Violation, error) {
	return newViolationAt(params, time.Now())
}

func newViolationAt(params ViolationParams, now time.Time) (*Violation, error) {
	if params.Student == nil {
		return nil, fmt.Errorf("%w: student is required", ErrInvalidInput)
	}
	if params.Details == nil {
		return nil, fmt.Errorf("%w: violation details are required", ErrInvalidInput)
	}
	if err := ValidateGravity(params.GravityLevel); err != nil {
		return nil, err
	}
	if params.IncidentDate.IsZero() {
		return nil, fmt.Errorf("%w: incident date is required", ErrInvalidInput)
	}
	incident := DateOf(params.IncidentDate)
	if incident.After(DateOf(now)) {
		return nil, fmt.Errorf("%w: incident date %s is in the future", ErrInvalidInput, incident.Format(DateLayout))
	}
	if err := params.Details.validate(); err != nil {
		return nil, err
	}

	status := CaseStatusPending
	if strings.TrimSpace(string(params.CurrentStatus)) != "" {
		parsed, err := ParseCaseStatus(string(params.CurrentStatus))
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	sanction := strings.TrimSpace(params.AppliedSanction)
	if sanction == "" {
		sanction = DefaultSanction
	}

	misconductType := strings.TrimSpace(params.MisconductType)
	if misconductType == "" {
		misconductType = params.Details.Kind().Label()
	}

	v := &Violation{
		RecordID:            params.RecordID,
		Student:             *params.Student,
		MisconductType:      misconductType,
		IncidentDate:        incident,
		ReportingFaculty:    params.ReportingFaculty,
		GravityLevel:        params.GravityLevel,
		CurrentStatus:       status,
		AppliedSanction:     sanction,
		IncidentDescription: params.IncidentDescription,
		SupportingEvidence:  params.SupportingEvidence,
		Details:             params.Details,
	}
	if status.IsClosed() {
		closedAt := DateOf(now)
		v.ClosureDate = &closedAt
	}
	return v, nil
}

// ValidateGravity enforces the 1 (very minor) to 5 (very serious) scale.
func ValidateGravity(level int) error {
	if level < 1 || level > 5 {
		return fmt.Errorf("%w: gravity level must be between 1 and 5, got %d", ErrInvalidInput, level)
	}
	return nil
}

// DateOf truncates t to its calendar date, expressed at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Kind returns the variant tag, or an empty kind when no details are attached.
func (v *Violation) Kind() ViolationKind {
	if v.Details == nil {
		return ""
	}
	return v.Details.Kind()
}

func (v *Violation) EnrollmentNumber() string { return v.Student.EnrollmentNumber }

func (v *Violation) FullName() string { return v.Student.FullName }

func (v *Violation) Email() string { return v.Student.Email }

func (v *Violation) Department() string { return v.Student.Department }

// IsClosed reports whether the case is currently closed.
func (v *Violation) IsClosed() bool {
	return v.CurrentStatus.IsClosed()
}

// UpdateStatus moves the case to status. Entering Closed stamps the closure
// date with at; leaving Closed clears it.
func (v *Violation) UpdateStatus(status CaseStatus, at time.Time) error {
	parsed, err := ParseCaseStatus(string(status))
	if err != nil {
		return err
	}

	v.CurrentStatus = parsed
	if parsed.IsClosed() {
		closedAt := DateOf(at)
		v.ClosureDate = &closedAt
	} else {
		v.ClosureDate = nil
	}
	return nil
}

// Clone returns a copy that shares no mutable state with v.
func (v *Violation) Clone() Violation {
	clone := *v
	if v.ClosureDate != nil {
		closedAt := *v.ClosureDate
		clone.ClosureDate = &closedAt
	}
	return clone
}

// Summary renders the one-line case listing.
func (v *Violation) Summary() string {
	return fmt.Sprintf("Case ID: %d | Student: %s | Type: %s | Status: %s | Gravity: %d/5",
		v.RecordID, v.Student.FullName, v.MisconductType, v.CurrentStatus, v.GravityLevel)
}

// ResolutionSummary renders the status, sanction and closure bookkeeping of the case.
func (v *Violation) ResolutionSummary() string {
	return fmt.Sprintf("Case ID: %d | Student: %s | Status: %s | Sanction: %s | Closure Date: %s",
		v.RecordID, v.Student.FullName, v.CurrentStatus, v.AppliedSanction, FormatOptionalDate(v.ClosureDate))
}

// FormatOptionalDate renders a calendar date or "N/A" when absent.
func FormatOptionalDate(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.Format(DateLayout)
}
