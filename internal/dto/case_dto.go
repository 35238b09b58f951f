package dto

import (
	"time"

	"github.com/noah-isme/aivt-api/internal/models"
)

// StudentPayload carries the student a case is filed against.
type StudentPayload struct {
	EnrollmentNumber string `json:"enrollment_number" validate:"required,len=8,numeric"`
	FullName         string `json:"full_name" validate:"required,min=6,max=100,personname"`
	Email            string `json:"email" validate:"required,email,max=254"`
	Department       string `json:"department" validate:"required,min=2,max=100"`
}

// CaseCreateRequest registers a new misconduct case. The variant fields that
// apply depend on Kind; SimilarityPercentage is mandatory for both plagiarism
// kinds.
type CaseCreateRequest struct {
	Kind                string         `json:"kind" validate:"required,oneof=plagiarism cheating collusion code_plagiarism"`
	Student             StudentPayload `json:"student"`
	IncidentDate        string         `json:"incident_date" validate:"required,datetime=2006-01-02"`
	ReportingFaculty    string         `json:"reporting_faculty" validate:"required,min=3,max=100,facultyname"`
	GravityLevel        int            `json:"gravity_level" validate:"required,min=1,max=5"`
	Status              string         `json:"status" validate:"omitempty,max=50"`
	Sanction            string         `json:"sanction" validate:"omitempty,max=500"`
	IncidentDescription string         `json:"incident_description" validate:"required,min=10,max=1000"`
	SupportingEvidence  string         `json:"supporting_evidence" validate:"omitempty,max=500"`

	SourceDetected        string   `json:"source_detected" validate:"omitempty,max=500"`
	SimilarityPercentage  *float64 `json:"similarity_percentage" validate:"omitempty,gte=0,lte=100"`
	CheatingMethod        string   `json:"cheating_method" validate:"omitempty,max=500"`
	UnauthorizedMaterials string   `json:"unauthorized_materials" validate:"omitempty,max=500"`
	InvolvedParties       string   `json:"involved_parties" validate:"omitempty,max=500"`
	CollaborationDetails  string   `json:"collaboration_details" validate:"omitempty,max=500"`
	ProgrammingLanguage   string   `json:"programming_language" validate:"omitempty,max=100"`
	DetectionTool         string   `json:"detection_tool" validate:"omitempty,max=100"`
}

// CaseStatusRequest sets the status of a case.
type CaseStatusRequest struct {
	Status string `json:"status" validate:"required,max=50"`
}

// CasePenaltyRequest records a sanction on a case.
type CasePenaltyRequest struct {
	Penalty string `json:"penalty" validate:"required,max=500"`
}

// StudentResponse describes a student in API payloads.
type StudentResponse struct {
	EnrollmentNumber string `json:"enrollment_number" yaml:"enrollment_number"`
	FullName         string `json:"full_name" yaml:"full_name"`
	Email            string `json:"email" yaml:"email"`
	Department       string `json:"department" yaml:"department"`
}

// CaseResponse describes a case in API payloads and exports.
type CaseResponse struct {
	ID                  int                     `json:"id" yaml:"id"`
	Kind                string                  `json:"kind" yaml:"kind"`
	MisconductType      string                  `json:"misconduct_type" yaml:"misconduct_type"`
	Student             StudentResponse         `json:"student" yaml:"student"`
	IncidentDate        string                  `json:"incident_date" yaml:"incident_date"`
	ReportingFaculty    string                  `json:"reporting_faculty" yaml:"reporting_faculty"`
	GravityLevel        int                     `json:"gravity_level" yaml:"gravity_level"`
	Status              string                  `json:"status" yaml:"status"`
	Sanction            string                  `json:"sanction" yaml:"sanction"`
	IncidentDescription string                  `json:"incident_description" yaml:"incident_description"`
	SupportingEvidence  string                  `json:"supporting_evidence" yaml:"supporting_evidence"`
	ClosureDate         *string                 `json:"closure_date" yaml:"closure_date"`
	Details             models.ViolationDetails `json:"details" yaml:"details"`
	Summary             string                  `json:"summary" yaml:"-"`
}

// PenaltyResponse reports the case after a penalty along with any status revision.
type PenaltyResponse struct {
	Case           CaseResponse `json:"case"`
	PreviousStatus string       `json:"previous_status"`
	Revised        bool         `json:"revised"`
}

// CaseReportResponse carries the printable report of one case.
type CaseReportResponse struct {
	ID     int    `json:"id"`
	Report string `json:"report"`
}

// StudentStatisticResponse is one row of the per-student case count.
type StudentStatisticResponse struct {
	Student StudentResponse `json:"student"`
	Cases   int             `json:"cases"`
}

// SaveResponse reports what an on-demand save wrote.
type SaveResponse struct {
	Cases      int `json:"cases"`
	NextCaseID int `json:"next_case_id"`
}

// StoreStatsResponse describes the persisted store.
type StoreStatsResponse struct {
	Location     string     `json:"location"`
	SizeKB       float64    `json:"size_kb"`
	LastModified *time.Time `json:"last_modified,omitempty"`
	SavedAt      *time.Time `json:"saved_at,omitempty"`
	CaseCount    int        `json:"case_count"`
	NextCaseID   int        `json:"next_case_id"`
}

// ExportResponse reports where an export or backup was written.
type ExportResponse struct {
	Path  string `json:"path"`
	Cases int    `json:"cases"`
}

// NewStudentResponse converts a student model.
func NewStudentResponse(student models.Student) StudentResponse {
	return StudentResponse{
		EnrollmentNumber: student.EnrollmentNumber,
		FullName:         student.FullName,
		Email:            student.Email,
		Department:       student.Department,
	}
}

// NewCaseResponse converts a case model.
func NewCaseResponse(v models.Violation) CaseResponse {
	resp := CaseResponse{
		ID:                  v.RecordID,
		Kind:                string(v.Kind()),
		MisconductType:      v.MisconductType,
		Student:             NewStudentResponse(v.Student),
		IncidentDate:        v.IncidentDate.Format(models.DateLayout),
		ReportingFaculty:    v.ReportingFaculty,
		GravityLevel:        v.GravityLevel,
		Status:              string(v.CurrentStatus),
		Sanction:            v.AppliedSanction,
		IncidentDescription: v.IncidentDescription,
		SupportingEvidence:  v.SupportingEvidence,
		Details:             v.Details,
		Summary:             v.Summary(),
	}
	if v.ClosureDate != nil {
		closed := v.ClosureDate.Format(models.DateLayout)
		resp.ClosureDate = &closed
	}
	return resp
}

// NewCaseResponses converts a list of cases preserving order.
func NewCaseResponses(cases []models.Violation) []CaseResponse {
	result := make([]CaseResponse, 0, len(cases))
	for _, v := range cases {
		result = append(result, NewCaseResponse(v))
	}
	return result
}
