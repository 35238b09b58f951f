package models

import (
	"time"

	"gorm.io/datatypes"
)

// CaseRecord is the stored row for one case. Position preserves registry
// insertion order; Details holds the variant payload keyed by Kind.
type CaseRecord struct {
	RecordID            int       `gorm:"primaryKey;autoIncrement:false"`
	Position            int       `gorm:"not null;index"`
	EnrollmentNumber    string    `gorm:"size:8;not null;index"`
	StudentName         string    `gorm:"size:100;not null"`
	StudentEmail        string    `gorm:"size:254"`
	Department          string    `gorm:"size:100"`
	Kind                string    `gorm:"size:32;not null"`
	MisconductType      string    `gorm:"size:64;not null"`
	IncidentDate        time.Time `gorm:"not null"`
	ReportingFaculty    string    `gorm:"size:255"`
	GravityLevel        int       `gorm:"not null"`
	CurrentStatus       string    `gorm:"size:32;not null"`
	AppliedSanction     string    `gorm:"type:text"`
	IncidentDescription string    `gorm:"type:text"`
	SupportingEvidence  string    `gorm:"type:text"`
	ClosureDate         *time.Time
	Details             datatypes.JSON `gorm:"type:json"`
}

// TableName pins the table name used by the case store.
func (CaseRecord) TableName() string {
	return "case_records"
}

// RegistryState is the single-row table holding the identifier counter.
type RegistryState struct {
	ID         uint      `gorm:"primaryKey"`
	NextCaseID int       `gorm:"not null"`
	CaseCount  int       `gorm:"not null"`
	SavedAt    time.Time `gorm:"not null"`
}
