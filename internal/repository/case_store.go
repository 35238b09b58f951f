package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/aivt-api/internal/models"
)

const registryStateID = 1

var (
	// ErrPersistenceFailure indicates the store could not be written or read.
	ErrPersistenceFailure = errors.New("persistence failure")
	// ErrStoreCorrupt indicates the store exists but its contents cannot be decoded.
	ErrStoreCorrupt = errors.New("case store is corrupt")
	// ErrStoreMissing indicates no store has been written yet.
	ErrStoreMissing = errors.New("case store does not exist")
	// ErrBackupUnsupported indicates the configured backend cannot produce file backups.
	ErrBackupUnsupported = errors.New("backup is only supported for sqlite stores")
)

// StoreStats describes the persisted store.
type StoreStats struct {
	Location     string
	SizeBytes    int64
	LastModified *time.Time
	SavedAt      *time.Time
	CaseCount    int
	NextCaseID   int
}

// SizeKB reports the store size in kilobytes.
func (s StoreStats) SizeKB() float64 {
	return float64(s.SizeBytes) / 1024.0
}

// CaseStore persists the full registry snapshot as one unit.
type CaseStore interface {
	Save(ctx context.Context, snapshot models.RegistrySnapshot) error
	// Load returns nil without error when no store exists.
	Load(ctx context.Context) (*models.RegistrySnapshot, error)
	Exists(ctx context.Context) (bool, error)
	Stats(ctx context.Context) (StoreStats, error)
	Backup(ctx context.Context, destination string) error
	Reset(ctx context.Context) error
}

type caseStore struct {
	db       *gorm.DB
	location string
	now      func() time.Time
}

// AutoMigrate creates the tables used by the case store.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.CaseRecord{}, &models.RegistryState{})
}

// NewCaseStore constructs a gorm backed case store. location is the sqlite file
// path and may be empty for postgres or in-memory databases.
func NewCaseStore(db *gorm.DB, location string) CaseStore {
	return &caseStore{db: db, location: location, now: time.Now}
}

func (s *caseStore) Save(ctx context.Context, snapshot models.RegistrySnapshot) error {
	records := make([]models.CaseRecord, 0, len(snapshot.Cases))
	for i, violation := range snapshot.Cases {
		record, err := newCaseRecord(violation, i)
		if err != nil {
			return fmt.Errorf("%w: encode case %d: %w", ErrPersistenceFailure, violation.RecordID, err)
		}
		records = append(records, record)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.CaseRecord{}).Error; err != nil {
			return err
		}
		if len(records) > 0 {
			if err := tx.CreateInBatches(records, 100).Error; err != nil {
				return err
			}
		}
		state := models.RegistryState{
			ID:         registryStateID,
			NextCaseID: snapshot.NextCaseID,
			CaseCount:  len(records),
			SavedAt:    s.now().UTC(),
		}
		return tx.Save(&state).Error
	})
	if err != nil {
		return fmt.Errorf("%w: save case store: %w", ErrPersistenceFailure, err)
	}

	return nil
}

func (s *caseStore) Load(ctx context.Context) (*models.RegistrySnapshot, error) {
	state, err := s.state(ctx)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, nil
	}

	var records []models.CaseRecord
	if err := s.db.WithContext(ctx).Order("position ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("%w: load cases: %w", ErrPersistenceFailure, err)
	}

	snapshot := &models.RegistrySnapshot{
		Cases:      make([]models.Violation, 0, len(records)),
		NextCaseID: state.NextCaseID,
	}
	for _, record := range records {
		violation, err := violationFromRecord(record)
		if err != nil {
			return nil, fmt.Errorf("%w: case %d: %w", ErrStoreCorrupt, record.RecordID, err)
		}
		snapshot.Cases = append(snapshot.Cases, violation)
	}

	return snapshot, nil
}

func (s *caseStore) Exists(ctx context.Context) (bool, error) {
	state, err := s.state(ctx)
	if err != nil {
		return false, err
	}
	return state != nil, nil
}

func (s *caseStore) Stats(ctx context.Context) (StoreStats, error) {
	state, err := s.state(ctx)
	if err != nil {
		return StoreStats{}, err
	}
	if state == nil {
		return StoreStats{}, ErrStoreMissing
	}

	savedAt := state.SavedAt
	stats := StoreStats{
		Location:   s.location,
		SavedAt:    &savedAt,
		CaseCount:  state.CaseCount,
		NextCaseID: state.NextCaseID,
	}
	if s.location != "" {
		if info, err := os.Stat(s.location); err == nil {
			modified := info.ModTime()
			stats.SizeBytes = info.Size()
			stats.LastModified = &modified
		}
	}

	return stats, nil
}

func (s *caseStore) Backup(ctx context.Context, destination string) error {
	if s.db.Dialector.Name() != "sqlite" {
		return ErrBackupUnsupported
	}

	exists, err := s.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return ErrStoreMissing
	}

	if err := os.Remove(destination); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: replace backup: %w", ErrPersistenceFailure, err)
	}
	if err := s.db.WithContext(ctx).Exec("VACUUM INTO ?", destination).Error; err != nil {
		return fmt.Errorf("%w: backup: %w", ErrPersistenceFailure, err)
	}

	return nil
}

func (s *caseStore) Reset(ctx context.Context) error {
	exists, err := s.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return ErrStoreMissing
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		global := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := global.Delete(&models.CaseRecord{}).Error; err != nil {
			return err
		}
		return global.Delete(&models.RegistryState{}).Error
	})
	if err != nil {
		return fmt.Errorf("%w: reset: %w", ErrPersistenceFailure, err)
	}

	return nil
}

func (s *caseStore) state(ctx context.Context) (*models.RegistryState, error) {
	db := s.db.WithContext(ctx)
	if !db.Migrator().HasTable(&models.RegistryState{}) {
		return nil, nil
	}

	var state models.RegistryState
	err := db.Where("id = ?", registryStateID).Take(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read registry state: %w", ErrPersistenceFailure, err)
	}

	return &state, nil
}

func newCaseRecord(v models.Violation, position int) (models.CaseRecord, error) {
	if v.Details == nil {
		return models.CaseRecord{}, errors.New("violation details missing")
	}
	payload, err := json.Marshal(v.Details)
	if err != nil {
		return models.CaseRecord{}, err
	}

	return models.CaseRecord{
		RecordID:            v.RecordID,
		Position:            position,
		EnrollmentNumber:    v.Student.EnrollmentNumber,
		StudentName:         v.Student.FullName,
		StudentEmail:        v.Student.Email,
		Department:          v.Student.Department,
		Kind:                string(v.Details.Kind()),
		MisconductType:      v.MisconductType,
		IncidentDate:        v.IncidentDate,
		ReportingFaculty:    v.ReportingFaculty,
		GravityLevel:        v.GravityLevel,
		CurrentStatus:       string(v.CurrentStatus),
		AppliedSanction:     v.AppliedSanction,
		IncidentDescription: v.IncidentDescription,
		SupportingEvidence:  v.SupportingEvidence,
		ClosureDate:         v.ClosureDate,
		Details:             payload,
	}, nil
}

func violationFromRecord(record models.CaseRecord) (models.Violation, error) {
	status, err := models.ParseCaseStatus(record.CurrentStatus)
	if err != nil {
		return models.Violation{}, err
	}
	details, err := models.DecodeDetails(models.ViolationKind(record.Kind), record.Details)
	if err != nil {
		return models.Violation{}, err
	}

	violation := models.Violation{
		RecordID: record.RecordID,
		Student: models.NewStudent(
			record.EnrollmentNumber,
			record.StudentName,
			record.StudentEmail,
			record.Department,
		),
		MisconductType:      record.MisconductType,
		IncidentDate:        models.DateOf(record.IncidentDate.UTC()),
		ReportingFaculty:    record.ReportingFaculty,
		GravityLevel:        record.GravityLevel,
		CurrentStatus:       status,
		AppliedSanction:     record.AppliedSanction,
		IncidentDescription: record.IncidentDescription,
		SupportingEvidence:  record.SupportingEvidence,
		Details:             details,
	}
	if record.ClosureDate != nil {
		closedAt := models.DateOf(record.ClosureDate.UTC())
		violation.ClosureDate = &closedAt
	}

	return violation, nil
}
