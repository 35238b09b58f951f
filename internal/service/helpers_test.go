package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/aivt-api/internal/models"
	"github.com/noah-isme/aivt-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type fakeCaseStore struct {
	saved     *models.RegistrySnapshot
	saveCalls int
	saveErr   error
	loadErr   error
}

func (f *fakeCaseStore) Save(_ context.Context, snapshot models.RegistrySnapshot) error {
	f.saveCalls++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = &snapshot
	return nil
}

func (f *fakeCaseStore) Load(context.Context) (*models.RegistrySnapshot, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.saved, nil
}

func (f *fakeCaseStore) Exists(context.Context) (bool, error) {
	return f.saved != nil, nil
}

func (f *fakeCaseStore) Stats(context.Context) (repository.StoreStats, error) {
	if f.saved == nil {
		return repository.StoreStats{}, repository.ErrStoreMissing
	}
	return repository.StoreStats{CaseCount: len(f.saved.Cases), NextCaseID: f.saved.NextCaseID}, nil
}

func (f *fakeCaseStore) Backup(context.Context, string) error {
	return errors.New("not supported")
}

func (f *fakeCaseStore) Reset(context.Context) error {
	f.saved = nil
	return nil
}

func newTestViolation(enrollment, name string, details models.ViolationDetails, gravity int) *models.Violation {
	student := models.NewStudent(enrollment, name, "student@university.edu", "Computer Science")
	v, err := models.NewViolation(models.ViolationParams{
		Student:             &student,
		IncidentDate:        time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		ReportingFaculty:    "Dr. Johnson",
		GravityLevel:        gravity,
		IncidentDescription: "Reported during the spring term",
		SupportingEvidence:  "Faculty statement",
		Details:             details,
	})
	if err != nil {
		panic(err)
	}
	return v
}
