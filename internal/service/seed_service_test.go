package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/aivt-api/internal/models"
)

func TestSeedServiceDisabled(t *testing.T) {
	registry := NewCaseRegistry(&fakeCaseStore{}, nil, testLogger())
	svc := NewSeedService(registry, false, testLogger())

	_, err := svc.SeedSampleCases(context.Background())
	require.ErrorIs(t, err, ErrSeedDisabled)
	require.Zero(t, registry.TotalCases())
}

func TestSeedServiceInsertsSamples(t *testing.T) {
	store := &fakeCaseStore{}
	registry := NewCaseRegistry(store, nil, testLogger())
	svc := NewSeedService(registry, true, testLogger())

	inserted, err := svc.SeedSampleCases(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, inserted)
	require.Equal(t, []int{1000, 1001, 1002}, caseIDs(registry.ListCases()))

	first, ok := registry.SearchCase(1000)
	require.True(t, ok)
	require.Equal(t, models.ViolationKindPlagiarism, first.Kind())
	require.Equal(t, "Grade Reduction", first.AppliedSanction)

	second, _ := registry.SearchCase(1001)
	require.Equal(t, models.CaseStatusResolved, second.CurrentStatus)
	require.Equal(t, "Mary Davis", second.FullName())

	third, _ := registry.SearchCase(1002)
	require.Equal(t, models.ViolationKindCollusion, third.Kind())
	require.Len(t, store.saved.Cases, 3)
}

func TestSeedServiceRefusesSecondSeed(t *testing.T) {
	store := &fakeCaseStore{}
	registry := NewCaseRegistry(store, nil, testLogger())
	svc := NewSeedService(registry, true, testLogger())

	_, err := svc.SeedSampleCases(context.Background())
	require.NoError(t, err)

	inserted, err := svc.SeedSampleCases(context.Background())
	require.ErrorIs(t, err, ErrAlreadySeeded)
	require.Zero(t, inserted)
	require.Equal(t, 3, registry.TotalCases())
	require.Len(t, registry.SearchByStudent("20230001"), 1)
	require.Equal(t, 3, store.saveCalls)
}

func TestSeedServiceRefusesRegistryWithHistory(t *testing.T) {
	registry := NewCaseRegistry(&fakeCaseStore{}, &models.RegistrySnapshot{NextCaseID: 1005}, testLogger())
	svc := NewSeedService(registry, true, testLogger())

	_, err := svc.SeedSampleCases(context.Background())
	require.ErrorIs(t, err, ErrAlreadySeeded)
	require.Zero(t, registry.TotalCases())
}
