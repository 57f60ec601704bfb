package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schooldesk/substitute-api/internal/models"
	"github.com/schooldesk/substitute-api/internal/repository"
	"github.com/schooldesk/substitute-api/internal/store"
	appErrors "github.com/schooldesk/substitute-api/pkg/errors"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(t.TempDir(), nil)
	require.NoError(t, err)
	return st
}

func newRosterService(t *testing.T) *RosterService {
	t.Helper()
	return NewRosterService(repository.NewTeacherRepository(newTestStore(t)), nil, nil)
}

func TestRosterServiceCreateAssignsSequentialIDs(t *testing.T) {
	svc := newRosterService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateTeacherRequest{Name: "sana ahmed", PhoneNumber: "0300123", IsSubstitute: true})
	require.NoError(t, err)
	second, err := svc.Create(ctx, CreateTeacherRequest{Name: "Mushtaq Ahmed"})
	require.NoError(t, err)

	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)
	assert.Equal(t, "Sana Ahmed", first.Name)
	assert.Equal(t, "0300123", first.Phone())
	assert.True(t, first.IsSubstitute)
	assert.False(t, second.IsSubstitute)
}

func TestRosterServiceCreateRejectsEmptyName(t *testing.T) {
	svc := newRosterService(t)

	_, err := svc.Create(context.Background(), CreateTeacherRequest{Name: "   "})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestRosterServiceFindOrCreateMatchesRecordedVariation(t *testing.T) {
	repo := repository.NewTeacherRepository(newTestStore(t))
	svc := NewRosterService(repo, nil, nil)
	ctx := context.Background()

	seed := models.Teacher{ID: 1, Name: "Sir Mushtaq Ahmed", Variations: []string{"Mushtaq Ahmad"}}
	require.NoError(t, repo.SaveAll(ctx, []models.Teacher{seed}))

	matched, err := svc.FindOrCreate(ctx, "mushtaq  ahmad", "", false, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, matched.ID)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRosterServiceFindOrCreateDeduplicatesNormalizedNames(t *testing.T) {
	svc := newRosterService(t)
	ctx := context.Background()

	created, err := svc.FindOrCreate(ctx, "Sana Ahmed", "", true, 7)
	require.NoError(t, err)

	matched, err := svc.FindOrCreate(ctx, "  SANA   AHMED ", "0300123", true, 7)
	require.NoError(t, err)
	assert.Equal(t, created.ID, matched.ID)
	assert.Equal(t, "0300123", matched.Phone(), "missing phone should be backfilled")

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRosterServiceFindOrCreateKeepsFirstPhone(t *testing.T) {
	svc := newRosterService(t)
	ctx := context.Background()

	_, err := svc.FindOrCreate(ctx, "Sana Ahmed", "0300111", true, 0)
	require.NoError(t, err)
	matched, err := svc.FindOrCreate(ctx, "Sana Ahmed", "0300222", true, 0)
	require.NoError(t, err)
	assert.Equal(t, "0300111", matched.Phone())
}

func TestRosterServiceGetNotFound(t *testing.T) {
	svc := newRosterService(t)

	_, err := svc.Get(context.Background(), 99)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestRosterServiceSubstitutesFiltersRoster(t *testing.T) {
	svc := newRosterService(t)
	ctx := context.Background()

	_, err := svc.FindOrCreate(ctx, "Regular One", "", false, 0)
	require.NoError(t, err)
	_, err = svc.FindOrCreate(ctx, "Sub One", "", true, 8)
	require.NoError(t, err)

	subs, err := svc.Substitutes(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "Sub One", subs[0].Name)
}

func TestRosterServiceImportSubstitutes(t *testing.T) {
	svc := newRosterService(t)
	ctx := context.Background()

	rows := [][]string{
		{"Name", "Phone Number"},
		{"Sana Ahmed", "0300123"},
		{""},
		{"Hina Khan"},
		{"sana ahmed", "0300999"},
	}
	imported, err := svc.ImportSubstitutes(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, 3, imported)

	subs, err := svc.Substitutes(ctx)
	require.NoError(t, err)
	assert.Len(t, subs, 2)
}
