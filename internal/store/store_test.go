package store

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/timjtrainor/Apply4Jobs/internal/errors"
	"github.com/timjtrainor/Apply4Jobs/internal/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "jobs.db"), time.Second,
		apperrors.NewLoggerTo(io.Discard, 0))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUpsertIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.Upsert(ctx, &Application{CompanyName: "Acme", JobTitle: "Engineer", JobDescription: "Build things", RecentNews: "IPO"})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusJDReview, first.Status)
	assert.NotEmpty(t, first.DateCreated)

	second, err := s.Upsert(ctx, &Application{CompanyName: "Acme", JobTitle: "Engineer", JobDescription: "Build more things"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Build more things", second.JobDescription)
	assert.Equal(t, "IPO", second.RecentNews, "empty incoming value keeps the stored one")

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpsertKeepsStatus(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	app, err := s.Upsert(ctx, &Application{CompanyName: "Acme", JobTitle: "Engineer"})
	require.NoError(t, err)
	require.NoError(t, s.UpdateFields(ctx, app.ID, workflow.StatusJDReview,
		map[string]any{workflow.ColStatus: workflow.StatusResume}))

	again, err := s.Upsert(ctx, &Application{CompanyName: "Acme", JobTitle: "Engineer", Status: workflow.StatusJDReview})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusResume, again.Status)
}

func TestUpsertRequiresKey(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Upsert(context.Background(), &Application{CompanyName: "Acme"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidRequest))
}

func TestUpdateFieldsGuardsStatus(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	app, err := s.Upsert(ctx, &Application{CompanyName: "Acme", JobTitle: "Engineer"})
	require.NoError(t, err)

	score := 81.5
	require.NoError(t, s.UpdateFields(ctx, app.ID, workflow.StatusJDReview, map[string]any{
		workflow.ColKeywords:         "go, sql",
		workflow.ColOriginalFitScore: &score,
	}))

	err = s.UpdateFields(ctx, app.ID, workflow.StatusResume, map[string]any{workflow.ColResume: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStatusMismatch))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeStatusMismatch))

	err = s.UpdateFields(ctx, 999, workflow.StatusJDReview, map[string]any{workflow.ColKeywords: "x"})
	assert.True(t, errors.Is(err, ErrNotFound))

	got, err := s.Get(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "go, sql", got.Keywords)
	require.NotNil(t, got.OriginalFitScore)
	assert.InDelta(t, 81.5, *got.OriginalFitScore, 0.001)
	assert.Nil(t, got.FinalFitScore)
	assert.Empty(t, got.Resume)
}

func TestUpdateStageRejectsForeignColumns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	app, err := s.Upsert(ctx, &Application{CompanyName: "Acme", JobTitle: "Engineer"})
	require.NoError(t, err)

	err = s.UpdateStage(ctx, workflow.StageReview, app.ID, app.Status, map[string]any{workflow.ColEmail: "hi"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeFieldNotOwned))

	err = s.UpdateStage(ctx, workflow.StageReview, app.ID, app.Status, map[string]any{
		workflow.ColStatus:       workflow.StatusBadFit,
		workflow.ColDateJDReview: "2024-03-01",
	})
	require.NoError(t, err)

	got, err := s.Get(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusBadFit, got.Status)
	require.NotNil(t, got.DateJDReview)
	assert.Equal(t, "2024-03-01", *got.DateJDReview)
}

func TestQueryByStatus(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, company := range []string{"Beta", "Acme", "Gamma"} {
		_, err := s.Upsert(ctx, &Application{CompanyName: company, JobTitle: "Engineer"})
		require.NoError(t, err)
	}

	apps, err := s.QueryByStatus(ctx, workflow.StatusJDReview, Filter{})
	require.NoError(t, err)
	require.Len(t, apps, 3)
	assert.Equal(t, "Beta", apps[0].CompanyName, "id order")

	apps, err = s.QueryByStatus(ctx, workflow.StatusJDReview, Filter{Company: "Acme"})
	require.NoError(t, err)
	require.Len(t, apps, 1)

	apps, err = s.QueryByStatus(ctx, workflow.StatusJDReview, Filter{RequireApplied: true})
	require.NoError(t, err)
	assert.Empty(t, apps)

	require.NoError(t, s.MarkApplied(ctx, firstID(t, s), time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)))
	apps, err = s.QueryByStatus(ctx, workflow.StatusJDReview, Filter{RequireApplied: true})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "2024-03-01", *apps[0].DateApplied)

	assert.True(t, errors.Is(s.MarkApplied(ctx, 999, time.Now()), ErrNotFound))
}

func firstID(t *testing.T, s *Store) int64 {
	t.Helper()
	apps, err := s.List(context.Background(), workflow.StatusJDReview)
	require.NoError(t, err)
	require.NotEmpty(t, apps)
	return apps[0].ID
}

func TestConfigTable(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, ok, err := s.ConfigGet(ctx, KeyGoogleToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.ConfigSet(ctx, KeyGoogleToken, "first"))
	require.NoError(t, s.ConfigSet(ctx, KeyGoogleToken, "second"))
	require.NoError(t, s.ConfigSet(ctx, KeyFullResumeFileName, "jane"))

	value, ok, err := s.ConfigGet(ctx, KeyGoogleToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", value)

	keys, err := s.ConfigKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyFullResumeFileName, KeyGoogleToken}, keys)
}

func TestOpenIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "jobs.db")
	logger := apperrors.NewLoggerTo(io.Discard, 0)

	s, err := Open(context.Background(), path, time.Second, logger)
	require.NoError(t, err)
	_, err = s.Upsert(context.Background(), &Application{CompanyName: "Acme", JobTitle: "Engineer"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(context.Background(), path, time.Second, logger)
	require.NoError(t, err)
	defer s.Close()
	apps, err := s.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, apps, 1)
}
