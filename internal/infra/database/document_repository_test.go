package database_test

import (
	"context"
	"testing"

	"school_dashboard/internal/domain/substitution"
	"school_dashboard/internal/infra/database"
	"school_dashboard/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDocument(planUUID uuid.UUID, url, html string) *substitution.PlanDocument {
	page, count := 1, 2
	return &substitution.PlanDocument{
		PlanUUID:    planUUID,
		GroupName:   "Schüler heute",
		PlanDate:    "20.10.2025 10:00",
		Title:       "subst_001",
		DetailURL:   url,
		RawHTML:     html,
		ContentHash: substitution.ContentHash(html),
		PageNumber:  &page,
		PageCount:   &count,
	}
}

func TestDocumentRepository_SaveDetectsChanges(t *testing.T) {
	repo := database.NewSQLDocumentRepository(testutil.NewTestDB(t))
	ctx := context.Background()
	planUUID := uuid.New()

	changed, err := repo.Save(ctx, newDocument(planUUID, "https://example.org/subst_001.htm", "<html>a</html>"))
	require.NoError(t, err)
	assert.True(t, changed, "first save inserts")

	changed, err = repo.Save(ctx, newDocument(planUUID, "https://example.org/subst_001.htm", "<html>a</html>"))
	require.NoError(t, err)
	assert.False(t, changed, "identical content is not rewritten")

	changed, err = repo.Save(ctx, newDocument(planUUID, "https://example.org/subst_001.htm", "<html>b</html>"))
	require.NoError(t, err)
	assert.True(t, changed)

	got, err := repo.GetByDetailURL(ctx, "https://example.org/subst_001.htm")
	require.NoError(t, err)
	assert.Equal(t, "<html>b</html>", got.RawHTML)
	assert.Equal(t, planUUID, got.PlanUUID)
	require.NotNil(t, got.PageNumber)
	assert.Equal(t, 1, *got.PageNumber)
	require.NotNil(t, got.PageCount)
	assert.Equal(t, 2, *got.PageCount)
}

func TestDocumentRepository_MovesDocumentToNewPlan(t *testing.T) {
	repo := database.NewSQLDocumentRepository(testutil.NewTestDB(t))
	ctx := context.Background()
	oldPlan, newPlan := uuid.New(), uuid.New()

	_, err := repo.Save(ctx, newDocument(oldPlan, "https://example.org/subst_001.htm", "old"))
	require.NoError(t, err)
	changed, err := repo.Save(ctx, newDocument(newPlan, "https://example.org/subst_001.htm", "new"))
	require.NoError(t, err)
	assert.True(t, changed)

	docs, err := repo.ListByPlan(ctx, newPlan)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "new", docs[0].RawHTML)

	docs, err = repo.ListByPlan(ctx, oldPlan)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDocumentRepository_NotFound(t *testing.T) {
	repo := database.NewSQLDocumentRepository(testutil.NewTestDB(t))
	_, err := repo.GetByDetailURL(context.Background(), "missing")
	assert.ErrorIs(t, err, database.ErrDocumentNotFound)
}
