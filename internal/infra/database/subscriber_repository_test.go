package database_test

import (
	"context"
	"testing"

	"school_dashboard/internal/domain/subscriber"
	"school_dashboard/internal/domain/substitution"
	"school_dashboard/internal/infra/database"
	"school_dashboard/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriberRepository_CreateAndGet(t *testing.T) {
	repo := database.NewSQLSubscriberRepository(testutil.NewTestDB(t))
	ctx := context.Background()

	s := &subscriber.Subscriber{ChatID: 42, FirstName: "Ada", Grade: substitution.Grade9, IsActive: true}
	require.NoError(t, repo.Create(ctx, s))
	assert.NotZero(t, s.ID)

	got, err := repo.GetByChatID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, substitution.Grade9, got.Grade)
	assert.True(t, got.IsActive)

	err = repo.Create(ctx, &subscriber.Subscriber{ChatID: 42, Grade: substitution.Grade7, IsActive: true})
	assert.ErrorIs(t, err, database.ErrDuplicateChatID)

	_, err = repo.GetByChatID(ctx, 7)
	assert.ErrorIs(t, err, database.ErrSubscriberNotFound)
}

func TestSubscriberRepository_ListActiveByGrade(t *testing.T) {
	repo := database.NewSQLSubscriberRepository(testutil.NewTestDB(t))
	ctx := context.Background()

	a := &subscriber.Subscriber{ChatID: 1, Grade: substitution.Grade11, IsActive: true}
	b := &subscriber.Subscriber{ChatID: 2, Grade: substitution.Grade11, IsActive: true}
	c := &subscriber.Subscriber{ChatID: 3, Grade: substitution.Grade8, IsActive: true}
	for _, s := range []*subscriber.Subscriber{a, b, c} {
		require.NoError(t, repo.Create(ctx, s))
	}
	b.IsActive = false
	require.NoError(t, repo.Update(ctx, b))

	subs, err := repo.ListActiveByGrade(ctx, substitution.Grade11)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, int64(1), subs[0].ChatID)

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSubscriberRepository_UpdateMissing(t *testing.T) {
	repo := database.NewSQLSubscriberRepository(testutil.NewTestDB(t))
	err := repo.Update(context.Background(), &subscriber.Subscriber{ID: 99, Grade: substitution.Grade7})
	assert.ErrorIs(t, err, database.ErrSubscriberNotFound)
}
