package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hmzi67/cervical-posture-detection/internal/domain"
	"github.com/hmzi67/cervical-posture-detection/internal/session"
)

func TestInMemoryRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	sess := &domain.Session{TenantID: "clinic-a", Tracker: session.NewTracker()}
	require.NoError(t, repo.Create(ctx, sess))
	require.NotEmpty(t, sess.ID)
	require.Error(t, repo.Create(ctx, sess))

	got, err := repo.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.Same(t, sess, got)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.NoError(t, repo.Delete(ctx, sess.ID))
	got, err = repo.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestInMemoryRepositoryRejectsNil(t *testing.T) {
	require.Error(t, NewInMemoryRepository().Create(context.Background(), nil))
}
