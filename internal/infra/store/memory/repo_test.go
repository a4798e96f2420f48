package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/omariomari2/wvs-102/internal/domain/sessions"
)

func TestLoadUnknownKey(t *testing.T) {
	r := New()

	_, err := r.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaveThenLoad(t *testing.T) {
	r := New()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	sess := &domain.Session{
		Key:          "k1",
		URL:          "https://example.com",
		CreatedAt:    now,
		LastActivity: now,
		ChatHistory:  []domain.Message{{ID: "m1", Role: domain.RoleUser, Content: "hi", Timestamp: now}},
	}
	require.NoError(t, r.Save(ctx, sess))

	got, err := r.Load(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, sess.Key, got.Key)
	assert.Equal(t, sess.URL, got.URL)
	require.Len(t, got.ChatHistory, 1)
	assert.Equal(t, "m1", got.ChatHistory[0].ID)
	assert.True(t, got.CreatedAt.Equal(sess.CreatedAt))
	assert.True(t, got.LastActivity.Equal(sess.LastActivity))
}

func TestLoadReturnsIndependentCopies(t *testing.T) {
	r := New()
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, &domain.Session{Key: "k1", URL: "https://example.com"}))

	a, err := r.Load(ctx, "k1")
	require.NoError(t, err)
	a.URL = "https://mutated.example.com"

	b, err := r.Load(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", b.URL)
}

func TestDeleteIdle(t *testing.T) {
	r := New()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, r.Save(ctx, &domain.Session{Key: "old", LastActivity: now.Add(-48 * time.Hour)}))
	require.NoError(t, r.Save(ctx, &domain.Session{Key: "new", LastActivity: now}))

	n, err := r.DeleteIdle(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = r.Load(ctx, "old")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = r.Load(ctx, "new")
	assert.NoError(t, err)
}
