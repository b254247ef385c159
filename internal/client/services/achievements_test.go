package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/lingua/internal/client/models"
	"github.com/dmitrijs2005/lingua/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/lingua/internal/common"
)

var twoAchievements = map[string]any{"data": []models.Achievement{
	{ID: "a1", Title: "First Steps", XPReward: 10},
	{ID: "a2", Title: "Week Streak", XPReward: 50},
}}

func TestGetUserAchievements_UnauthorizedResolvesEmpty(t *testing.T) {
	e, b := setup(t)
	b.set("/achievements", respond(http.StatusUnauthorized, map[string]string{"message": "jwt expired"}))

	svc := NewAchievementService(e.api, e.cache, e.meta, nil, nil)
	got := svc.GetUserAchievements(context.Background())

	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetUserAchievements_CachedWithinTTL(t *testing.T) {
	e, b := setup(t)
	b.set("/achievements", respond(http.StatusOK, twoAchievements))
	svc := NewAchievementService(e.api, e.cache, e.meta, nil, nil)
	ctx := context.Background()

	assert.Len(t, svc.GetUserAchievements(ctx), 2)
	e.clock.Advance(4 * time.Minute)
	assert.Len(t, svc.GetUserAchievements(ctx), 2)
	assert.EqualValues(t, 1, b.count("/achievements"))

	e.clock.Advance(time.Minute)
	assert.Len(t, svc.GetUserAchievements(ctx), 2)
	assert.EqualValues(t, 2, b.count("/achievements"), "expired entry is reloaded")
}

func TestGetUserAchievements_ServerErrorServesStale(t *testing.T) {
	e, b := setup(t)
	b.set("/achievements", respond(http.StatusOK, twoAchievements))
	svc := NewAchievementService(e.api, e.cache, e.meta, nil, nil)
	ctx := context.Background()

	require.Len(t, svc.GetUserAchievements(ctx), 2)

	e.clock.Advance(time.Hour)
	b.set("/achievements", respond(http.StatusServiceUnavailable, nil))

	got := svc.GetUserAchievements(ctx)
	require.Len(t, got, 2)
	assert.Equal(t, "First Steps", got[0].Title)
}

func TestGetUserAchievements_UnauthorizedDropsStale(t *testing.T) {
	e, b := setup(t)
	b.set("/achievements", respond(http.StatusOK, twoAchievements))
	svc := NewAchievementService(e.api, e.cache, e.meta, nil, nil)
	ctx := context.Background()

	require.Len(t, svc.GetUserAchievements(ctx), 2)

	e.clock.Advance(time.Hour)
	b.set("/achievements", respond(http.StatusUnauthorized, nil))

	got := svc.GetUserAchievements(ctx)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetUserAchievements_FailureWithoutCacheIsEmpty(t *testing.T) {
	e, b := setup(t)
	b.set("/achievements", respond(http.StatusInternalServerError, map[string]string{"error": "db down"}))

	got := NewAchievementService(e.api, e.cache, e.meta, nil, nil).GetUserAchievements(context.Background())
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMarkViewed_InvalidatesCache(t *testing.T) {
	e, b := setup(t)
	b.set("/achievements", respond(http.StatusOK, twoAchievements))
	b.set("/achievements/viewed", respond(http.StatusOK, map[string]bool{"success": true}))
	svc := NewAchievementService(e.api, e.cache, e.meta, nil, nil)
	ctx := context.Background()

	svc.GetUserAchievements(ctx)
	require.NoError(t, svc.MarkViewed(ctx, []string{"a1"}))
	svc.GetUserAchievements(ctx)

	assert.EqualValues(t, 2, b.count("/achievements"))
	assert.EqualValues(t, 1, b.count("/achievements/viewed"))
}

func TestMarkViewed_ErrorPropagates(t *testing.T) {
	e, b := setup(t)
	b.set("/achievements/viewed", respond(http.StatusBadRequest, map[string]string{"message": "unknown id"}))

	err := NewAchievementService(e.api, e.cache, e.meta, nil, nil).MarkViewed(context.Background(), []string{"zz"})
	require.Error(t, err)
	assert.Equal(t, "unknown id", err.Error())
}

func TestCheckAndNotify_NotifiesOnce(t *testing.T) {
	e, b := setup(t)
	b.set("/achievements/unviewed", respond(http.StatusOK, twoAchievements))
	rec := &recorder{}
	svc := NewAchievementService(e.api, e.cache, e.meta, rec, nil)
	ctx := context.Background()

	n, err := svc.CheckAndNotify(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = svc.CheckAndNotify(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.Len(t, rec.got, 2)
	assert.Equal(t, "First Steps", rec.got[0].Body)
	assert.Equal(t, "a1", rec.got[0].Data["achievementId"])

	// bookkeeping survives a new service instance on the same store
	n, err = NewAchievementService(e.api, e.cache, e.meta, rec, nil).CheckAndNotify(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCheckAndNotify_ResetsUnreadableBookkeeping(t *testing.T) {
	e, b := setup(t)
	b.set("/achievements/unviewed", respond(http.StatusOK, twoAchievements))
	ctx := context.Background()
	require.NoError(t, e.meta.Set(ctx, common.MetaNotifiedAchievements, []byte("{broken")))

	n, err := NewAchievementService(e.api, e.cache, e.meta, &recorder{}, nil).CheckAndNotify(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ids, found, err := metadata.GetJSON[[]string](ctx, e.meta, common.MetaNotifiedAchievements)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"a1", "a2"}, ids)
}

func TestCheck_InvalidatesOnUnlock(t *testing.T) {
	e, b := setup(t)
	b.set("/achievements", respond(http.StatusOK, twoAchievements))
	b.set("/achievements/check", respond(http.StatusOK, map[string]any{"data": []models.Achievement{{ID: "a3"}}}))
	svc := NewAchievementService(e.api, e.cache, e.meta, nil, nil)
	ctx := context.Background()

	svc.GetUserAchievements(ctx)
	unlocked, err := svc.Check(ctx)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	svc.GetUserAchievements(ctx)

	assert.EqualValues(t, 2, b.count("/achievements"))
}
