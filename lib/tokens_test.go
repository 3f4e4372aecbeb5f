package lib

import (
	"context"
	"errors"
	"testing"

	"github.com/fiffu/guardwatch/lib/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResolveTokenPrefersFreshTokenForSelf(t *testing.T) {
	db := newTestDB(t)
	me := &Identity{ID: "user-1", Email: "a@x.com"}
	require.NoError(t, db.Create(&models.UserProfile{ID: me.ID, Email: me.Email, DeliveryToken: "stale"}).Error)

	resolver := &tokenResolver{zap.NewNop(), db, &fakeTokenSource{token: "fresh"}}

	token, err := resolver.ResolveToken(context.Background(), me, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)

	// The fresh token was opportunistically persisted.
	profile := models.UserProfile{}
	require.NoError(t, db.Where("id = ?", me.ID).First(&profile).Error)
	assert.Equal(t, "fresh", profile.DeliveryToken)
}

func TestResolveTokenFallsBackToStoredTokenOnRefreshFailure(t *testing.T) {
	db := newTestDB(t)
	me := &Identity{ID: "user-1", Email: "a@x.com"}
	require.NoError(t, db.Create(&models.UserProfile{ID: me.ID, Email: me.Email, DeliveryToken: "stale"}).Error)

	resolver := &tokenResolver{zap.NewNop(), db, &fakeTokenSource{err: errors.New("daemon down")}}

	token, err := resolver.ResolveToken(context.Background(), me, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "stale", token)
}

func TestResolveTokenReadsOtherGuardiansFromStorage(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.UserProfile{Email: "b@x.com", DeliveryToken: "T2"}).Error)

	source := &fakeTokenSource{err: errors.New("should not be consulted")}
	resolver := &tokenResolver{zap.NewNop(), db, source}

	me := &Identity{ID: "user-1", Email: "a@x.com"}
	token, err := resolver.ResolveToken(context.Background(), me, "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, "T2", token)
}

func TestResolveTokenUnknownGuardianIsNotAnError(t *testing.T) {
	resolver := &tokenResolver{zap.NewNop(), newTestDB(t), &fakeTokenSource{}}

	me := &Identity{ID: "user-1", Email: "a@x.com"}
	token, err := resolver.ResolveToken(context.Background(), me, "nobody@x.com")
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestRegisterTokenUnknownProfile(t *testing.T) {
	resolver := &tokenResolver{zap.NewNop(), newTestDB(t), &fakeTokenSource{}}
	err := resolver.RegisterToken(context.Background(), "missing", "tok")
	assert.Error(t, err)
}
