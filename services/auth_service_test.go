package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/scoreboard/models"
)

func TestEnsureAdminAndLogin(t *testing.T) {
	repo := &fakeUserRepo{users: map[string]*models.User{}}
	clock := clockwork.NewFakeClockAt(time.Now().Truncate(time.Second))
	svc := NewAuthService(repo, "test-secret", clock, discardLogger)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "admin@club.test", "correct-horse"))
	require.NoError(t, svc.EnsureAdmin(ctx, "admin@club.test", "another-password"))
	assert.Len(t, repo.users, 1)

	assert.ErrorIs(t, svc.EnsureAdmin(ctx, "short@club.test", "123"), ErrPasswordTooShort)
	assert.NoError(t, svc.EnsureAdmin(ctx, "", ""))

	_, _, err := svc.Login(ctx, models.Credentials{Email: "admin@club.test", Password: "another-password"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)

	_, _, err = svc.Login(ctx, models.Credentials{Email: "nobody@club.test", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)

	_, _, err = svc.Login(ctx, models.Credentials{})
	assert.ErrorIs(t, err, ErrValidationFailed)

	user, token, err := svc.Login(ctx, models.Credentials{Email: "admin@club.test", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Empty(t, user.PasswordHash)
	assert.Equal(t, models.RoleAdmin, user.Role)

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, "admin", claims["role"])
	assert.Equal(t, float64(clock.Now().Add(TokenTTL).Unix()), claims["exp"])
}
