package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestDemoDirectory(t *testing.T) {
	d, err := DemoDirectory(bcrypt.MinCost)
	require.NoError(t, err)
	assert.Len(t, d.Users(), 3)

	u, err := d.Authenticate("trader1", "trader123")
	require.NoError(t, err)
	assert.Equal(t, User{ID: "user_trader1", Username: "trader1", Name: "Trader One"}, u)

	_, err = d.Authenticate("trader1", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = d.Authenticate("nobody", "x")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens("s3cret", 0)
	assert.Equal(t, SessionTTL, tokens.TTL())

	want := User{ID: "user_demo", Username: "demo", Name: "Demo User"}
	tok, err := tokens.Issue(want)
	require.NoError(t, err)

	got, err := tokens.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestTokensReject(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tokens := NewTokens("s3cret", time.Hour)
	tokens.now = func() time.Time { return start }

	tok, err := tokens.Issue(User{ID: "user_admin", Username: "admin"})
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		late := NewTokens("s3cret", time.Hour)
		late.now = func() time.Time { return start.Add(2 * time.Hour) }
		_, err := late.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokens("different", time.Hour)
		other.now = tokens.now
		_, err := other.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.Verify(`{"userId":"user_admin"}`)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestUserContext(t *testing.T) {
	_, ok := UserFrom(context.Background())
	assert.False(t, ok)

	ctx := WithUser(context.Background(), User{ID: "user_demo"})
	u, ok := UserFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, "user_demo", u.ID)
}
