package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.NoError(t, h.Compare(hash, "correct horse"))
	assert.ErrorIs(t, h.Compare(hash, "wrong horse"), ErrPasswordMismatch)
}

func TestNewBcryptHasher_CostOutOfRange(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).Cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).Cost)
	assert.Equal(t, 11, NewBcryptHasher(11).Cost)
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer("test-secret-test-secret-test-secret", "mentorhub", time.Hour).
		WithClock(func() time.Time { return now })

	raw, exp, err := issuer.Issue(&model.User{ID: "user-1", Role: model.RoleTrainee})
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), exp)

	claims, err := issuer.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, model.RoleTrainee, claims.Role)
	assert.Empty(t, claims.Scope)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	issuer := NewTokenIssuer("test-secret-test-secret-test-secret", "mentorhub", time.Hour).WithClock(clock)

	raw, _, err := issuer.IssueScoped("user-1", model.RoleSupervisor, ScopeCredential, time.Minute)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := NewTokenIssuer("test-secret-test-secret-test-secret", "mentorhub", time.Hour).
			WithClock(func() time.Time { return now.Add(2 * time.Minute) })
		_, err := later.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenIssuer("another-secret-another-secret-xx", "mentorhub", time.Hour).WithClock(clock)
		_, err := other.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewTokenIssuer("test-secret-test-secret-test-secret", "someone-else", time.Hour).WithClock(clock)
		_, err := other.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.Parse("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("scope survives", func(t *testing.T) {
		claims, err := issuer.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, ScopeCredential, claims.Scope)
	})
}

func TestNewResetToken(t *testing.T) {
	token, hash, err := NewResetToken()
	require.NoError(t, err)

	assert.NotEmpty(t, token)
	assert.False(t, strings.ContainsAny(token, "+/="))
	assert.Len(t, hash, 64)
	assert.Equal(t, hash, HashResetToken(token))

	other, _, err := NewResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}
