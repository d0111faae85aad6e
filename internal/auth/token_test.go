package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

var testSession = Session{
	UserID: "550e8400-e29b-41d4-a716-446655440001",
	Email:  "author@example.com",
	Role:   "authenticated",
}

func TestVerifier_RoundTrip(t *testing.T) {
	v, err := NewVerifier(testSecret)
	require.NoError(t, err)

	token, err := IssueToken(testSecret, testSession, time.Hour)
	require.NoError(t, err)

	s, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, testSession, s)
}

func TestVerifier_WrongSecret(t *testing.T) {
	v, err := NewVerifier(testSecret)
	require.NoError(t, err)

	token, err := IssueToken("another-secret", testSession, time.Hour)
	require.NoError(t, err)

	_, err = v.Verify(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestVerifier_Expired(t *testing.T) {
	v, err := NewVerifier(testSecret)
	require.NoError(t, err)

	token, err := IssueToken(testSecret, testSession, -time.Minute)
	require.NoError(t, err)

	_, err = v.Verify(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestVerifier_SubjectMustBeUUID(t *testing.T) {
	v, err := NewVerifier(testSecret)
	require.NoError(t, err)

	token, err := IssueToken(testSecret, Session{UserID: "42"}, time.Hour)
	require.NoError(t, err)

	_, err = v.Verify(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestVerifier_NormalizesSubject(t *testing.T) {
	v, err := NewVerifier(testSecret)
	require.NoError(t, err)

	for _, sub := range []string{
		"550E8400-E29B-41D4-A716-446655440001",
		"550e8400e29b41d4a716446655440001",
		"{550e8400-e29b-41d4-a716-446655440001}",
	} {
		token, err := IssueToken(testSecret, Session{UserID: sub}, time.Hour)
		require.NoError(t, err)

		s, err := v.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, testSession.UserID, s.UserID, sub)
	}
}

func TestNewVerifier_EmptySecret(t *testing.T) {
	_, err := NewVerifier("")
	assert.ErrorIs(t, err, ErrSecretNotConfigured)
}

func TestContextSource(t *testing.T) {
	var src ContextSource

	_, err := src.CurrentSession(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)

	ctx := WithSession(context.Background(), testSession)
	s, err := src.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, testSession.UserID, s.UserID)
}
