package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	secret := []byte("session-secret")

	token, err := GenerateSessionToken(secret, time.Hour)
	require.NoError(t, err)

	loginAt, err := ValidateSessionToken(secret, token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), loginAt, time.Minute)
}

func TestSessionTokenRejections(t *testing.T) {
	secret := []byte("session-secret")

	expired, err := GenerateSessionToken(secret, -time.Minute)
	require.NoError(t, err)
	_, err = ValidateSessionToken(secret, expired)
	assert.Error(t, err)

	token, err := GenerateSessionToken(secret, time.Hour)
	require.NoError(t, err)
	_, err = ValidateSessionToken([]byte("other-secret"), token)
	assert.Error(t, err)

	_, err = ValidateSessionToken(secret, "garbage")
	assert.Error(t, err)
}
