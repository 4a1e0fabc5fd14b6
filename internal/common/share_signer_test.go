package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSigner() *ShareSignerService {
	return NewShareSignerService([]byte("test-secret"), NewCacheService(60, 120))
}

func TestShareSignerRoundTrip(t *testing.T) {
	signer := newTestSigner()

	token, err := signer.Sign("r-42", 15*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	tok, err := signer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "r-42", tok.RecordID)
	assert.NotEmpty(t, tok.TokenID)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), tok.ExpiresAt, 5*time.Second)
}

func TestShareSignerSingleUse(t *testing.T) {
	signer := newTestSigner()

	token, err := signer.Sign("r-42", 15*time.Minute)
	require.NoError(t, err)

	tok, err := signer.Validate(token)
	require.NoError(t, err)

	require.NoError(t, signer.Consume(tok))

	_, err = signer.Validate(token)
	require.ErrorIs(t, err, ErrTokenUsed)
	require.ErrorIs(t, signer.Consume(tok), ErrTokenUsed)
}

func TestShareSignerConsumeExactlyOnceUnderContention(t *testing.T) {
	signer := newTestSigner()

	token, err := signer.Sign("r-42", 15*time.Minute)
	require.NoError(t, err)
	tok, err := signer.Validate(token)
	require.NoError(t, err)

	const n = 16
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			results <- signer.Consume(tok)
		}()
	}

	var succeeded int
	for i := 0; i < n; i++ {
		if err := <-results; err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, ErrTokenUsed)
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestShareSignerReleaseRestoresToken(t *testing.T) {
	signer := newTestSigner()

	token, err := signer.Sign("r-42", 15*time.Minute)
	require.NoError(t, err)
	tok, err := signer.Validate(token)
	require.NoError(t, err)

	require.NoError(t, signer.Consume(tok))
	signer.Release(tok)
	require.NoError(t, signer.Consume(tok))
}

func TestShareSignerExpired(t *testing.T) {
	signer := newTestSigner()

	token, err := signer.Sign("r-42", -time.Minute)
	require.NoError(t, err)

	_, err = signer.Validate(token)
	require.Error(t, err)
}

func TestShareSignerWrongSecret(t *testing.T) {
	signer := newTestSigner()
	other := NewShareSignerService([]byte("other-secret"), NewCacheService(60, 120))

	token, err := signer.Sign("r-42", 15*time.Minute)
	require.NoError(t, err)

	_, err = other.Validate(token)
	require.Error(t, err)
}

func TestShareSignerGarbageToken(t *testing.T) {
	_, err := newTestSigner().Validate("not-a-jwt")
	require.Error(t, err)
}
