package jwtinfra

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, expiry time.Duration) *Provider {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return NewProviderFromKeys(key, &key.PublicKey, expiry)
}

func TestSignVerify(t *testing.T) {
	p := newTestProvider(t, time.Hour)
	tok, exp, err := p.Sign("admin@iitp.ac.in", "admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := p.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "admin@iitp.ac.in", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestVerify_Expired(t *testing.T) {
	p := newTestProvider(t, -time.Minute)
	tok, _, err := p.Sign("admin@iitp.ac.in", "admin")
	require.NoError(t, err)

	_, err = p.Verify(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerify_OtherKeyRejected(t *testing.T) {
	signer := newTestProvider(t, time.Hour)
	verifier := newTestProvider(t, time.Hour)
	tok, _, err := signer.Sign("admin@iitp.ac.in", "admin")
	require.NoError(t, err)

	_, err = verifier.Verify(tok)
	assert.Error(t, err)
}

func TestVerify_RejectsHMAC(t *testing.T) {
	p := newTestProvider(t, time.Hour)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Role: "admin"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = p.Verify(tok)
	assert.Error(t, err)
}
