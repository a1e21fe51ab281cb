package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIssuer = "https://taskhub.example.com/issuer"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssuer_ClaimSet(t *testing.T) {
	key := rsaKey(t)
	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	ti, err := NewTokenIssuer(key, testIssuer, time.Hour, fixedClock(issuedAt))
	require.NoError(t, err)

	token, err := ti.Issue("admin", []string{"admin", "user"})
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	var claims map[string]any
	require.NoError(t, json.Unmarshal(payload, &claims))

	keys := make([]string, 0, len(claims))
	for k := range claims {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"iss", "sub", "groups", "iat", "exp"}, keys)
	assert.Equal(t, "admin", claims["sub"])
	assert.Equal(t, testIssuer, claims["iss"])
	assert.Equal(t, []any{"admin", "user"}, claims["groups"])
	assert.EqualValues(t, issuedAt.Unix(), claims["iat"])
	assert.EqualValues(t, issuedAt.Add(time.Hour).Unix(), claims["exp"])
}

func TestIssuer_NilKeyFailsAtConstruction(t *testing.T) {
	_, err := NewTokenIssuer(nil, testIssuer, time.Hour, nil)
	assert.Error(t, err)
}

func TestValidator_TTLBoundary(t *testing.T) {
	key := rsaKey(t)
	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	ti, err := NewTokenIssuer(key, testIssuer, time.Hour, fixedClock(issuedAt))
	require.NoError(t, err)
	token, err := ti.Issue("alice", []string{"user"})
	require.NoError(t, err)

	// 59 минут — еще валиден
	v := NewValidator(&key.PublicKey, testIssuer, fixedClock(issuedAt.Add(59*time.Minute)))
	claims, err := v.VerifyToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, []string{"user"}, claims.Groups)

	// 61 минута — просрочен
	v = NewValidator(&key.PublicKey, testIssuer, fixedClock(issuedAt.Add(61*time.Minute)))
	_, err = v.VerifyToken(token)
	assert.Error(t, err)
}

func TestValidator_Rejects(t *testing.T) {
	key := rsaKey(t)
	ti, err := NewTokenIssuer(key, testIssuer, time.Hour, nil)
	require.NoError(t, err)
	token, err := ti.Issue("alice", []string{"user"})
	require.NoError(t, err)

	t.Run("wrong issuer", func(t *testing.T) {
		v := NewValidator(&key.PublicKey, "https://other", nil)
		_, err := v.VerifyToken(token)
		assert.Error(t, err)
	})

	t.Run("foreign key", func(t *testing.T) {
		other, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		v := NewValidator(&other.PublicKey, testIssuer, nil)
		_, err = v.VerifyToken(token)
		assert.Error(t, err)
	})

	t.Run("tampered payload", func(t *testing.T) {
		parts := strings.Split(token, ".")
		forged, _ := json.Marshal(map[string]any{
			"iss": testIssuer, "sub": "alice", "groups": []string{"admin"},
			"iat": time.Now().Unix(), "exp": time.Now().Add(time.Hour).Unix(),
		})
		parts[1] = base64.RawURLEncoding.EncodeToString(forged)
		v := NewValidator(&key.PublicKey, testIssuer, nil)
		_, err := v.VerifyToken(strings.Join(parts, "."))
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		v := NewValidator(&key.PublicKey, testIssuer, nil)
		_, err := v.VerifyToken("Bearer not.a.token")
		assert.Error(t, err)
	})
}

func TestParseRSAKeys(t *testing.T) {
	key := rsaKey(t)

	priv, err := ParseRSAPrivateKey(privatePEM(key))
	require.NoError(t, err)
	assert.True(t, key.Equal(priv))

	pub, err := ParseRSAPublicKey(publicPEM(t, key))
	require.NoError(t, err)
	assert.True(t, key.PublicKey.Equal(pub))

	_, err = ParseRSAPrivateKey(nil)
	assert.Error(t, err)
	_, err = ParseRSAPublicKey([]byte("garbage"))
	assert.Error(t, err)
}
