package auth

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/xela07ax/taskhub/internal/domain"
)

// TokenIssuer подписывает токены закрытым ключом (RS256).
// Ключ, issuer и TTL фиксируются при создании и дальше не меняются.
type TokenIssuer struct {
	privateKey *rsa.PrivateKey
	issuer     string
	ttl        time.Duration
	now        func() time.Time
}

// NewTokenIssuer делает пробную подпись: битый ключ должен уронить старт, а не запрос.
func NewTokenIssuer(privateKey *rsa.PrivateKey, issuer string, ttl time.Duration, now func() time.Time) (*TokenIssuer, error) {
	if privateKey == nil {
		return nil, fmt.Errorf("token issuer: private key is nil")
	}
	if now == nil {
		now = time.Now
	}
	ti := &TokenIssuer{privateKey: privateKey, issuer: issuer, ttl: ttl, now: now}
	if _, err := ti.Issue("probe", nil); err != nil {
		return nil, fmt.Errorf("token issuer: probe signature failed: %w", err)
	}
	return ti, nil
}

// Issue формирует claims {iss, sub, groups, iat, exp} и подписывает их.
func (ti *TokenIssuer) Issue(subject string, groups []string) (string, error) {
	issuedAt := ti.now()
	if groups == nil {
		groups = []string{}
	}

	claims := &domain.Claims{
		Groups: groups,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ti.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ti.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(ti.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
