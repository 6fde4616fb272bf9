// Package tokens issues and verifies the JWT access/refresh pair.
package tokens

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/obraplan/obraplan/internal/modules/model"
	"github.com/obraplan/obraplan/internal/pkg/apperr"
)

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`

	// RefreshID identifies the refresh token for revocation; RefreshTTL is
	// how long the session store should keep it.
	RefreshID  string        `json:"-"`
	RefreshTTL time.Duration `json:"-"`
}

func (i *Issuer) sign(p model.Principal, secret []byte, ttl time.Duration, jti string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: p.UserID.String(),
		Email:  p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// NewPair issues a short-lived access token and a long-lived refresh token
// for the same principal.
func (i *Issuer) NewPair(p model.Principal) (*Pair, error) {
	access, err := i.sign(p, i.accessSecret, i.accessTTL, uuid.NewString())
	if err != nil {
		return nil, err
	}
	refreshID := uuid.NewString()
	refresh, err := i.sign(p, i.refreshSecret, i.refreshTTL, refreshID)
	if err != nil {
		return nil, err
	}
	return &Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		RefreshID:    refreshID,
		RefreshTTL:   i.refreshTTL,
	}, nil
}

// AccessOnly issues a fresh access token, used by the refresh endpoint.
func (i *Issuer) AccessOnly(p model.Principal) (string, error) {
	return i.sign(p, i.accessSecret, i.accessTTL, uuid.NewString())
}

func (i *Issuer) verify(tokenStr string, secret []byte) (model.Principal, string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return model.Principal{}, "", apperr.Unauthorized("invalid or expired token")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return model.Principal{}, "", apperr.Unauthorized("invalid token claims")
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return model.Principal{}, "", apperr.Unauthorized("invalid token subject")
	}
	return model.Principal{UserID: userID, Email: claims.Email}, claims.ID, nil
}

func (i *Issuer) VerifyAccess(tokenStr string) (model.Principal, error) {
	p, _, err := i.verify(tokenStr, i.accessSecret)
	return p, err
}

// VerifyRefresh returns the principal and the token id used for revocation
// lookups.
func (i *Issuer) VerifyRefresh(tokenStr string) (model.Principal, string, error) {
	return i.verify(tokenStr, i.refreshSecret)
}
