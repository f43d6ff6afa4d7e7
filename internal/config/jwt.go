package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMalformedClaims = errors.New("malformed claims")

type JWT struct {
	secret        []byte
	signingMethod jwt.SigningMethod
	tokenLifetime time.Duration
}

// SessionClaims grant access to one agent session, named by the subject.
type SessionClaims struct {
	jwt.RegisteredClaims
}

func NewJWTWithSecret(secret []byte, lifetime time.Duration) *JWT {
	return &JWT{
		secret:        secret,
		signingMethod: jwt.SigningMethodHS256,
		tokenLifetime: lifetime,
	}
}

func NewJWT() (*JWT, error) {
	secret, err := lookupSecret("JWT_SECRET")
	if err != nil {
		return nil, err
	}
	if len(secret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 bytes long")
	}
	return NewJWTWithSecret([]byte(secret), time.Hour*24), nil
}

func (j *JWT) SignSession(sessionId string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		jwt.RegisteredClaims{
			Subject:   sessionId,
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(j.signingMethod, claims).SignedString(j.secret)
}

func (j *JWT) ParseSession(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&SessionClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return j.secret, nil
		},
		jwt.WithValidMethods([]string{j.signingMethod.Alg()}),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || claims.Subject == "" {
		return nil, ErrMalformedClaims
	}
	return claims, nil
}
