// Package auth issues and verifies HMAC-signed JWTs. It never touches
// storage: a token that decodes is only cryptographically valid, callers
// decide what it grants.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carried by every token: sub, role, type, exp, iat and a random jti.
type Claims struct {
	Role string `json:"role,omitempty"`
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// UserID parses the numeric subject.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject", common.ErrInvalidToken)
	}
	return id, nil
}

// Codec signs and verifies tokens with one secret and one algorithm.
type Codec struct {
	secret []byte
	method jwt.SigningMethod
	now    func() time.Time
}

// NewCodec accepts HS256, HS384 and HS512.
func NewCodec(secret []byte, algorithm string) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("empty signing secret")
	}

	var method jwt.SigningMethod
	switch algorithm {
	case jwt.SigningMethodHS256.Alg():
		method = jwt.SigningMethodHS256
	case jwt.SigningMethodHS384.Alg():
		method = jwt.SigningMethodHS384
	case jwt.SigningMethodHS512.Alg():
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}

	return &Codec{secret: secret, method: method, now: time.Now}, nil
}

// Issue signs a token for userID that expires ttl from now.
func (c *Codec) Issue(userID int64, role, tokenType string, ttl time.Duration) (string, error) {
	now := c.now()

	token := jwt.NewWithClaims(c.method, Claims{
		Role: role,
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	})

	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Decode verifies signature, algorithm and expiry. Every failure, including
// a missing sub, type or exp claim, is reported as common.ErrInvalidToken.
func (c *Codec) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	if claims.Subject == "" || claims.Type == "" {
		return nil, fmt.Errorf("%w: missing claims", common.ErrInvalidToken)
	}

	return claims, nil
}
