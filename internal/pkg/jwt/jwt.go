package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var (
	ErrExpired = errors.New("token expired")
	ErrInvalid = errors.New("invalid token")
)

// Claims carries only the account id; everything else about the account is looked up.
type Claims struct {
	ID string `json:"id"`
	jwtlib.RegisteredClaims
}

func GenerateToken(accountID string, secret []byte, issuedAt time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		ID: accountID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   accountID,
			ExpiresAt: jwtlib.NewNumericDate(issuedAt.Add(ttl)),
			IssuedAt:  jwtlib.NewNumericDate(issuedAt),
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken verifies signature and expiry against now.
func ParseToken(tokenString string, secret []byte, now time.Time) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenString, &Claims{}, func(token *jwtlib.Token) (interface{}, error) {
		if token.Method.Alg() != jwtlib.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwtlib.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, ErrInvalid
	}
	return claims, nil
}
