package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	now := time.Now()
	tok, err := GenerateToken("acc-1", []byte("secret"), now, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(tok, []byte("secret"), now.Add(30*time.Minute))
	require.NoError(t, err)
	require.Equal(t, "acc-1", claims.ID)
	require.Equal(t, "acc-1", claims.Subject)
}

func TestParseToken_Expired(t *testing.T) {
	now := time.Now()
	tok, err := GenerateToken("acc-1", []byte("secret"), now, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(tok, []byte("secret"), now.Add(2*time.Hour))
	require.ErrorIs(t, err, ErrExpired)
}

func TestParseToken_WrongSecret(t *testing.T) {
	now := time.Now()
	tok, err := GenerateToken("acc-1", []byte("right"), now, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(tok, []byte("wrong"), now)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestParseToken_Tampered(t *testing.T) {
	now := time.Now()
	tok, err := GenerateToken("acc-1", []byte("secret"), now, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(tok+"x", []byte("secret"), now)
	require.ErrorIs(t, err, ErrInvalid)
	_, err = ParseToken("not.a.jwt", []byte("secret"), now)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	now := time.Now()
	claims := Claims{ID: "acc-1", RegisteredClaims: jwtlib.RegisteredClaims{
		ExpiresAt: jwtlib.NewNumericDate(now.Add(time.Hour)),
	}}
	tok, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseToken(tok, []byte("secret"), now)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestParseToken_MissingID(t *testing.T) {
	now := time.Now()
	tok, err := GenerateToken("", []byte("secret"), now, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(tok, []byte("secret"), now)
	require.ErrorIs(t, err, ErrInvalid)
}
