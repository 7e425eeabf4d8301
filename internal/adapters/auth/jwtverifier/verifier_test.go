package jwtverifier

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify_TokenValido(t *testing.T) {
	v := New("secreto-test")
	tok, err := v.Sign("U1", "u1@example.com", jwt.NewNumericDate(time.Now().Add(time.Hour)))
	require.NoError(t, err)

	claims, err := v.Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "U1", claims.UserID)
	assert.Equal(t, "u1@example.com", claims.Email)
}

func TestVerify_Rechazos(t *testing.T) {
	v := New("secreto-test")

	t.Run("token vacío", func(t *testing.T) {
		_, err := v.Verify(context.Background(), "   ")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token basura", func(t *testing.T) {
		_, err := v.Verify(context.Background(), "no.es.jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("secreto distinto", func(t *testing.T) {
		otro := New("otro-secreto")
		tok, err := otro.Sign("U1", "", jwt.NewNumericDate(time.Now().Add(time.Hour)))
		require.NoError(t, err)

		_, err = v.Verify(context.Background(), tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expirado", func(t *testing.T) {
		tok, err := v.Sign("U1", "", jwt.NewNumericDate(time.Now().Add(-time.Minute)))
		require.NoError(t, err)

		_, err = v.Verify(context.Background(), tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("sin subject", func(t *testing.T) {
		tok, err := v.Sign("", "", jwt.NewNumericDate(time.Now().Add(time.Hour)))
		require.NoError(t, err)

		_, err = v.Verify(context.Background(), tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("alg none", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "U1"},
		})
		tok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = v.Verify(context.Background(), tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
