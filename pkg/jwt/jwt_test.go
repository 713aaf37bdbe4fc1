package jwt_test

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-api/pkg/jwt"
)

const (
	secret = "test-secret-key-for-unit-tests"
	issuer = "tienda-api-test"
)

var cajero = jwt.Identity{UserID: "u-1", TenantID: "t-1", Role: jwt.RoleCashier}

func newVerifier(t *testing.T) *jwt.Verifier {
	t.Helper()
	v, err := jwt.NewVerifier(secret, issuer)
	require.NoError(t, err)
	return v
}

func TestVerifier_ParseDevuelveIdentidad(t *testing.T) {
	tok, err := jwt.Generate(secret, issuer, cajero, time.Hour)
	require.NoError(t, err)

	id, err := newVerifier(t).Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, cajero, id)
}

func TestVerifier_Rechazos(t *testing.T) {
	v := newVerifier(t)
	sign := func(t *testing.T, s, iss string, id jwt.Identity, ttl time.Duration) string {
		t.Helper()
		tok, err := jwt.Generate(s, iss, id, ttl)
		require.NoError(t, err)
		return tok
	}

	cases := map[string]string{
		"expirado":     sign(t, secret, issuer, cajero, -time.Minute),
		"otro secreto": sign(t, "otro-secret-completamente-distinto", issuer, cajero, time.Hour),
		"otro emisor":  sign(t, secret, "otro-servicio", cajero, time.Hour),
		"malformado":   "token.invalido.aqui",
		"sin tenant":   sign(t, secret, issuer, jwt.Identity{UserID: "u-1", Role: jwt.RoleAdmin}, time.Hour),
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Parse(tok)
			assert.Error(t, err)
		})
	}

	_, err := v.Parse(cases["sin tenant"])
	assert.ErrorIs(t, err, jwt.ErrMissingTenant)
}

func TestVerifier_RechazaAlgoritmoDistinto(t *testing.T) {
	claims := jwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{Issuer: issuer, ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour))},
		TenantID:         "t-1",
	}
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS512, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = newVerifier(t).Parse(tok)
	assert.Error(t, err)
}

func TestVerifier_SinExpiracionSeRechaza(t *testing.T) {
	claims := jwt.Claims{RegisteredClaims: gojwt.RegisteredClaims{Issuer: issuer}, TenantID: "t-1"}
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = newVerifier(t).Parse(tok)
	assert.Error(t, err)
}

func TestNewVerifier_SecretVacio(t *testing.T) {
	_, err := jwt.NewVerifier("", issuer)
	assert.ErrorIs(t, err, jwt.ErrEmptySecret)
}

func TestVerifier_SinEmisorConfiguradoAceptaCualquiera(t *testing.T) {
	v, err := jwt.NewVerifier(secret, "")
	require.NoError(t, err)
	tok, err := jwt.Generate(secret, "otro-servicio", cajero, time.Hour)
	require.NoError(t, err)

	id, err := v.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "t-1", id.TenantID)
}
