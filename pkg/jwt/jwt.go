package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles reconocidos por el middleware RBAC.
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier" // ventas
	RoleStocker = "stocker" // movimientos y ajustes de stock
)

var (
	ErrEmptySecret   = errors.New("jwt: secret vacío")
	ErrMissingTenant = errors.New("jwt: token sin tenant_id")
)

// Claims los emite el servicio de usuarios; aquí solo se verifican.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
}

// Identity es lo que el resto de la API necesita saber del portador del token.
type Identity struct {
	UserID   string
	TenantID string
	Role     string
}

// Verifier valida tokens HS256 firmados con el secreto compartido. Si issuer no está vacío,
// el claim iss debe coincidir.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewVerifier(secret, issuer string) (*Verifier, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &Verifier{secret: []byte(secret), parser: jwt.NewParser(opts...)}, nil
}

// Parse devuelve la identidad del token; falla si es inválido, expiró, viene de otro emisor o no
// trae tenant.
func (v *Verifier) Parse(tokenString string) (Identity, error) {
	var claims Claims
	_, err := v.parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("jwt: %w", err)
	}
	if claims.TenantID == "" {
		return Identity{}, ErrMissingTenant
	}
	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	return Identity{UserID: userID, TenantID: claims.TenantID, Role: claims.Role}, nil
}

// Generate firma un token con la identidad dada. Lo usan las pruebas y las herramientas de soporte.
func Generate(secret, issuer string, id Identity, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:   id.UserID,
		TenantID: id.TenantID,
		Role:     id.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
