package service

import (
	"errors"
	"time"

	apperrors "pvb-admin/pkg/errors"

	jwt "github.com/golang-jwt/jwt/v5"
)

// IdentityClaims is what the upstream identity provider asserts about the caller.
type IdentityClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type JWTService interface {
	GenerateToken(email, name, role string) (string, error)
	ValidateToken(tokenString string) (*IdentityClaims, error)
}

type jwtService struct {
	secretKey string
	tokenTTL  time.Duration
}

func NewJWTService(secretKey string, tokenTTL time.Duration) JWTService {
	return &jwtService{secretKey: secretKey, tokenTTL: tokenTTL}
}

func (s *jwtService) GenerateToken(email, name, role string) (string, error) {
	now := time.Now()
	claims := &IdentityClaims{
		Email: email,
		Name:  name,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secretKey))
}

func (s *jwtService) ValidateToken(tokenString string) (*IdentityClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &IdentityClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.ErrInvalidSigningMethod
		}
		return []byte(s.secretKey), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, apperrors.ErrTokenExpired
		case errors.Is(err, apperrors.ErrInvalidSigningMethod):
			return nil, apperrors.ErrInvalidSigningMethod
		default:
			return nil, apperrors.ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*IdentityClaims)
	if !ok || !token.Valid || claims.Email == "" {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}
