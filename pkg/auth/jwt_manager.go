package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

type Claims struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	TokenType TokenType `json:"typ"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	secretKey       string
	refreshKey      string
	tokenDuration   time.Duration
	refreshDuration time.Duration
}

func NewJWTManager(secret, refreshSecret string, duration, refreshDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:       secret,
		refreshKey:      refreshSecret,
		tokenDuration:   duration,
		refreshDuration: refreshDuration,
	}
}

// Generate issues an access token for the user.
func (m *JWTManager) Generate(userID, username, role string) (string, error) {
	return m.sign(AccessToken, userID, username, role, m.secretKey, m.tokenDuration)
}

// GenerateRefresh issues a refresh token signed with the refresh secret.
func (m *JWTManager) GenerateRefresh(userID, username, role string) (string, error) {
	return m.sign(RefreshToken, userID, username, role, m.refreshKey, m.refreshDuration)
}

func (m *JWTManager) AccessTTL() time.Duration {
	return m.tokenDuration
}

func (m *JWTManager) sign(typ TokenType, userID, username, role, key string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Username:  username,
		Role:      role,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(key))
}

// Verify parses and checks an access token.
func (m *JWTManager) Verify(accessToken string) (*Claims, error) {
	return m.parse(accessToken, m.secretKey, AccessToken)
}

func (m *JWTManager) VerifyRefresh(refreshToken string) (*Claims, error) {
	return m.parse(refreshToken, m.refreshKey, RefreshToken)
}

func (m *JWTManager) parse(raw, key string, want TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(key), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.TokenType != want {
		return nil, errors.New("wrong token type")
	}
	return claims, nil
}

// Expiry returns when an access token stops being valid.
func (m *JWTManager) Expiry(accessToken string) (time.Time, error) {
	claims, err := m.Verify(accessToken)
	if err != nil {
		return time.Time{}, err
	}
	return claims.ExpiresAt.Time, nil
}

// ExtractTokenFromHeader pulls the bearer token out of the Authorization header.
func ExtractTokenFromHeader(r *http.Request) (string, error) {
	hdr := r.Header.Get("Authorization")
	parts := strings.SplitN(hdr, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errors.New("invalid Authorization header")
	}
	return parts[1], nil
}
