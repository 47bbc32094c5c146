package auth

import (
	"errors"
	"fmt"
	"time"

	"shifttrack/internal/shared/config"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer: значение iss в выпускаемых токенах
const Issuer = "shifttrack"

// ErrInvalidToken: подпись, срок или формат токена не прошли проверку
var ErrInvalidToken = errors.New("invalid token")

// Claims: JWT claims сервиса
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"` // manager | care_worker
	jwt.RegisteredClaims
}

// JWTService выпускает и проверяет HS256-токены
type JWTService struct {
	secret []byte
	expiry time.Duration
}

func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret: []byte(cfg.Secret),
		expiry: time.Duration(cfg.ExpiryMinutes) * time.Minute,
	}
}

// GenerateToken создает токен со сроком из конфигурации
func (s *JWTService) GenerateToken(userID, username, role string) (string, error) {
	return s.GenerateTokenWithTTL(userID, username, role, s.expiry)
}

// GenerateTokenWithTTL создает токен с явным сроком жизни
func (s *JWTService) GenerateTokenWithTTL(userID, username, role string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := &Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken проверяет подпись, срок и issuer
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(Issuer))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// ExtractUserID: userID и роль из токена, для аутентификации WebSocket
func (s *JWTService) ExtractUserID(tokenString string) (userID, role string, err error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return "", "", err
	}
	return claims.UserID, claims.Role, nil
}
