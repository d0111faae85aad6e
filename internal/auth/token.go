package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken возвращается для неподписанного, просроченного или битого токена
	ErrInvalidToken = errors.New("invalid token")
	// ErrSecretNotConfigured возвращается, если не задан секрет подписи
	ErrSecretNotConfigured = errors.New("jwt secret not configured")
)

// Claims - claims access-токена бэкенда
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Verifier проверяет access-токены, подписанные секретом бэкенда (HS256)
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier создает Verifier для указанного секрета
func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, ErrSecretNotConfigured
	}

	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
			jwt.WithExpirationRequired(),
		),
	}, nil
}

// Verify проверяет подпись и срок токена и возвращает сессию пользователя
func (v *Verifier) Verify(tokenStr string) (Session, error) {
	var claims Claims

	_, err := v.parser.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Session{}, fmt.Errorf("%w: subject is not a uuid", ErrInvalidToken)
	}

	// uuid.Parse принимает и верхний регистр, и форму без дефисов; храним каноническую
	return Session{
		UserID: userID.String(),
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}

// IssueToken подписывает токен для пользователя. Используется клиентом и тестами.
func IssueToken(secret string, s Session, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrSecretNotConfigured
	}

	now := time.Now()
	claims := Claims{
		Email: s.Email,
		Role:  s.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
