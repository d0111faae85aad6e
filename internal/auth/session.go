package auth

import (
	"context"
	"errors"
)

// ErrNoSession возвращается, когда в контексте нет активной сессии пользователя
var ErrNoSession = errors.New("no active session")

type ctxKey struct{}

// Session - активная сессия пользователя бэкенда
type Session struct {
	UserID string // UUID пользователя (subject токена)
	Email  string
	Role   string
}

// WithSession кладет сессию в контекст запроса
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext достает сессию из контекста
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok && s.UserID != ""
}

// SessionSource отдает текущую сессию пользователя.
// Репозитории используют его, чтобы назначить автора поста.
type SessionSource interface {
	CurrentSession(ctx context.Context) (Session, error)
}

// ContextSource читает сессию, которую транспорт положил в контекст
type ContextSource struct{}

// CurrentSession возвращает сессию из контекста или ErrNoSession
func (ContextSource) CurrentSession(ctx context.Context) (Session, error) {
	s, ok := FromContext(ctx)
	if !ok {
		return Session{}, ErrNoSession
	}
	return s, nil
}
