package repository

import "errors"

var (
	// ErrPostNotFound возвращается, когда пост не найден
	ErrPostNotFound = errors.New("post not found")

	// ErrUnauthenticated возвращается при попытке создать пост без активной сессии
	ErrUnauthenticated = errors.New("authentication required")
)
