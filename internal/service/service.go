package service

import (
	"context"

	"posts-service/internal/model"
)

// PostService - точка вызова операций над постами для транспорта и клиентов.
// Реализация не добавляет логики: все вызовы и ошибки проходят в репозиторий и обратно.
type PostService interface {
	// GetPosts возвращает все посты
	GetPosts(ctx context.Context) ([]model.Post, error)

	// GetPost возвращает пост по его ID
	GetPost(ctx context.Context, id string) (model.Post, error)

	// CreatePost создает пост из полей, переданных клиентом
	CreatePost(ctx context.Context, dto model.CreatePostDto) (model.Post, error)

	// UpdatePost частично обновляет пост
	UpdatePost(ctx context.Context, id string, patch model.PostPatch) (model.Post, error)

	// DeletePost удаляет пост по ID
	DeletePost(ctx context.Context, id string) error
}
