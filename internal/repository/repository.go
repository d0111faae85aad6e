package repository

import (
	"context"

	"posts-service/internal/model"
)

// PostRepository интерфейс для работы с постами в хранилище
type PostRepository interface {
	// List возвращает все посты
	List(ctx context.Context) ([]model.Post, error)

	// GetByID возвращает пост по его ID или ErrPostNotFound
	GetByID(ctx context.Context, id string) (model.Post, error)

	// Create создает пост: назначает ID, автора и временные метки.
	// Если в dto передан файл картинки, сначала загружает его и подставляет URL.
	Create(ctx context.Context, dto model.CreatePostDto) (model.Post, error)

	// Update накладывает патч на существующий пост и обновляет UpdatedAt
	Update(ctx context.Context, id string, patch model.PostPatch) (model.Post, error)

	// Delete удаляет пост по ID. Повторное удаление не считается ошибкой.
	Delete(ctx context.Context, id string) error
}
