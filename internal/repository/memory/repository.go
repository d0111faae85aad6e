package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"posts-service/internal/auth"
	"posts-service/internal/model"
	"posts-service/internal/repository"
	"posts-service/internal/upload"

	"github.com/google/uuid"
)

// DefaultAuthorID - автор постов, созданных без активной сессии
const DefaultAuthorID = "550e8400-e29b-41d4-a716-446655440007"

var _ repository.PostRepository = (*repo)(nil)

// Config настройки in-memory репозитория
type Config struct {
	// Seed - посты, которыми заполняется хранилище. Каждый проходит валидацию.
	Seed []model.Post
	// Uploader загружает файлы картинок, переданные в Create/Update
	Uploader upload.Uploader
	// Sessions отдает текущего пользователя; nil означает "всегда DefaultAuthorID"
	Sessions auth.SessionSource
	// DefaultAuthorID используется, если сессии нет
	DefaultAuthorID string
	// Now - источник времени (для тестов)
	Now func() time.Time
}

type repo struct {
	mu    sync.RWMutex
	posts map[string]model.Post

	uploader        upload.Uploader
	sessions        auth.SessionSource
	defaultAuthorID string
	now             func() time.Time
}

// NewRepository создает новый экземпляр in-memory репозитория на основе map
func NewRepository(cfg Config) (repository.PostRepository, error) {
	r := &repo{
		posts:           make(map[string]model.Post, len(cfg.Seed)),
		uploader:        cfg.Uploader,
		sessions:        cfg.Sessions,
		defaultAuthorID: cfg.DefaultAuthorID,
		now:             cfg.Now,
	}
	if r.defaultAuthorID == "" {
		r.defaultAuthorID = DefaultAuthorID
	}
	if r.now == nil {
		r.now = time.Now
	}

	for _, post := range cfg.Seed {
		if err := model.ValidatePost(post); err != nil {
			return nil, fmt.Errorf("seed post %q: %w", post.ID, err)
		}
		r.posts[post.ID] = post
	}

	return r, nil
}

// List возвращает все посты, новые первыми
func (r *repo) List(ctx context.Context) ([]model.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	posts := make([]model.Post, 0, len(r.posts))
	for _, post := range r.posts {
		posts = append(posts, post)
	}

	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID < posts[j].ID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})

	return posts, nil
}

// GetByID возвращает пост по его ID
func (r *repo) GetByID(ctx context.Context, id string) (model.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, exists := r.posts[id]
	if !exists {
		return model.Post{}, repository.ErrPostNotFound
	}

	return post, nil
}

// Create создает новый пост и возвращает его с назначенными ID, автором и метками
func (r *repo) Create(ctx context.Context, dto model.CreatePostDto) (model.Post, error) {
	if err := model.ValidateCreatePost(dto); err != nil {
		return model.Post{}, err
	}

	authorID, err := r.authorID(ctx)
	if err != nil {
		return model.Post{}, err
	}

	now := r.now()
	post := model.Post{
		ID:          uuid.New().String(),
		PostContent: dto.PostContent,
		AuthorID:    authorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// Пост проверяется до загрузки картинки
	if err := model.ValidatePost(post); err != nil {
		return model.Post{}, err
	}

	post.ImageURL, err = repository.ResolveImage(ctx, r.uploader, dto.Image, dto.ImageURL)
	if err != nil {
		return model.Post{}, err
	}

	if err := model.ValidatePost(post); err != nil {
		return model.Post{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.posts[post.ID] = post

	return post, nil
}

// Update накладывает патч на существующий пост и возвращает обновленный пост
func (r *repo) Update(ctx context.Context, id string, patch model.PostPatch) (model.Post, error) {
	// Существование и патч проверяются до загрузки картинки
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return model.Post{}, err
	}
	if err := model.ValidatePost(patch.Apply(existing)); err != nil {
		return model.Post{}, err
	}

	if patch.Image != nil {
		imageURL, err := repository.ResolveImage(ctx, r.uploader, patch.Image, "")
		if err != nil {
			return model.Post{}, err
		}
		patch.ImageURL = &imageURL
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.posts[id]
	if !exists {
		return model.Post{}, repository.ErrPostNotFound
	}

	updated := patch.Apply(existing)
	updated.UpdatedAt = model.NextUpdatedAt(existing.UpdatedAt, r.now())

	if err := model.ValidatePost(updated); err != nil {
		return model.Post{}, err
	}

	r.posts[id] = updated

	return updated, nil
}

// Delete удаляет пост по ID. Отсутствующий ID не считается ошибкой.
func (r *repo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.posts, id)

	return nil
}

func (r *repo) authorID(ctx context.Context) (string, error) {
	if r.sessions == nil {
		return r.defaultAuthorID, nil
	}

	s, err := r.sessions.CurrentSession(ctx)
	if errors.Is(err, auth.ErrNoSession) {
		return r.defaultAuthorID, nil
	}
	if err != nil {
		return "", err
	}

	return s.UserID, nil
}
