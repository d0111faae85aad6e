package posts

import (
	"context"

	"posts-service/internal/model"
	"posts-service/internal/repository"
	svc "posts-service/internal/service"
)

var _ svc.PostService = (*service)(nil)

type service struct {
	postRepository repository.PostRepository
}

// NewPostService создает сервис поверх выбранного репозитория
func NewPostService(postRepository repository.PostRepository) svc.PostService {
	return &service{
		postRepository: postRepository,
	}
}

func (s *service) GetPosts(ctx context.Context) ([]model.Post, error) {
	return s.postRepository.List(ctx)
}

func (s *service) GetPost(ctx context.Context, id string) (model.Post, error) {
	return s.postRepository.GetByID(ctx, id)
}

func (s *service) CreatePost(ctx context.Context, dto model.CreatePostDto) (model.Post, error) {
	return s.postRepository.Create(ctx, dto)
}

func (s *service) UpdatePost(ctx context.Context, id string, patch model.PostPatch) (model.Post, error) {
	return s.postRepository.Update(ctx, id, patch)
}

func (s *service) DeletePost(ctx context.Context, id string) error {
	return s.postRepository.Delete(ctx, id)
}
