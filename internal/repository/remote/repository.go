package remote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"posts-service/internal/auth"
	"posts-service/internal/model"
	"posts-service/internal/repository"
	"posts-service/internal/upload"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var _ repository.PostRepository = (*repo)(nil)

// Config настройки репозитория поверх таблицы posts бэкенда
type Config struct {
	DB       *sqlx.DB
	Sessions auth.SessionSource
	Uploader upload.Uploader
	Now      func() time.Time
}

type repo struct {
	db       *sqlx.DB
	sessions auth.SessionSource
	uploader upload.Uploader
	now      func() time.Time
}

// NewRepository создает репозиторий, работающий с таблицей posts удаленной базы
func NewRepository(cfg Config) (repository.PostRepository, error) {
	if cfg.DB == nil {
		return nil, errors.New("remote repository: db is required")
	}

	r := &repo{
		db:       cfg.DB,
		sessions: cfg.Sessions,
		uploader: cfg.Uploader,
		now:      cfg.Now,
	}
	if r.sessions == nil {
		r.sessions = auth.ContextSource{}
	}
	if r.now == nil {
		r.now = time.Now
	}

	return r, nil
}

// timestamp приводит время к точности базы (микросекунды, UTC)
func (r *repo) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}

// List возвращает все посты, новые первыми
func (r *repo) List(ctx context.Context) ([]model.Post, error) {
	var rows []postRow
	query := "SELECT " + postColumns + " FROM posts ORDER BY created_at DESC"

	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, &model.StorageError{Op: "select posts", Err: err}
	}

	posts := make([]model.Post, 0, len(rows))
	for _, row := range rows {
		post, err := row.toPost()
		if err != nil {
			return nil, fmt.Errorf("post %s: %w", row.ID, err)
		}
		posts = append(posts, post)
	}

	return posts, nil
}

// GetByID возвращает пост по его ID
func (r *repo) GetByID(ctx context.Context, id string) (model.Post, error) {
	// Строки с не-UUID ключом в таблице быть не может
	if _, err := uuid.Parse(id); err != nil {
		return model.Post{}, repository.ErrPostNotFound
	}

	var row postRow
	query := r.db.Rebind("SELECT " + postColumns + " FROM posts WHERE id = ?")

	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Post{}, repository.ErrPostNotFound
		}
		return model.Post{}, &model.StorageError{Op: "select post", Err: err}
	}

	return row.toPost()
}

// Create создает пост от имени текущего пользователя
func (r *repo) Create(ctx context.Context, dto model.CreatePostDto) (model.Post, error) {
	// Анонимное создание запрещено на уровне данных
	session, err := r.sessions.CurrentSession(ctx)
	if err != nil {
		if errors.Is(err, auth.ErrNoSession) {
			return model.Post{}, repository.ErrUnauthenticated
		}
		return model.Post{}, err
	}

	if err := model.ValidateCreatePost(dto); err != nil {
		return model.Post{}, err
	}

	now := r.timestamp()
	post := model.Post{
		ID:          uuid.New().String(),
		PostContent: dto.PostContent,
		AuthorID:    session.UserID,
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

	query := `INSERT INTO posts (` + postColumns + `)
		VALUES (:id, :title, :content, :image_url, :excerpt, :author_id, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, rowFromPost(post)); err != nil {
		return model.Post{}, &model.StorageError{Op: "insert post", Err: err}
	}

	return post, nil
}

// Update накладывает патч на пост. Последняя запись побеждает.
func (r *repo) Update(ctx context.Context, id string, patch model.PostPatch) (model.Post, error) {
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

	updated := patch.Apply(existing)
	updated.UpdatedAt = model.NextUpdatedAt(existing.UpdatedAt, r.timestamp())

	if err := model.ValidatePost(updated); err != nil {
		return model.Post{}, err
	}

	query := `UPDATE posts
		SET title = :title, content = :content, image_url = :image_url, excerpt = :excerpt, updated_at = :updated_at
		WHERE id = :id`

	res, err := r.db.NamedExecContext(ctx, query, rowFromPost(updated))
	if err != nil {
		return model.Post{}, &model.StorageError{Op: "update post", Err: err}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return model.Post{}, &model.StorageError{Op: "update post", Err: err}
	}
	if affected == 0 {
		// Пост удалили между чтением и записью
		return model.Post{}, repository.ErrPostNotFound
	}

	return updated, nil
}

// Delete удаляет пост по ID. Отсутствующий ID не считается ошибкой.
func (r *repo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}

	query := r.db.Rebind("DELETE FROM posts WHERE id = ?")
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return &model.StorageError{Op: "delete post", Err: err}
	}

	return nil
}
