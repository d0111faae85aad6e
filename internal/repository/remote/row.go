package remote

import (
	"database/sql"
	"time"

	"posts-service/internal/model"
)

// postColumns - колонки таблицы posts в порядке postRow
const postColumns = "id, title, content, image_url, excerpt, author_id, created_at, updated_at"

// postRow - строка таблицы posts. Единственное место, где snake_case колонок
// встречается с именами доменной модели: все чтения и записи идут через него.
type postRow struct {
	ID        string         `db:"id"`
	Title     string         `db:"title"`
	Content   string         `db:"content"`
	ImageURL  sql.NullString `db:"image_url"`
	Excerpt   sql.NullString `db:"excerpt"`
	AuthorID  string         `db:"author_id"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// rowFromPost конвертирует доменную модель в строку таблицы
func rowFromPost(p model.Post) postRow {
	return postRow{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		ImageURL:  nullString(p.ImageURL),
		Excerpt:   nullString(p.Excerpt),
		AuthorID:  p.AuthorID,
		CreatedAt: p.CreatedAt.UTC(),
		UpdatedAt: p.UpdatedAt.UTC(),
	}
}

// toPost конвертирует строку таблицы в доменную модель и проверяет ее по схеме
func (r postRow) toPost() (model.Post, error) {
	post := model.Post{
		ID: r.ID,
		PostContent: model.PostContent{
			Title:    r.Title,
			Content:  r.Content,
			ImageURL: r.ImageURL.String,
			Excerpt:  r.Excerpt.String,
		},
		AuthorID:  r.AuthorID,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}

	if err := model.ValidatePost(post); err != nil {
		return model.Post{}, err
	}

	return post, nil
}
