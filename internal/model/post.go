package model

import (
	"time"
)

// PostContent содержит поля поста, которые задает пользователь.
// Встраивается и в Post, и в CreatePostDto, поэтому обе схемы меняются вместе.
type PostContent struct {
	Title    string `json:"title" validate:"required,max=100"`
	Content  string `json:"content" validate:"required"`
	ImageURL string `json:"imageUrl,omitempty" validate:"omitempty,url"`
	Excerpt  string `json:"excerpt,omitempty" validate:"omitempty,max=200"`
}

// Post представляет пост блога (доменная модель)
type Post struct {
	ID string `json:"id" validate:"required,uuid"` // UUID поста
	PostContent
	AuthorID  string    `json:"authorId" validate:"required,uuid"` // UUID автора
	CreatedAt time.Time `json:"createdAt" validate:"required"`
	UpdatedAt time.Time `json:"updatedAt" validate:"required,gtefield=CreatedAt"`
}

// CreatePostDto - поля, которые клиент передает при создании поста.
// ID, AuthorID и временные метки назначаются сервером.
type CreatePostDto struct {
	PostContent

	// Image - сырые данные картинки. Если задано, репозиторий сначала загружает файл
	// и подставляет полученный публичный URL в ImageURL.
	Image *File `json:"-" validate:"-"`
}

// PostPatch - частичное обновление поста. nil означает "не менять".
type PostPatch struct {
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	ImageURL *string `json:"imageUrl,omitempty"`
	Excerpt  *string `json:"excerpt,omitempty"`
	Image    *File   `json:"-"`
}

// File - бинарный файл для загрузки в хранилище
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size возвращает размер файла в байтах
func (f *File) Size() int64 {
	return int64(len(f.Data))
}

// IsEmpty проверяет, пуст ли пост
func (p *Post) IsEmpty() bool {
	return p.ID == "" && p.Title == "" && p.Content == ""
}

// IsEmpty проверяет, не содержит ли патч ни одного изменения
func (p *PostPatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.ImageURL == nil && p.Excerpt == nil && p.Image == nil
}

// Apply накладывает патч на копию поста. UpdatedAt не трогает.
func (p PostPatch) Apply(post Post) Post {
	if p.Title != nil {
		post.Title = *p.Title
	}
	if p.Content != nil {
		post.Content = *p.Content
	}
	if p.ImageURL != nil {
		post.ImageURL = *p.ImageURL
	}
	if p.Excerpt != nil {
		post.Excerpt = *p.Excerpt
	}
	return post
}

// NextUpdatedAt возвращает метку обновления, строго большую предыдущей.
// Часы могут вернуть то же значение при быстрых последовательных обновлениях.
func NextUpdatedAt(prev, now time.Time) time.Time {
	if !now.After(prev) {
		return prev.Add(time.Microsecond)
	}
	return now
}
