package converter

import (
	"encoding/base64"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"posts-service/internal/model"
)

// Имена полей поста на проводе совпадают с json-тегами доменной модели
const (
	fieldID        = "id"
	fieldTitle     = "title"
	fieldContent   = "content"
	fieldImageURL  = "imageUrl"
	fieldExcerpt   = "excerpt"
	fieldAuthorID  = "authorId"
	fieldCreatedAt = "createdAt"
	fieldUpdatedAt = "updatedAt"
	fieldImage     = "image"
	fieldPosts     = "posts"
)

// readonlyFields назначаются сервером и не принимаются от клиента
var readonlyFields = map[string]bool{
	fieldID:        true,
	fieldAuthorID:  true,
	fieldCreatedAt: true,
	fieldUpdatedAt: true,
}

// PostToMap конвертирует domain модель Post в структурированное значение.
// Пустые необязательные поля опускаются.
func PostToMap(post model.Post) map[string]any {
	m := map[string]any{
		fieldID:        post.ID,
		fieldTitle:     post.Title,
		fieldContent:   post.Content,
		fieldAuthorID:  post.AuthorID,
		fieldCreatedAt: post.CreatedAt.Format(time.RFC3339Nano),
		fieldUpdatedAt: post.UpdatedAt.Format(time.RFC3339Nano),
	}
	if post.ImageURL != "" {
		m[fieldImageURL] = post.ImageURL
	}
	if post.Excerpt != "" {
		m[fieldExcerpt] = post.Excerpt
	}
	return m
}

// PostToStruct конвертирует domain модель Post в structpb.Struct
func PostToStruct(post model.Post) (*structpb.Struct, error) {
	return structpb.NewStruct(PostToMap(post))
}

// PostsToStruct конвертирует слайс постов в {"posts": [...]}
func PostsToStruct(posts []model.Post) (*structpb.Struct, error) {
	list := make([]any, len(posts))
	for i, post := range posts {
		list[i] = PostToMap(post)
	}
	return structpb.NewStruct(map[string]any{fieldPosts: list})
}

// StructToPost конвертирует structpb.Struct в Post с полной проверкой схемы
func StructToPost(s *structpb.Struct) (model.Post, error) {
	if s == nil {
		return model.Post{}, &model.ValidationError{Fields: []model.FieldError{{Field: "post", Rule: "required"}}}
	}
	return model.ParsePost(s.AsMap())
}

// StructToPosts разбирает ответ ListPosts
func StructToPosts(s *structpb.Struct) ([]model.Post, error) {
	raw := s.GetFields()[fieldPosts].GetListValue().GetValues()

	posts := make([]model.Post, 0, len(raw))
	for _, v := range raw {
		post, err := StructToPost(v.GetStructValue())
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// StructToCreateDto разбирает тело запроса на создание поста.
// Схема здесь не проверяется: это делает репозиторий.
func StructToCreateDto(s *structpb.Struct) (model.CreatePostDto, error) {
	var dto model.CreatePostDto
	var errs []model.FieldError

	for name, v := range s.GetFields() {
		switch name {
		case fieldTitle:
			dto.Title, errs = stringField(name, v, errs)
		case fieldContent:
			dto.Content, errs = stringField(name, v, errs)
		case fieldImageURL:
			dto.ImageURL, errs = stringField(name, v, errs)
		case fieldExcerpt:
			dto.Excerpt, errs = stringField(name, v, errs)
		case fieldImage:
			file, err := fileFromValue(v)
			if err != nil {
				errs = append(errs, *err)
				continue
			}
			dto.Image = file
		default:
			errs = append(errs, unexpectedField(name))
		}
	}

	if len(errs) > 0 {
		return model.CreatePostDto{}, &model.ValidationError{Fields: errs}
	}
	return dto, nil
}

// StructToPatch разбирает тело запроса на частичное обновление поста.
// Отсутствующее поле означает "не менять", пустая строка очищает необязательное поле.
func StructToPatch(s *structpb.Struct) (model.PostPatch, error) {
	var patch model.PostPatch
	var errs []model.FieldError

	for name, v := range s.GetFields() {
		var value string
		switch name {
		case fieldTitle, fieldContent, fieldImageURL, fieldExcerpt:
			value, errs = stringField(name, v, errs)
		case fieldImage:
			file, err := fileFromValue(v)
			if err != nil {
				errs = append(errs, *err)
				continue
			}
			patch.Image = file
			continue
		default:
			errs = append(errs, unexpectedField(name))
			continue
		}

		switch name {
		case fieldTitle:
			patch.Title = &value
		case fieldContent:
			patch.Content = &value
		case fieldImageURL:
			patch.ImageURL = &value
		case fieldExcerpt:
			patch.Excerpt = &value
		}
	}

	if len(errs) > 0 {
		return model.PostPatch{}, &model.ValidationError{Fields: errs}
	}
	return patch, nil
}

// CreateDtoToStruct - обратная конвертация для клиентов
func CreateDtoToStruct(dto model.CreatePostDto) (*structpb.Struct, error) {
	m := map[string]any{
		fieldTitle:   dto.Title,
		fieldContent: dto.Content,
	}
	if dto.ImageURL != "" {
		m[fieldImageURL] = dto.ImageURL
	}
	if dto.Excerpt != "" {
		m[fieldExcerpt] = dto.Excerpt
	}
	if dto.Image != nil {
		m[fieldImage] = fileToMap(*dto.Image)
	}
	return structpb.NewStruct(m)
}

// PatchToStruct - обратная конвертация патча для клиентов
func PatchToStruct(patch model.PostPatch) (*structpb.Struct, error) {
	m := map[string]any{}
	if patch.Title != nil {
		m[fieldTitle] = *patch.Title
	}
	if patch.Content != nil {
		m[fieldContent] = *patch.Content
	}
	if patch.ImageURL != nil {
		m[fieldImageURL] = *patch.ImageURL
	}
	if patch.Excerpt != nil {
		m[fieldExcerpt] = *patch.Excerpt
	}
	if patch.Image != nil {
		m[fieldImage] = fileToMap(*patch.Image)
	}
	return structpb.NewStruct(m)
}

func stringField(name string, v *structpb.Value, errs []model.FieldError) (string, []model.FieldError) {
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", append(errs, model.FieldError{Field: name, Rule: "type", Param: "string"})
	}
	return s.StringValue, errs
}

func unexpectedField(name string) model.FieldError {
	if readonlyFields[name] {
		return model.FieldError{Field: name, Rule: "readonly"}
	}
	return model.FieldError{Field: name, Rule: "unknown"}
}

// fileFromValue разбирает {"name", "contentType", "data"(base64)}
func fileFromValue(v *structpb.Value) (*model.File, *model.FieldError) {
	s := v.GetStructValue()
	if s == nil {
		return nil, &model.FieldError{Field: fieldImage, Rule: "type", Param: "object"}
	}

	fields := s.GetFields()
	data, err := base64.StdEncoding.DecodeString(fields["data"].GetStringValue())
	if err != nil {
		return nil, &model.FieldError{Field: fieldImage + ".data", Rule: "base64"}
	}

	return &model.File{
		Name:        fields["name"].GetStringValue(),
		ContentType: fields["contentType"].GetStringValue(),
		Data:        data,
	}, nil
}

func fileToMap(file model.File) map[string]any {
	return map[string]any{
		"name":        file.Name,
		"contentType": file.ContentType,
		"data":        base64.StdEncoding.EncodeToString(file.Data),
	}
}

// String форматирует пост для вывода в CLI
func String(post model.Post) string {
	s := fmt.Sprintf("%s  %q by %s (created %s, updated %s)",
		post.ID, post.Title, post.AuthorID,
		post.CreatedAt.Format(time.RFC3339), post.UpdatedAt.Format(time.RFC3339))
	if post.ImageURL != "" {
		s += "\n    image: " + post.ImageURL
	}
	if post.Excerpt != "" {
		s += "\n    excerpt: " + post.Excerpt
	}
	return s
}
