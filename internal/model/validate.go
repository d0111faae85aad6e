package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// В ошибках используем имена полей доменной модели (json), а не имена Go-полей
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ValidatePost проверяет, что пост удовлетворяет всем ограничениям схемы
func ValidatePost(post Post) error {
	return toValidationError(validate.Struct(post))
}

// ValidateCreatePost проверяет поля, которые клиент передает при создании поста
func ValidateCreatePost(dto CreatePostDto) error {
	return toValidationError(validate.Struct(dto))
}

// ParsePost разбирает произвольное структурированное значение в Post.
// Возвращает нормализованный пост или ValidationError с перечнем нарушенных полей.
func ParsePost(data map[string]any) (Post, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Post{}, &ValidationError{Fields: []FieldError{{Field: "post", Rule: "json"}}}
	}

	if err := checkTimestamps(data); err != nil {
		return Post{}, err
	}

	var post Post
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&post); err != nil {
		return Post{}, decodeError(err)
	}

	if err := ValidatePost(post); err != nil {
		return Post{}, err
	}

	return post, nil
}

// decodeError превращает ошибку json-декодирования в ошибку валидации
func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		// Field содержит путь Go-структуры (PostContent.title), нужен только json-ключ
		field := typeErr.Field[strings.LastIndex(typeErr.Field, ".")+1:]
		return &ValidationError{Fields: []FieldError{{Field: field, Rule: "type", Param: typeErr.Type.String()}}}
	}

	var timeErr *time.ParseError
	if errors.As(err, &timeErr) {
		return &ValidationError{Fields: []FieldError{{Field: "post", Rule: "datetime", Param: timeErr.Value}}}
	}

	return &ValidationError{Fields: []FieldError{{Field: "post", Rule: "format", Param: err.Error()}}}
}

// timestampFields - поля времени, которые json-декодер не привязывает к ошибке
var timestampFields = []string{"createdAt", "updatedAt"}

// checkTimestamps проверяет формат меток времени до декодирования
func checkTimestamps(data map[string]any) error {
	var fields []FieldError
	for _, name := range timestampFields {
		v, ok := data[name]
		if !ok || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			fields = append(fields, FieldError{Field: name, Rule: "type", Param: "string"})
			continue
		}
		if _, err := time.Parse(time.RFC3339Nano, s); err != nil {
			fields = append(fields, FieldError{Field: name, Rule: "datetime", Param: s})
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// toValidationError конвертирует ошибки validator в доменную ValidationError
func toValidationError(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field: fe.Field(),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}

	return &ValidationError{Fields: fields}
}
