package model

import (
	"fmt"
	"strings"
)

// FieldError описывает нарушение одного правила схемы
type FieldError struct {
	Field string // имя поля в доменной модели (imageUrl, authorId, ...)
	Rule  string // нарушенное правило (required, max, uuid, url, ...)
	Param string // параметр правила, например "100" для max
}

func (f FieldError) String() string {
	if f.Param != "" {
		return fmt.Sprintf("%s: %s=%s", f.Field, f.Rule, f.Param)
	}
	return fmt.Sprintf("%s: %s", f.Field, f.Rule)
}

// ValidationError возвращается, когда значение не соответствует схеме поста
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasField сообщает, нарушено ли какое-либо правило для поля
func (e *ValidationError) HasField(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// StorageError оборачивает ошибку бэкенда (база или объектное хранилище).
// Исходная ошибка доступна через errors.Unwrap / errors.As.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
