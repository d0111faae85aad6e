package upload

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"posts-service/internal/model"
)

var (
	// ErrFileTooLarge возвращается, если файл больше Options.MaxSize
	ErrFileTooLarge = errors.New("file exceeds maximum size")
	// ErrFileTypeNotAccepted возвращается, если тип файла не входит в Options.AcceptedFileTypes
	ErrFileTypeNotAccepted = errors.New("file type not accepted")
	// ErrEmptyFile возвращается для файла без имени или данных
	ErrEmptyFile = errors.New("file is empty")
)

// Result - результат загрузки: публичный URL и путь объекта в хранилище
type Result struct {
	URL  string
	Path string
}

// Options - ограничения на загружаемый файл. Нулевые значения означают "без ограничений".
type Options struct {
	MaxSize           int64    // максимальный размер в байтах
	AcceptedFileTypes []string // MIME-типы ("image/png", "image/*") или расширения (".png")
}

// Uploader сохраняет бинарный файл и возвращает публичный URL для его получения
type Uploader interface {
	UploadFile(ctx context.Context, file model.File, opts *Options) (Result, error)
}

// Check проверяет файл до записи в хранилище
func (o *Options) Check(file model.File) error {
	if file.Name == "" || len(file.Data) == 0 {
		return ErrEmptyFile
	}
	if o == nil {
		return nil
	}

	if o.MaxSize > 0 && file.Size() > o.MaxSize {
		return fmt.Errorf("%w: %d > %d bytes", ErrFileTooLarge, file.Size(), o.MaxSize)
	}

	if len(o.AcceptedFileTypes) > 0 && !o.accepts(file) {
		return fmt.Errorf("%w: %s (%s)", ErrFileTypeNotAccepted, file.Name, file.ContentType)
	}

	return nil
}

func (o *Options) accepts(file model.File) bool {
	contentType := strings.ToLower(strings.TrimSpace(strings.SplitN(file.ContentType, ";", 2)[0]))
	ext := strings.ToLower(filepath.Ext(file.Name))

	for _, accepted := range o.AcceptedFileTypes {
		accepted = strings.ToLower(strings.TrimSpace(accepted))
		switch {
		case accepted == "":
			continue
		case strings.HasPrefix(accepted, "."):
			if ext == accepted {
				return true
			}
		case strings.HasSuffix(accepted, "/*"):
			if contentType != "" && strings.HasPrefix(contentType, strings.TrimSuffix(accepted, "*")) {
				return true
			}
		case contentType == accepted:
			return true
		}
	}

	return false
}

// Merge возвращает опции запроса, дополненные значениями по умолчанию
func (o *Options) Merge(defaults *Options) *Options {
	if o == nil {
		return defaults
	}
	if defaults == nil {
		return o
	}

	merged := *o
	if merged.MaxSize == 0 {
		merged.MaxSize = defaults.MaxSize
	}
	if len(merged.AcceptedFileTypes) == 0 {
		merged.AcceptedFileTypes = defaults.AcceptedFileTypes
	}
	return &merged
}

// ObjectName собирает имя объекта: префикс из текущего времени + исходное имя файла.
// Уникальность не гарантируется, коллизии маловероятны.
func ObjectName(unixMilli int64, fileName string) string {
	return fmt.Sprintf("%d-%s", unixMilli, filepath.Base(fileName))
}
