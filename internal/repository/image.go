package repository

import (
	"context"
	"errors"

	"posts-service/internal/model"
	"posts-service/internal/upload"
)

// ErrUploaderNotConfigured возвращается, если передан файл, а uploader не задан
var ErrUploaderNotConfigured = errors.New("image upload is not configured")

// ResolveImage загружает файл картинки (если он передан) и возвращает URL для записи в пост.
// Без файла возвращает current без изменений.
func ResolveImage(ctx context.Context, uploader upload.Uploader, file *model.File, current string) (string, error) {
	if file == nil {
		return current, nil
	}
	if uploader == nil {
		return "", ErrUploaderNotConfigured
	}

	res, err := uploader.UploadFile(ctx, *file, nil)
	if err != nil {
		return "", err
	}

	return res.URL, nil
}
