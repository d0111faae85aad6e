package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"posts-service/internal/model"
	"posts-service/internal/upload"
)

// DefaultBucket - бакет для картинок постов
const DefaultBucket = "post-images"

var _ upload.Uploader = (*Uploader)(nil)

// Config настройки клиента объектного хранилища
type Config struct {
	BaseURL  string // адрес бэкенда, например https://xyz.example.co
	Bucket   string
	APIKey   string
	Defaults *upload.Options
	Client   *http.Client
	Now      func() time.Time
}

// Uploader загружает файлы в бакет объектного хранилища бэкенда
type Uploader struct {
	baseURL  string
	bucket   string
	apiKey   string
	defaults *upload.Options
	client   *http.Client
	now      func() time.Time
}

// NewUploader создает клиент объектного хранилища
func NewUploader(cfg Config) (*Uploader, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("storage: base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("storage: invalid base url: %w", err)
	}

	u := &Uploader{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		bucket:   cfg.Bucket,
		apiKey:   cfg.APIKey,
		defaults: cfg.Defaults,
		client:   cfg.Client,
		now:      cfg.Now,
	}
	if u.bucket == "" {
		u.bucket = DefaultBucket
	}
	if u.client == nil {
		u.client = &http.Client{Timeout: 30 * time.Second}
	}
	if u.now == nil {
		u.now = time.Now
	}

	return u, nil
}

// uploadResponse - ответ хранилища на загрузку объекта
type uploadResponse struct {
	Key string `json:"Key"`
}

// errorResponse - тело ошибки хранилища
type errorResponse struct {
	StatusCode string `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

// UploadFile загружает файл под именем <unix-millis>-<имя файла> и возвращает публичный URL
func (u *Uploader) UploadFile(ctx context.Context, file model.File, opts *upload.Options) (upload.Result, error) {
	if err := opts.Merge(u.defaults).Check(file); err != nil {
		return upload.Result{}, err
	}

	path := upload.ObjectName(u.now().UnixMilli(), file.Name)
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", u.baseURL, u.bucket, url.PathEscape(path))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(file.Data))
	if err != nil {
		return upload.Result{}, &model.StorageError{Op: "upload " + path, Err: err}
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(file.Data)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")
	if u.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+u.apiKey)
		req.Header.Set("apikey", u.apiKey)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return upload.Result{}, &model.StorageError{Op: "upload " + path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return upload.Result{}, &model.StorageError{Op: "upload " + path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return upload.Result{}, &model.StorageError{Op: "upload " + path, Err: decodeError(resp.StatusCode, body)}
	}

	// Хранилище отвечает ключом "<bucket>/<path>"; если ответа нет, используем свой путь
	var uploaded uploadResponse
	if err := json.Unmarshal(body, &uploaded); err == nil && uploaded.Key != "" {
		path = strings.TrimPrefix(uploaded.Key, u.bucket+"/")
	}

	return upload.Result{
		URL:  u.PublicURL(path),
		Path: path,
	}, nil
}

// PublicURL возвращает публичный URL объекта в бакете
func (u *Uploader) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", u.baseURL, u.bucket, url.PathEscape(path))
}

func decodeError(statusCode int, body []byte) error {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && (e.Message != "" || e.Error != "") {
		return fmt.Errorf("status %d: %s: %s", statusCode, e.Error, e.Message)
	}
	return fmt.Errorf("status %d: %s", statusCode, strings.TrimSpace(string(body)))
}
