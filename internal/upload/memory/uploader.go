package memory

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"posts-service/internal/model"
	"posts-service/internal/upload"
)

// pathPrefix - префикс путей объектов в памяти
const pathPrefix = "mock-uploads/"

var _ upload.Uploader = (*Uploader)(nil)

type object struct {
	contentType string
	data        []byte
	modTime     time.Time
}

// Uploader хранит загруженные файлы в памяти процесса и отдает их по HTTP.
// Используется вместе с in-memory репозиторием и в тестах.
type Uploader struct {
	mu       sync.RWMutex
	objects  map[string]object
	baseURL  string
	defaults *upload.Options
}

// NewUploader создает uploader, публичные URL которого начинаются с baseURL
// (например, http://localhost:8080/uploads)
func NewUploader(baseURL string, defaults *upload.Options) *Uploader {
	return &Uploader{
		objects:  make(map[string]object),
		baseURL:  strings.TrimRight(baseURL, "/"),
		defaults: defaults,
	}
}

// UploadFile сохраняет файл под путем mock-uploads/<имя файла>
func (u *Uploader) UploadFile(ctx context.Context, file model.File, opts *upload.Options) (upload.Result, error) {
	if err := opts.Merge(u.defaults).Check(file); err != nil {
		return upload.Result{}, err
	}

	name := filepath.Base(file.Name)
	path := pathPrefix + name
	data := make([]byte, len(file.Data))
	copy(data, file.Data)

	u.mu.Lock()
	u.objects[path] = object{contentType: file.ContentType, data: data, modTime: time.Now()}
	u.mu.Unlock()

	return upload.Result{
		URL:  u.baseURL + "/" + pathPrefix + url.PathEscape(name),
		Path: path,
	}, nil
}

// Len возвращает количество сохраненных объектов
func (u *Uploader) Len() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.objects)
}

// ServeHTTP отдает сохраненный объект. Ожидает путь без префикса монтирования
// (http.StripPrefix("/uploads", uploader)).
func (u *Uploader) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/")

	u.mu.RLock()
	obj, ok := u.objects[path]
	u.mu.RUnlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	if obj.contentType != "" {
		w.Header().Set("Content-Type", obj.contentType)
	}
	http.ServeContent(w, r, filepath.Base(path), obj.modTime, bytes.NewReader(obj.data))
}
