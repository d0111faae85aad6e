package memory

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posts-service/internal/model"
	"posts-service/internal/upload"
)

func TestUploader_UploadAndServe(t *testing.T) {
	u := NewUploader("http://localhost:8080/uploads/", nil)
	file := model.File{Name: "cat.png", ContentType: "image/png", Data: []byte("png-bytes")}

	res, err := u.UploadFile(context.Background(), file, nil)
	require.NoError(t, err)
	assert.Equal(t, "mock-uploads/cat.png", res.Path)
	assert.Equal(t, "http://localhost:8080/uploads/mock-uploads/cat.png", res.URL)
	assert.Equal(t, 1, u.Len())

	srv := httptest.NewServer(http.StripPrefix("/uploads", u))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/uploads/mock-uploads/cat.png")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, "png-bytes", string(body))
}

func TestUploader_EscapesNameInURL(t *testing.T) {
	u := NewUploader("http://localhost:8080/uploads", nil)
	handler := http.StripPrefix("/uploads", u)

	for _, name := range []string{"100%.png", "a#b.png", "my cat.png"} {
		t.Run(name, func(t *testing.T) {
			res, err := u.UploadFile(context.Background(), model.File{Name: name, ContentType: "image/png", Data: []byte(name)}, nil)
			require.NoError(t, err)
			assert.Equal(t, "mock-uploads/"+name, res.Path)

			parsed, err := url.Parse(res.URL)
			require.NoError(t, err)
			assert.Empty(t, parsed.Fragment)
			assert.Equal(t, "/uploads/mock-uploads/"+name, parsed.Path)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, parsed.RequestURI(), nil))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, name, rec.Body.String())
		})
	}
}

func TestUploader_ServeMissing(t *testing.T) {
	u := NewUploader("http://localhost/uploads", nil)

	rec := httptest.NewRecorder()
	u.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mock-uploads/nope.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploader_EnforcesDefaults(t *testing.T) {
	u := NewUploader("http://localhost/uploads", &upload.Options{MaxSize: 4})
	file := model.File{Name: "big.png", ContentType: "image/png", Data: []byte("12345")}

	_, err := u.UploadFile(context.Background(), file, nil)
	assert.True(t, errors.Is(err, upload.ErrFileTooLarge))
	assert.Equal(t, 0, u.Len())

	_, err = u.UploadFile(context.Background(), file, &upload.Options{AcceptedFileTypes: []string{"image/jpeg"}})
	assert.True(t, errors.Is(err, upload.ErrFileTooLarge), "defaults still apply to fields the caller left empty")
}
