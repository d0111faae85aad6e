package upload

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"posts-service/internal/model"
)

func png(size int) model.File {
	return model.File{Name: "cat.png", ContentType: "image/png", Data: make([]byte, size)}
}

func TestOptionsCheck(t *testing.T) {
	tests := []struct {
		name    string
		opts    *Options
		file    model.File
		wantErr error
	}{
		{name: "nil options", opts: nil, file: png(10)},
		{name: "empty file", opts: nil, file: model.File{Name: "x.png"}, wantErr: ErrEmptyFile},
		{name: "within max size", opts: &Options{MaxSize: 10}, file: png(10)},
		{name: "too large", opts: &Options{MaxSize: 10}, file: png(11), wantErr: ErrFileTooLarge},
		{name: "exact mime", opts: &Options{AcceptedFileTypes: []string{"image/png"}}, file: png(1)},
		{name: "wildcard mime", opts: &Options{AcceptedFileTypes: []string{"image/*"}}, file: png(1)},
		{name: "extension", opts: &Options{AcceptedFileTypes: []string{".PNG"}}, file: png(1)},
		{name: "mime with params", opts: &Options{AcceptedFileTypes: []string{"image/png"}},
			file: model.File{Name: "a.png", ContentType: "image/png; charset=binary", Data: []byte{1}}},
		{name: "rejected type", opts: &Options{AcceptedFileTypes: []string{"image/jpeg", ".gif"}},
			file: png(1), wantErr: ErrFileTypeNotAccepted},
		{name: "wildcard does not match other family", opts: &Options{AcceptedFileTypes: []string{"image/*"}},
			file: model.File{Name: "doc.pdf", ContentType: "application/pdf", Data: []byte{1}}, wantErr: ErrFileTypeNotAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Check(tt.file)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "expected %v, got %v", tt.wantErr, err)
		})
	}
}

func TestOptionsMerge(t *testing.T) {
	defaults := &Options{MaxSize: 100, AcceptedFileTypes: []string{"image/*"}}

	assert.Equal(t, defaults, (*Options)(nil).Merge(defaults))

	merged := (&Options{MaxSize: 5}).Merge(defaults)
	assert.Equal(t, int64(5), merged.MaxSize)
	assert.Equal(t, []string{"image/*"}, merged.AcceptedFileTypes)
}

func TestObjectName(t *testing.T) {
	assert.Equal(t, "1700000000000-cat.png", ObjectName(1700000000000, "cat.png"))
	assert.Equal(t, "1700000000000-cat.png", ObjectName(1700000000000, "../../cat.png"))
}
