package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posts-service/internal/config"
	"posts-service/internal/model"
	"posts-service/internal/repository/memory"
	"posts-service/internal/repository/remote"
	uploadmemory "posts-service/internal/upload/memory"
	"posts-service/internal/upload/storage"
)

func testConfig() *config.Config {
	cfg := &config.Config{
		Server:  &config.ConfigServer{PortGRPC: 50051, PortHTTP: 8080},
		Storage: &config.ConfigStorage{MaxSize: 1024, AcceptedFileTypes: "image/*"},
	}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}

func TestNewRepository_MemorySeededWithFixtures(t *testing.T) {
	s := &Server{Config: testConfig()}

	repo, err := s.newRepository(context.Background(), nil)
	require.NoError(t, err)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, len(memory.Fixtures()))
}

func TestNewRepository_RemoteWithMigration(t *testing.T) {
	cfg := testConfig()
	cfg.Repository.Backend = config.BackendRemote
	cfg.Database = &config.ConfigDatabase{Driver: remote.DriverSQLite, DSN: ":memory:", Migrate: true}
	s := &Server{Config: cfg}
	t.Cleanup(func() {
		if s.db != nil {
			_ = s.db.Close()
		}
	})

	repo, err := s.newRepository(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, s.db, "connection must be kept for shutdown")

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestNewUploader_Memory(t *testing.T) {
	s := &Server{Config: testConfig()}

	uploader, handler, err := s.newUploader()
	require.NoError(t, err)
	require.NotNil(t, handler, "in-memory uploader must be served over HTTP")

	res, err := uploader.UploadFile(context.Background(), model.File{Name: "a.png", ContentType: "image/png", Data: []byte("x")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/mock-uploads/a.png", res.URL)

	// Ограничения из конфига применяются по умолчанию
	_, err = uploader.UploadFile(context.Background(), model.File{Name: "a.txt", ContentType: "text/plain", Data: []byte("x")}, nil)
	assert.Error(t, err)

	_, ok := uploader.(*uploadmemory.Uploader)
	assert.True(t, ok)
}

func TestNewUploader_Remote(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.Backend = config.BackendRemote
	cfg.Storage.BaseURL = "https://backend.example.com"
	s := &Server{Config: cfg}

	uploader, handler, err := s.newUploader()
	require.NoError(t, err)
	assert.Nil(t, handler)

	_, ok := uploader.(*storage.Uploader)
	assert.True(t, ok)
}

func TestNewVerifier(t *testing.T) {
	s := &Server{Config: testConfig()}

	verifier, err := s.newVerifier()
	require.NoError(t, err)
	assert.Nil(t, verifier, "no secret means anonymous access only")

	s.Config.Auth.JWTSecret = "secret"
	verifier, err = s.newVerifier()
	require.NoError(t, err)
	assert.NotNil(t, verifier)
}
